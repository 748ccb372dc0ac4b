package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/khetbazaar/estate-admin-api/internal/geojson"
	"github.com/khetbazaar/estate-admin-api/internal/logger"
	"github.com/khetbazaar/estate-admin-api/internal/mailer"
	"github.com/khetbazaar/estate-admin-api/internal/models"
	"github.com/khetbazaar/estate-admin-api/internal/repository"
)

// Pagination defaults for status listings.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Service-level errors
var (
	ErrInvalidStatus    = errors.New("invalid property status")
	ErrPropertyNotFound = errors.New("property not found")
	ErrNoProperties     = errors.New("no properties found")
)

// StatusUpdate is the result of a status change.
type StatusUpdate struct {
	Status     models.PropertyStatus `json:"status"`
	FlagReason *string               `json:"flag_reason"`
}

// PropertyPage is one page of properties rendered as GeoJSON.
// TotalCount is a page count, computed as floor(total/limit)+1 — kept
// exactly as the running system reports it (see DESIGN.md).
type PropertyPage struct {
	Data       geojson.FeatureCollection `json:"data"`
	NextPage   *int                      `json:"next_page"`
	TotalCount int                       `json:"total_count"`
	HasMore    bool                      `json:"has_more"`
}

// PropertyService defines the interface for property workflow operations.
type PropertyService interface {
	// UpdateStatus sets a property's status and flag reason.
	// verified flips to true exactly when the target status is approved.
	// When notify is set and the status actually changed, a best-effort
	// owner notification is dispatched (no delivery guarantee).
	// Returns ErrInvalidStatus or ErrPropertyNotFound.
	UpdateStatus(ctx context.Context, id int64, status models.PropertyStatus, flagReason *string, notify bool) (*StatusUpdate, error)

	// ListByStatus returns one page of user-uploaded properties as GeoJSON.
	// Returns ErrInvalidStatus for an unknown status and ErrNoProperties
	// when the first page is empty; later empty pages are not an error.
	ListByStatus(ctx context.Context, status models.PropertyStatus, page, limit int) (*PropertyPage, error)

	// StatusCounts returns per-status counts of user-uploaded properties.
	// Every status is present in the result, zero-defaulted.
	StatusCounts(ctx context.Context) (*models.StatusCounts, error)
}

// propertyService is the concrete implementation of PropertyService.
type propertyService struct {
	repo      repository.PropertyRepository
	converter *geojson.Converter
	mail      *mailer.Dispatcher
	log       *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(repo repository.PropertyRepository, converter *geojson.Converter, mail *mailer.Dispatcher, log *logger.Logger) PropertyService {
	return &propertyService{
		repo:      repo,
		converter: converter,
		mail:      mail,
		log:       log,
	}
}

// UpdateStatus applies a workflow status change. There is no guard against
// concurrent updates of the same row; last writer wins.
func (s *propertyService) UpdateStatus(ctx context.Context, id int64, status models.PropertyStatus, flagReason *string, notify bool) (*StatusUpdate, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to load property for status update", err, map[string]interface{}{
			"property_id": id,
		})
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	markVerified := status == models.StatusApproved

	if err := s.repo.UpdateStatus(ctx, id, status, flagReason, markVerified); err != nil {
		s.log.Error("Failed to update property status", err, map[string]interface{}{
			"property_id": id,
			"status":      status,
		})
		return nil, fmt.Errorf("failed to update property status: %w", err)
	}

	s.log.Info("Property status updated", map[string]interface{}{
		"property_id": id,
		"from":        property.Status,
		"to":          status,
		"verified":    markVerified,
	})

	if notify && property.Status != status {
		s.notifyOwner(property, status, flagReason)
	}

	return &StatusUpdate{Status: status, FlagReason: flagReason}, nil
}

// notifyOwner dispatches a best-effort status-change email to the property
// owner. Delivery is not guaranteed and failures are only logged.
func (s *propertyService) notifyOwner(property *models.Property, status models.PropertyStatus, flagReason *string) {
	if property.Email == nil || *property.Email == "" {
		s.log.Debug("Skipping status notification, property has no owner email", map[string]interface{}{
			"property_id": property.ID,
		})
		return
	}

	name := "your property"
	if property.PropertyName != nil && *property.PropertyName != "" {
		name = *property.PropertyName
	}

	body := fmt.Sprintf("The status of %s has changed to %s.", name, status)
	if flagReason != nil && *flagReason != "" {
		body += fmt.Sprintf(" Reason: %s", *flagReason)
	}

	s.mail.Dispatch(*property.Email, "Property status update", body)
}

// ListByStatus fetches one page of user-uploaded properties and renders
// them as a GeoJSON FeatureCollection.
func (s *propertyService) ListByStatus(ctx context.Context, status models.PropertyStatus, page, limit int) (*PropertyPage, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	offset := (page - 1) * limit

	total, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		s.log.Error("Failed to count properties by status", err, map[string]interface{}{
			"status": status,
		})
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	// Page count as reported by the running system: floor(total/limit)+1.
	totalCount := total/limit + 1

	properties, err := s.repo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		s.log.Error("Failed to list properties by status", err, map[string]interface{}{
			"status": status,
			"page":   page,
			"limit":  limit,
		})
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	// An empty first page means the status has no listings at all;
	// running past the end of a non-empty result set is fine.
	if len(properties) == 0 && page == 1 {
		return nil, fmt.Errorf("%w with status %q", ErrNoProperties, status)
	}

	hasMore := page*limit < totalCount
	var nextPage *int
	if hasMore {
		next := page + 1
		nextPage = &next
	}

	s.log.Info("Listed properties by status", map[string]interface{}{
		"status": status,
		"page":   page,
		"limit":  limit,
		"count":  len(properties),
	})

	return &PropertyPage{
		Data:       s.converter.Collection(properties),
		TotalCount: totalCount,
		HasMore:    hasMore,
		NextPage:   nextPage,
	}, nil
}

// StatusCounts aggregates user-uploaded property counts, always
// enumerating all five statuses.
func (s *propertyService) StatusCounts(ctx context.Context) (*models.StatusCounts, error) {
	grouped, err := s.repo.CountsGroupedByStatus(ctx)
	if err != nil {
		s.log.Error("Failed to aggregate status counts", err, nil)
		return nil, fmt.Errorf("failed to aggregate status counts: %w", err)
	}

	return &models.StatusCounts{
		Approved:    grouped[models.StatusApproved],
		Disapproved: grouped[models.StatusDisapproved],
		Flagged:     grouped[models.StatusFlagged],
		Pending:     grouped[models.StatusPending],
		Draft:       grouped[models.StatusDraft],
	}, nil
}
