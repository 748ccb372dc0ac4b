package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/khetbazaar/estate-admin-api/internal/logger"
	"github.com/khetbazaar/estate-admin-api/internal/repository"
)

// exportHeader is the fixed CSV header of the user export.
var exportHeader = []string{
	"user_id", "email", "phone_number", "created_at",
	"first_name", "last_name", "active", "email_verified", "phone_verified",
}

// ExportService defines the interface for data export operations.
type ExportService interface {
	// WriteUsersCSV writes the users+profiles join as CSV to w.
	// The whole result set is materialized before writing.
	WriteUsersCSV(ctx context.Context, w io.Writer) error
}

// exportService is the concrete implementation of ExportService.
type exportService struct {
	users repository.UserRepository
	log   *logger.Logger
}

// NewExportService creates a new instance of ExportService.
func NewExportService(users repository.UserRepository, log *logger.Logger) ExportService {
	return &exportService{users: users, log: log}
}

// WriteUsersCSV streams every user with their profile fields; profile
// fields are empty/false for users without a profile row.
func (s *exportService) WriteUsersCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.users.ExportRows(ctx)
	if err != nil {
		s.log.Error("Failed to load user export rows", err, nil)
		return fmt.Errorf("failed to load user export rows: %w", err)
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.UserID, 10),
			row.Email,
			stringOrEmpty(row.PhoneNumber),
			timeOrEmpty(row.CreatedAt),
			stringOrEmpty(row.FirstName),
			stringOrEmpty(row.LastName),
			boolOrEmpty(row.Active),
			strconv.FormatBool(row.EmailVerified),
			strconv.FormatBool(row.PhoneVerified),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for user %d: %w", row.UserID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}

	s.log.Info("User data exported", map[string]interface{}{
		"rows": len(rows),
	})

	return nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func boolOrEmpty(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
