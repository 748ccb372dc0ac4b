package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/khetbazaar/estate-admin-api/internal/errors"
	"github.com/khetbazaar/estate-admin-api/internal/middleware"
	"github.com/khetbazaar/estate-admin-api/internal/models"
	"github.com/khetbazaar/estate-admin-api/internal/services"
)

// PropertyHandler handles property workflow HTTP requests.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		service: service,
	}
}

// StatusUpdateRequest represents the body of a status change.
type StatusUpdateRequest struct {
	Status     string  `json:"status" binding:"required"`
	FlagReason *string `json:"flag_reason"`
}

// ListRequest represents the query parameters of the status listing.
type ListRequest struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// UpdateStatus handles PATCH /admin/properties/:id.
// Changes the property status without notifying the owner.
func (h *PropertyHandler) UpdateStatus(c *gin.Context) {
	h.updateStatus(c, false)
}

// UpdateStatusNotify handles POST /admin/properties/:id/status.
// Changes the property status and dispatches a best-effort owner
// notification when the status actually changed.
func (h *PropertyHandler) UpdateStatusNotify(c *gin.Context) {
	h.updateStatus(c, true)
}

func (h *PropertyHandler) updateStatus(c *gin.Context, notify bool) {
	log := middleware.GetLogger(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid property id", nil)
		return
	}

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	status, ok := models.ParseStatus(req.Status)
	if !ok {
		apierrors.BadRequest(c, "Invalid property status: "+req.Status, nil)
		return
	}

	if log != nil {
		log.Info("Processing status update", map[string]interface{}{
			"property_id": id,
			"status":      status,
			"notify":      notify,
		})
	}

	update, err := h.service.UpdateStatus(c.Request.Context(), id, status, req.FlagReason, notify)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, services.ErrPropertyNotFound):
			apierrors.NotFound(c, "Property not found")
		default:
			apierrors.InternalServerError(c, "Failed to update property status", err)
		}
		return
	}

	c.JSON(http.StatusOK, update)
}

// ListByStatus handles GET /admin/properties/:status.
// Returns one page of user-uploaded properties as a GeoJSON
// FeatureCollection with pagination metadata.
func (h *PropertyHandler) ListByStatus(c *gin.Context) {
	status, ok := models.ParseStatus(c.Param("status"))
	if !ok {
		apierrors.BadRequest(c, "Invalid property status: "+c.Param("status"), nil)
		return
	}

	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	page, err := h.service.ListByStatus(c.Request.Context(), status, req.Page, req.Limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, services.ErrNoProperties):
			apierrors.NotFound(c, err.Error())
		default:
			apierrors.InternalServerError(c, "Failed to list properties", err)
		}
		return
	}

	c.JSON(http.StatusOK, page)
}

// StatusCounts handles GET /admin/user-properties/counts.
// Returns per-status counts of user-uploaded properties; every status
// key is always present.
func (h *PropertyHandler) StatusCounts(c *gin.Context) {
	counts, err := h.service.StatusCounts(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to aggregate status counts", err)
		return
	}

	c.JSON(http.StatusOK, counts)
}
