package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/khetbazaar/estate-admin-api/internal/errors"
	"github.com/khetbazaar/estate-admin-api/internal/services"
)

const exportFilename = "user_data_export.csv"

// UserHandler handles user administration HTTP requests.
type UserHandler struct {
	service services.ExportService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(service services.ExportService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// ExportUsers handles GET /admin/users/export.
// Streams the users+profiles join as a CSV attachment. The export is
// buffered first so a query failure yields a clean 500 instead of a
// truncated download.
func (h *UserHandler) ExportUsers(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.WriteUsersCSV(c.Request.Context(), &buf); err != nil {
		apierrors.InternalServerError(c, "Failed to export user data", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename=`+exportFilename)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
