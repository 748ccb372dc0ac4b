package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/khetbazaar/estate-admin-api/internal/logger"
	"github.com/khetbazaar/estate-admin-api/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockExportService is a mock implementation of services.ExportService for testing
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) WriteUsersCSV(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	if args.Error(0) == nil {
		if _, err := w.Write([]byte("user_id,email\n1,asha@example.com\n")); err != nil {
			return err
		}
	}
	return args.Error(0)
}

func setupUserTestRouter(handler *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	log := logger.New("test")
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	router.GET("/admin/users/export", handler.ExportUsers)

	return router
}

func TestExportUsersEndpoint(t *testing.T) {
	mockService := new(MockExportService)
	router := setupUserTestRouter(NewUserHandler(mockService))

	mockService.On("WriteUsersCSV", mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/users/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=user_data_export.csv`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "asha@example.com")
}

func TestExportUsersEndpoint_ServiceError(t *testing.T) {
	mockService := new(MockExportService)
	router := setupUserTestRouter(NewUserHandler(mockService))

	mockService.On("WriteUsersCSV", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/admin/users/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Header().Get("Content-Type"), "text/csv")
}
