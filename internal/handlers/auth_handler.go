package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/khetbazaar/estate-admin-api/internal/errors"
	"github.com/khetbazaar/estate-admin-api/internal/middleware"
	"github.com/khetbazaar/estate-admin-api/internal/services"
)

const refreshCookieName = "refresh_token"

// AuthHandler handles admin account HTTP requests.
type AuthHandler struct {
	service services.AuthService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// SignupRequest represents the form fields for the signup endpoint.
type SignupRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// LoginRequest represents the form fields for the login endpoint.
// The identifier is the account email.
type LoginRequest struct {
	Identifier string `form:"identifier" binding:"required"`
	Password   string `form:"password" binding:"required"`
}

// LoginResponse represents the response body of a successful login.
// The refresh token is not part of the body; it travels only in the
// HTTP-only cookie.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup handles POST /auth/admin/signup.
// Creates an admin account and dispatches a verification email.
func (h *AuthHandler) Signup(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid form data", nil)
		return
	}

	if log != nil {
		log.Info("Processing admin signup", map[string]interface{}{
			"email": req.Email,
		})
	}

	err := h.service.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWeakPassword),
			errors.Is(err, services.ErrInvalidEmail),
			errors.Is(err, services.ErrEmailTaken):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to create admin account", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin account created. Check your email for the verification token.",
	})
}

// Login handles POST /auth/admin/login.
// On success the access token is returned in the body and the refresh
// token is set as an HTTP-only cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid form data", nil)
		return
	}

	pair, err := h.service.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, err.Error())
		case errors.Is(err, services.ErrWrongPassword),
			errors.Is(err, services.ErrRoleMissing):
			apierrors.Unauthorized(c, err.Error())
		case errors.Is(err, services.ErrNotAdmin):
			apierrors.Forbidden(c, err.Error())
		default:
			apierrors.InternalServerError(c, "Failed to log in", err)
		}
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, pair.RefreshToken, pair.RefreshMaxAgeSec, "/", "", true, true)

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
	})
}
