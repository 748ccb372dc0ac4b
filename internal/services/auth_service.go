package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/khetbazaar/estate-admin-api/internal/auth"
	"github.com/khetbazaar/estate-admin-api/internal/config"
	"github.com/khetbazaar/estate-admin-api/internal/logger"
	"github.com/khetbazaar/estate-admin-api/internal/mailer"
	"github.com/khetbazaar/estate-admin-api/internal/repository"
)

// Service-level errors
var (
	ErrWeakPassword  = errors.New("password must be at least 8 characters long, contain at least one uppercase, one lowercase, one digit, and one special character")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrEmailTaken    = errors.New("user already registered with this email")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("incorrect password")
	ErrRoleMissing   = errors.New("user role not found")
	ErrNotAdmin      = errors.New("not authorized as admin")
)

// TokenPair is the result of a successful login. The access token is
// returned in the response body; the refresh token only travels in an
// HTTP-only cookie.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshMaxAgeSec int
}

// AuthService defines the interface for admin account operations.
type AuthService interface {
	// Signup validates the credentials, creates the user with profile and
	// admin role as one logical unit, and dispatches a verification email
	// in the background (best effort, no delivery guarantee).
	Signup(ctx context.Context, email, password string) error

	// Login authenticates an admin by email identifier and password.
	// Returns ErrUserNotFound, ErrWrongPassword, ErrRoleMissing, or
	// ErrNotAdmin on the respective failures.
	Login(ctx context.Context, identifier, password string) (*TokenPair, error)
}

// authService is the concrete implementation of AuthService.
type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	mail   *mailer.Dispatcher
	cfg    config.AuthConfig
	log    *logger.Logger
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, mail *mailer.Dispatcher, cfg config.AuthConfig, log *logger.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		mail:   mail,
		cfg:    cfg,
		log:    log,
	}
}

// Signup creates an admin account. The user, profile, and role link are not
// wrapped in a single transaction; if profile or role creation fails after
// the user row exists, the user row is deleted to compensate.
func (s *authService) Signup(ctx context.Context, email, password string) error {
	if !auth.IsValidPassword(password) {
		return ErrWeakPassword
	}
	if !auth.IsValidEmail(email) {
		return ErrInvalidEmail
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check for existing user", err, map[string]interface{}{
			"email": email,
		})
		return fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		s.log.Error("Failed to hash password", err, nil)
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, hashed)
	if err != nil {
		s.log.Error("Failed to create user", err, map[string]interface{}{
			"email": email,
		})
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.createProfileAndRole(ctx, user.UserID); err != nil {
		// Compensate: the user row must not outlive a failed signup.
		if delErr := s.users.DeleteUser(ctx, user.UserID); delErr != nil {
			s.log.Error("Failed to delete user after signup failure", delErr, map[string]interface{}{
				"user_id": user.UserID,
			})
		}
		return err
	}

	s.log.Info("Admin account created", map[string]interface{}{
		"user_id": user.UserID,
		"email":   email,
	})

	s.sendVerificationEmail(email)

	return nil
}

func (s *authService) createProfileAndRole(ctx context.Context, userID int64) error {
	if err := s.users.CreateProfile(ctx, userID); err != nil {
		s.log.Error("Failed to create profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return fmt.Errorf("failed to create profile: %w", err)
	}
	if err := s.users.CreateRoleLink(ctx, userID, auth.RoleAdmin); err != nil {
		s.log.Error("Failed to assign admin role", err, map[string]interface{}{
			"user_id": userID,
		})
		return fmt.Errorf("failed to assign admin role: %w", err)
	}
	return nil
}

// sendVerificationEmail dispatches the verification token email.
// Best effort: a signing failure is logged and the signup still succeeds.
func (s *authService) sendVerificationEmail(email string) {
	token, err := s.tokens.IssueEmailToken(email)
	if err != nil {
		s.log.Error("Failed to create email verification token", err, map[string]interface{}{
			"email": email,
		})
		return
	}

	body := fmt.Sprintf("Your verification token is %s", token)
	s.mail.Dispatch(email, "Email Verification", body)
}

// Login authenticates an admin and issues the access/refresh token pair.
func (s *authService) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, identifier)
	if err != nil {
		s.log.Error("Failed to look up user for login", err, map[string]interface{}{
			"identifier": identifier,
		})
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, ErrWrongPassword
	}

	role, err := s.users.FindRoleLink(ctx, user.UserID)
	if err != nil {
		s.log.Error("Failed to look up role for login", err, map[string]interface{}{
			"user_id": user.UserID,
		})
		return nil, fmt.Errorf("failed to look up role: %w", err)
	}
	if role == nil {
		return nil, ErrRoleMissing
	}
	if role.RoleID != auth.RoleAdmin {
		return nil, ErrNotAdmin
	}

	accessTTL := time.Duration(s.cfg.AccessTokenMinutes) * time.Minute
	refreshTTL := time.Duration(s.cfg.RefreshTokenDays) * 24 * time.Hour

	accessToken, err := s.tokens.Issue(identifier, user.UserID, role.RoleID, accessTTL)
	if err != nil {
		s.log.Error("Failed to issue access token", err, nil)
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.Issue(identifier, user.UserID, role.RoleID, refreshTTL)
	if err != nil {
		s.log.Error("Failed to issue refresh token", err, nil)
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	s.log.Info("Admin logged in", map[string]interface{}{
		"user_id": user.UserID,
	})

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshMaxAgeSec: int(refreshTTL.Seconds()),
	}, nil
}
