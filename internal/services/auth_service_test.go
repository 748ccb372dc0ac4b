package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/khetbazaar/estate-admin-api/internal/auth"
	"github.com/khetbazaar/estate-admin-api/internal/config"
	"github.com/khetbazaar/estate-admin-api/internal/logger"
	"github.com/khetbazaar/estate-admin-api/internal/mailer"
	"github.com/khetbazaar/estate-admin-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error) {
	args := m.Called(ctx, email, hashedPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreateProfile(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) CreateRoleLink(ctx context.Context, userID int64, roleID int) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) FindRoleLink(ctx context.Context, userID int64) (*models.UserRoleLink, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserRoleLink), args.Error(1)
}

func (m *MockUserRepository) ExportRows(ctx context.Context) ([]models.UserExportRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserExportRow), args.Error(1)
}

func newAuthService(users *MockUserRepository) AuthService {
	log := logger.New("test")
	cfg := config.AuthConfig{
		Secret:             "test-secret",
		AccessTokenMinutes: 360,
		RefreshTokenDays:   30,
	}
	return NewAuthService(users, auth.NewTokenIssuer(cfg.Secret), mailer.NewDispatcher(mailer.NopSender{}, log), cfg, log)
}

const goodPassword = "Sup3rSecret!"

func TestSignup_WeakPassword(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)

	err := service.Signup(context.Background(), "admin@example.com", "short")

	assert.ErrorIs(t, err, ErrWeakPassword)
	mockUsers.AssertNotCalled(t, "CreateUser")
}

func TestSignup_InvalidEmail(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)

	err := service.Signup(context.Background(), "not-an-email", goodPassword)

	assert.ErrorIs(t, err, ErrInvalidEmail)
	mockUsers.AssertNotCalled(t, "FindByEmail")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)
	ctx := context.Background()

	mockUsers.On("FindByEmail", ctx, "admin@example.com").Return(&models.User{UserID: 1, Email: "admin@example.com"}, nil)

	err := service.Signup(ctx, "admin@example.com", goodPassword)

	assert.ErrorIs(t, err, ErrEmailTaken)
	mockUsers.AssertNotCalled(t, "CreateUser")
}

func TestSignup_Success(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)
	ctx := context.Background()

	mockUsers.On("FindByEmail", ctx, "admin@example.com").Return(nil, nil)
	mockUsers.On("CreateUser", ctx, "admin@example.com", mock.AnythingOfType("string")).Return(&models.User{UserID: 42, Email: "admin@example.com"}, nil)
	mockUsers.On("CreateProfile", ctx, int64(42)).Return(nil)
	mockUsers.On("CreateRoleLink", ctx, int64(42), auth.RoleAdmin).Return(nil)

	err := service.Signup(ctx, "admin@example.com", goodPassword)

	require.NoError(t, err)
	mockUsers.AssertExpectations(t)
	mockUsers.AssertNotCalled(t, "DeleteUser")
}

func TestSignup_CompensatesWhenRoleLinkFails(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)
	ctx := context.Background()

	mockUsers.On("FindByEmail", ctx, "admin@example.com").Return(nil, nil)
	mockUsers.On("CreateUser", ctx, "admin@example.com", mock.AnythingOfType("string")).Return(&models.User{UserID: 42, Email: "admin@example.com"}, nil)
	mockUsers.On("CreateProfile", ctx, int64(42)).Return(nil)
	mockUsers.On("CreateRoleLink", ctx, int64(42), auth.RoleAdmin).Return(errors.New("constraint violation"))
	mockUsers.On("DeleteUser", ctx, int64(42)).Return(nil)

	err := service.Signup(ctx, "admin@example.com", goodPassword)

	assert.Error(t, err)
	mockUsers.AssertCalled(t, "DeleteUser", ctx, int64(42))
}

func TestLogin_UserNotFound(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)
	ctx := context.Background()

	mockUsers.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)

	pair, err := service.Login(ctx, "ghost@example.com", goodPassword)

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)
	ctx := context.Background()

	hashed, err := auth.HashPassword(goodPassword)
	require.NoError(t, err)
	mockUsers.On("FindByEmail", ctx, "admin@example.com").Return(&models.User{UserID: 42, Email: "admin@example.com", HashedPassword: hashed}, nil)

	pair, err := service.Login(ctx, "admin@example.com", "Wr0ngPass!word")

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, ErrWrongPassword)
	mockUsers.AssertNotCalled(t, "FindRoleLink")
}

func TestLogin_RoleMissing(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)
	ctx := context.Background()

	hashed, err := auth.HashPassword(goodPassword)
	require.NoError(t, err)
	mockUsers.On("FindByEmail", ctx, "admin@example.com").Return(&models.User{UserID: 42, Email: "admin@example.com", HashedPassword: hashed}, nil)
	mockUsers.On("FindRoleLink", ctx, int64(42)).Return(nil, nil)

	pair, err := service.Login(ctx, "admin@example.com", goodPassword)

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, ErrRoleMissing)
}

func TestLogin_NotAdmin(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)
	ctx := context.Background()

	hashed, err := auth.HashPassword(goodPassword)
	require.NoError(t, err)
	mockUsers.On("FindByEmail", ctx, "user@example.com").Return(&models.User{UserID: 7, Email: "user@example.com", HashedPassword: hashed}, nil)
	mockUsers.On("FindRoleLink", ctx, int64(7)).Return(&models.UserRoleLink{UserID: 7, RoleID: 2}, nil)

	pair, err := service.Login(ctx, "user@example.com", goodPassword)

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestLogin_Success(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers)
	ctx := context.Background()

	hashed, err := auth.HashPassword(goodPassword)
	require.NoError(t, err)
	mockUsers.On("FindByEmail", ctx, "admin@example.com").Return(&models.User{UserID: 42, Email: "admin@example.com", HashedPassword: hashed}, nil)
	mockUsers.On("FindRoleLink", ctx, int64(42)).Return(&models.UserRoleLink{UserID: 42, RoleID: auth.RoleAdmin}, nil)

	pair, err := service.Login(ctx, "admin@example.com", goodPassword)

	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), pair.RefreshMaxAgeSec)

	issuer := auth.NewTokenIssuer("test-secret")
	claims, err := issuer.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, auth.RoleAdmin, claims.Role)

	_, err = issuer.Parse(pair.RefreshToken)
	assert.NoError(t, err)
}
