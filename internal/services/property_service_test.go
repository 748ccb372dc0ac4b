package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/khetbazaar/estate-admin-api/internal/geojson"
	"github.com/khetbazaar/estate-admin-api/internal/logger"
	"github.com/khetbazaar/estate-admin-api/internal/mailer"
	"github.com/khetbazaar/estate-admin-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) UpdateStatus(ctx context.Context, id int64, status models.PropertyStatus, flagReason *string, markVerified bool) error {
	args := m.Called(ctx, id, status, flagReason, markVerified)
	return args.Error(0)
}

func (m *MockPropertyRepository) ListByStatus(ctx context.Context, status models.PropertyStatus, limit, offset int) ([]*models.Property, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) CountByStatus(ctx context.Context, status models.PropertyStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *MockPropertyRepository) CountsGroupedByStatus(ctx context.Context) (map[models.PropertyStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.PropertyStatus]int), args.Error(1)
}

// captureSender records sent mail for assertions.
type captureSender struct {
	sent chan string
}

func newCaptureSender() *captureSender {
	return &captureSender{sent: make(chan string, 8)}
}

func (c *captureSender) Send(to, subject, body string) error {
	c.sent <- to
	return nil
}

func newPropertyService(repo *MockPropertyRepository, sender mailer.Sender) PropertyService {
	log := logger.New("test")
	if sender == nil {
		sender = mailer.NopSender{}
	}
	return NewPropertyService(repo, geojson.NewConverter(log), mailer.NewDispatcher(sender, log), log)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	update, err := service.UpdateStatus(ctx, 99, models.StatusApproved, nil, false)

	assert.Nil(t, update)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	mockRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestUpdateStatus_ApprovedMarksVerified(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)
	ctx := context.Background()

	property := &models.Property{ID: 5, Status: models.StatusPending}
	mockRepo.On("GetByID", ctx, int64(5)).Return(property, nil)
	mockRepo.On("UpdateStatus", ctx, int64(5), models.StatusApproved, (*string)(nil), true).Return(nil)

	update, err := service.UpdateStatus(ctx, 5, models.StatusApproved, nil, false)

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, update.Status)
	mockRepo.AssertExpectations(t)
}

func TestUpdateStatus_NonApprovedLeavesVerified(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)
	ctx := context.Background()

	reason := "duplicate listing"
	property := &models.Property{ID: 5, Status: models.StatusPending, Verified: true}
	mockRepo.On("GetByID", ctx, int64(5)).Return(property, nil)
	mockRepo.On("UpdateStatus", ctx, int64(5), models.StatusFlagged, &reason, false).Return(nil)

	update, err := service.UpdateStatus(ctx, 5, models.StatusFlagged, &reason, false)

	require.NoError(t, err)
	assert.Equal(t, models.StatusFlagged, update.Status)
	assert.Equal(t, &reason, update.FlagReason)
	mockRepo.AssertExpectations(t)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)

	update, err := service.UpdateStatus(context.Background(), 5, models.PropertyStatus("archived"), nil, false)

	assert.Nil(t, update)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	mockRepo.AssertNotCalled(t, "GetByID")
}

func TestUpdateStatus_NotifyOnChange(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	sender := newCaptureSender()
	service := newPropertyService(mockRepo, sender)
	ctx := context.Background()

	email := "owner@example.com"
	property := &models.Property{ID: 5, Status: models.StatusPending, Email: &email}
	mockRepo.On("GetByID", ctx, int64(5)).Return(property, nil)
	mockRepo.On("UpdateStatus", ctx, int64(5), models.StatusApproved, (*string)(nil), true).Return(nil)

	_, err := service.UpdateStatus(ctx, 5, models.StatusApproved, nil, true)
	require.NoError(t, err)

	select {
	case to := <-sender.sent:
		assert.Equal(t, email, to)
	case <-time.After(time.Second):
		t.Fatal("expected a status notification to be dispatched")
	}
}

func TestUpdateStatus_NoNotifyWhenStatusUnchanged(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	sender := newCaptureSender()
	service := newPropertyService(mockRepo, sender)
	ctx := context.Background()

	email := "owner@example.com"
	property := &models.Property{ID: 5, Status: models.StatusApproved, Email: &email}
	mockRepo.On("GetByID", ctx, int64(5)).Return(property, nil)
	mockRepo.On("UpdateStatus", ctx, int64(5), models.StatusApproved, (*string)(nil), true).Return(nil)

	_, err := service.UpdateStatus(ctx, 5, models.StatusApproved, nil, true)
	require.NoError(t, err)

	select {
	case <-sender.sent:
		t.Fatal("expected no notification for an unchanged status")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestListByStatus_EmptyFirstPage(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("CountByStatus", ctx, models.StatusFlagged).Return(0, nil)
	mockRepo.On("ListByStatus", ctx, models.StatusFlagged, 20, 0).Return([]*models.Property{}, nil)

	page, err := service.ListByStatus(ctx, models.StatusFlagged, 1, 20)

	assert.Nil(t, page)
	assert.ErrorIs(t, err, ErrNoProperties)
}

func TestListByStatus_EmptyLaterPageIsNotAnError(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("CountByStatus", ctx, models.StatusFlagged).Return(0, nil)
	mockRepo.On("ListByStatus", ctx, models.StatusFlagged, 20, 20).Return([]*models.Property{}, nil)

	page, err := service.ListByStatus(ctx, models.StatusFlagged, 2, 20)

	require.NoError(t, err)
	assert.Empty(t, page.Data.Features)
}

func TestListByStatus_PageMathAndEnvelope(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)
	ctx := context.Background()

	properties := []*models.Property{
		{ID: 1, Status: models.StatusPending, UserUploaded: true, Geom: `{"coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`},
		{ID: 2, Status: models.StatusPending, UserUploaded: true, Geom: "garbage"},
	}

	mockRepo.On("CountByStatus", ctx, models.StatusPending).Return(1000, nil)
	mockRepo.On("ListByStatus", ctx, models.StatusPending, 20, 0).Return(properties, nil)

	page, err := service.ListByStatus(ctx, models.StatusPending, 1, 20)

	require.NoError(t, err)
	// Page count as observed: floor(1000/20)+1
	assert.Equal(t, 51, page.TotalCount)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 2, *page.NextPage)
	require.Len(t, page.Data.Features, 2)
	// Malformed geometry is papered over, never an error
	assert.Equal(t, [][][]float64{{{}}}, page.Data.Features[1].Geometry.Coordinates)
}

func TestListByStatus_InvalidStatus(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)

	page, err := service.ListByStatus(context.Background(), models.PropertyStatus("bogus"), 1, 20)

	assert.Nil(t, page)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	mockRepo.AssertNotCalled(t, "CountByStatus")
}

func TestListByStatus_RepositoryError(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("CountByStatus", ctx, models.StatusPending).Return(0, errors.New("connection refused"))

	page, err := service.ListByStatus(ctx, models.StatusPending, 1, 20)

	assert.Nil(t, page)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoProperties)
}

func TestStatusCounts_AllStatusesPresent(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newPropertyService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("CountsGroupedByStatus", ctx).Return(map[models.PropertyStatus]int{
		models.StatusApproved: 7,
		models.StatusFlagged:  2,
	}, nil)

	counts, err := service.StatusCounts(ctx)

	require.NoError(t, err)
	assert.Equal(t, 7, counts.Approved)
	assert.Equal(t, 2, counts.Flagged)
	assert.Zero(t, counts.Disapproved)
	assert.Zero(t, counts.Pending)
	assert.Zero(t, counts.Draft)
}
