package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

type mockGrievanceBackend struct {
	grievance  *models.Grievance
	getErr     error
	list       []models.Grievance
	listErr    error
	lastFilter *backend.ComplaintFilter
	lastAssign *backend.AssignRequest
	lastStatus *backend.StatusUpdateRequest
}

func (m *mockGrievanceBackend) GetGrievance(ctx context.Context, id string) (*models.Grievance, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.grievance, nil
}

func (m *mockGrievanceBackend) ListComplaints(ctx context.Context, token string, filter backend.ComplaintFilter) ([]models.Grievance, error) {
	m.lastFilter = &filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockGrievanceBackend) AssignComplaint(ctx context.Context, token, id string, req backend.AssignRequest) (*models.Grievance, error) {
	m.lastAssign = &req
	return m.grievance, nil
}

func (m *mockGrievanceBackend) UpdateComplaintStatus(ctx context.Context, token, id string, req backend.StatusUpdateRequest) (*models.Grievance, error) {
	m.lastStatus = &req
	return m.grievance, nil
}

func newGrievanceService(b *mockGrievanceBackend) *GrievanceService {
	return NewGrievanceService(b, validator.New(), zap.NewNop())
}

func TestGrievanceGetDerivesProgress(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	b := &mockGrievanceBackend{grievance: &models.Grievance{
		ID:     "GRV-1",
		Status: models.StatusInProgress,
		Timeline: []models.TimelineEntry{
			{Status: models.StatusInProgress, Timestamp: base.Add(48 * time.Hour)},
			{Status: models.StatusSubmitted, Timestamp: base},
			{Status: models.StatusAssigned, Timestamp: base.Add(24 * time.Hour)},
		},
	}}

	detail, err := newGrievanceService(b).Get(context.Background(), "GRV-1")
	require.NoError(t, err)
	assert.Equal(t, 2, detail.StageIndex)
	assert.Equal(t, 4, detail.StageCount)
	assert.Equal(t, 66, detail.ProgressPercent)

	// Timeline comes back oldest first regardless of server order.
	require.Len(t, detail.Grievance.Timeline, 3)
	assert.Equal(t, models.StatusSubmitted, detail.Grievance.Timeline[0].Status)
	assert.Equal(t, models.StatusInProgress, detail.Grievance.Timeline[2].Status)
}

func TestGrievanceGetResolvedIsFullProgress(t *testing.T) {
	b := &mockGrievanceBackend{grievance: &models.Grievance{ID: "GRV-2", Status: models.StatusResolved}}

	detail, err := newGrievanceService(b).Get(context.Background(), "GRV-2")
	require.NoError(t, err)
	assert.Equal(t, 100, detail.ProgressPercent)
}

func TestGrievanceGetUnknownStatus(t *testing.T) {
	b := &mockGrievanceBackend{grievance: &models.Grievance{ID: "GRV-3", Status: "weird"}}

	detail, err := newGrievanceService(b).Get(context.Background(), "GRV-3")
	require.NoError(t, err)
	assert.Equal(t, 0, detail.StageIndex)
	assert.Equal(t, 0, detail.ProgressPercent)
}

func TestGrievanceGetNotFoundPassesThrough(t *testing.T) {
	b := &mockGrievanceBackend{getErr: appErrors.Clone(appErrors.ErrNotFound, "Complaint not found")}

	_, err := newGrievanceService(b).Get(context.Background(), "GRV-404")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "Complaint not found", appErr.Message)
}

func TestGrievanceGetRequiresID(t *testing.T) {
	_, err := newGrievanceService(&mockGrievanceBackend{}).Get(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGrievanceListPassesFiltersThrough(t *testing.T) {
	b := &mockGrievanceBackend{list: []models.Grievance{{ID: "GRV-1"}}}
	svc := newGrievanceService(b)

	filter := backend.ComplaintFilter{Search: "pothole", Status: "assigned", Priority: "high", Category: "roads"}
	list, err := svc.List(context.Background(), "tok", filter)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NotNil(t, b.lastFilter)
	assert.Equal(t, filter, *b.lastFilter)
}

func TestGrievanceListNeverReturnsNil(t *testing.T) {
	list, err := newGrievanceService(&mockGrievanceBackend{}).List(context.Background(), "tok", backend.ComplaintFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGrievanceAssignValidation(t *testing.T) {
	b := &mockGrievanceBackend{grievance: &models.Grievance{ID: "GRV-1"}}
	svc := newGrievanceService(b)

	_, err := svc.Assign(context.Background(), "tok", "GRV-1", dto.AssignComplaintRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Assign(context.Background(), "tok", "GRV-1", dto.AssignComplaintRequest{Department: "Water Supply"})
	require.NoError(t, err)
	assert.Equal(t, "Water Supply", b.lastAssign.Department)
}

func TestGrievanceUpdateStatusRejectsUnknownValue(t *testing.T) {
	b := &mockGrievanceBackend{grievance: &models.Grievance{ID: "GRV-1"}}
	svc := newGrievanceService(b)

	_, err := svc.UpdateStatus(context.Background(), "tok", "GRV-1", dto.UpdateComplaintStatusRequest{Status: "closed"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateStatus(context.Background(), "tok", "GRV-1", dto.UpdateComplaintStatusRequest{Status: models.StatusResolved, AdminRemarks: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, b.lastStatus.Status)
}
