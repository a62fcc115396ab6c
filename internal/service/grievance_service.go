package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

const lifecycleStages = 4

type grievanceBackend interface {
	GetGrievance(ctx context.Context, id string) (*models.Grievance, error)
	ListComplaints(ctx context.Context, token string, filter backend.ComplaintFilter) ([]models.Grievance, error)
	AssignComplaint(ctx context.Context, token, id string, req backend.AssignRequest) (*models.Grievance, error)
	UpdateComplaintStatus(ctx context.Context, token, id string, req backend.StatusUpdateRequest) (*models.Grievance, error)
}

// GrievanceService reads and transitions complaint records. Every record comes
// from the backend; the service only derives presentation values (timeline
// order, lifecycle progress) and validates transitions before forwarding them.
type GrievanceService struct {
	backend   grievanceBackend
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGrievanceService constructs a GrievanceService instance.
func NewGrievanceService(b grievanceBackend, validate *validator.Validate, logger *zap.Logger) *GrievanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GrievanceService{backend: b, validator: validate, logger: logger}
}

// Get returns one grievance with derived progress. An unknown id surfaces the
// backend's not-found as-is.
func (s *GrievanceService) Get(ctx context.Context, id string) (*dto.GrievanceDetail, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "complaint id is required")
	}

	grievance, err := s.backend.GetGrievance(ctx, id)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(grievance.Timeline, func(i, j int) bool {
		return grievance.Timeline[i].Timestamp.Before(grievance.Timeline[j].Timestamp)
	})

	rank := grievance.Status.Rank()
	detail := &dto.GrievanceDetail{
		Grievance:  *grievance,
		StageCount: lifecycleStages,
	}
	if rank >= 0 {
		detail.StageIndex = rank
		detail.ProgressPercent = rank * 100 / (lifecycleStages - 1)
	}
	return detail, nil
}

// List returns the filtered admin complaint view. Filters pass through to the
// backend untouched.
func (s *GrievanceService) List(ctx context.Context, token string, filter backend.ComplaintFilter) ([]models.Grievance, error) {
	complaints, err := s.backend.ListComplaints(ctx, token, filter)
	if err != nil {
		return nil, err
	}
	if complaints == nil {
		complaints = []models.Grievance{}
	}
	return complaints, nil
}

// Assign routes a complaint to a department and returns the updated record.
func (s *GrievanceService) Assign(ctx context.Context, token, id string, req dto.AssignComplaintRequest) (*models.Grievance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	updated, err := s.backend.AssignComplaint(ctx, token, id, backend.AssignRequest{
		Department:  req.Department,
		OfficerName: req.OfficerName,
		Remarks:     req.Remarks,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("complaint assigned",
		zap.String("complaint_id", id),
		zap.String("department", req.Department),
	)
	return updated, nil
}

// UpdateStatus transitions a complaint's lifecycle status.
func (s *GrievanceService) UpdateStatus(ctx context.Context, token, id string, req dto.UpdateComplaintStatusRequest) (*models.Grievance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status value")
	}

	updated, err := s.backend.UpdateComplaintStatus(ctx, token, id, backend.StatusUpdateRequest{
		Status:       req.Status,
		AdminRemarks: req.AdminRemarks,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("complaint status updated",
		zap.String("complaint_id", id),
		zap.String("status", string(req.Status)),
	)
	return updated, nil
}
