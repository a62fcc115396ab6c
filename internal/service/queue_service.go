package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

type queueBackend interface {
	AutoAssignQueue(ctx context.Context, token string, filter backend.QueueFilter) (*models.QueueSnapshot, error)
	ApproveAssignment(ctx context.Context, token, complaintID string, req backend.ApproveRequest) (*backend.ActionResponse, error)
	RejectAssignment(ctx context.Context, token, complaintID string, req backend.RejectRequest) (*backend.ActionResponse, error)
	BulkApprove(ctx context.Context, token string, req backend.BulkApproveRequest) (*backend.ActionResponse, error)
}

type selectionStore interface {
	Members(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, complaintID string) error
	Remove(ctx context.Context, userID, complaintID string) error
	Replace(ctx context.Context, userID string, complaintIDs []string) error
	Clear(ctx context.Context, userID string) error
}

// QueueService drives the auto-assignment review queue. The backend owns every
// item's state; the gateway only keeps each official's bulk selection, prunes
// it against the latest fetched list, and reloads the queue after every
// mutation so the view always reflects the backend's answer.
type QueueService struct {
	backend   queueBackend
	selection selectionStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQueueService constructs a QueueService instance.
func NewQueueService(b queueBackend, selection selectionStore, validate *validator.Validate, logger *zap.Logger) *QueueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &QueueService{backend: b, selection: selection, validator: validate, logger: logger}
}

// Load fetches the queue and reconciles the official's selection against it.
// Selected ids that are no longer pending are dropped.
func (s *QueueService) Load(ctx context.Context, token, userID string, filter backend.QueueFilter) (*dto.QueueResponse, error) {
	snapshot, err := s.backend.AutoAssignQueue(ctx, token, filter)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, userID, snapshot)
}

// ToggleSelection flips one complaint in or out of the bulk selection. Only
// items pending approval in the latest list are selectable.
func (s *QueueService) ToggleSelection(ctx context.Context, token, userID string, filter backend.QueueFilter, complaintID string) (*dto.QueueResponse, error) {
	snapshot, err := s.backend.AutoAssignQueue(ctx, token, filter)
	if err != nil {
		return nil, err
	}

	if _, ok := pendingSet(snapshot.Items)[complaintID]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "complaint is not pending approval")
	}

	members, err := s.selection.Members(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}

	selected := false
	for _, id := range members {
		if id == complaintID {
			selected = true
			break
		}
	}

	if selected {
		err = s.selection.Remove(ctx, userID, complaintID)
	} else {
		err = s.selection.Add(ctx, userID, complaintID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update selection")
	}

	return s.reconcile(ctx, userID, snapshot)
}

// ToggleSelectAll selects every pending item, or clears the selection when it
// already covers all of them. The decision is recomputed against the latest
// list, never against what the client believes is pending.
func (s *QueueService) ToggleSelectAll(ctx context.Context, token, userID string, filter backend.QueueFilter) (*dto.QueueResponse, error) {
	snapshot, err := s.backend.AutoAssignQueue(ctx, token, filter)
	if err != nil {
		return nil, err
	}

	pending := pendingSet(snapshot.Items)
	members, err := s.selection.Members(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}

	selectedPending := 0
	for _, id := range members {
		if _, ok := pending[id]; ok {
			selectedPending++
		}
	}

	if len(pending) > 0 && selectedPending == len(pending) {
		err = s.selection.Clear(ctx, userID)
	} else {
		ids := make([]string, 0, len(pending))
		for _, item := range snapshot.Items {
			if item.CurrentStatus == models.ReviewPending {
				ids = append(ids, item.ComplaintID)
			}
		}
		err = s.selection.Replace(ctx, userID, ids)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update selection")
	}

	return s.reconcile(ctx, userID, snapshot)
}

// Approve confirms one suggested routing and reloads the queue.
func (s *QueueService) Approve(ctx context.Context, token, userID string, filter backend.QueueFilter, complaintID string, req dto.ApproveQueueItemRequest) (*dto.BulkActionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approve payload")
	}

	action, err := s.backend.ApproveAssignment(ctx, token, complaintID, backend.ApproveRequest{
		Department: req.Department,
		Remarks:    req.Remarks,
	})
	if err != nil {
		return nil, err
	}

	if err := s.selection.Remove(ctx, userID, complaintID); err != nil {
		s.logger.Warn("failed to drop approved item from selection", zap.String("complaint_id", complaintID), zap.Error(err))
	}

	return s.actionResult(ctx, token, userID, filter, action)
}

// Reject declines one suggested routing and reloads the queue.
func (s *QueueService) Reject(ctx context.Context, token, userID string, filter backend.QueueFilter, complaintID string, req dto.RejectQueueItemRequest) (*dto.BulkActionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reject payload")
	}

	action, err := s.backend.RejectAssignment(ctx, token, complaintID, backend.RejectRequest{Reason: req.Reason})
	if err != nil {
		return nil, err
	}

	if err := s.selection.Remove(ctx, userID, complaintID); err != nil {
		s.logger.Warn("failed to drop rejected item from selection", zap.String("complaint_id", complaintID), zap.Error(err))
	}

	return s.actionResult(ctx, token, userID, filter, action)
}

// BulkApprove sends the current selection to the backend in one request and
// clears it afterwards.
func (s *QueueService) BulkApprove(ctx context.Context, token, userID string, filter backend.QueueFilter, req dto.BulkApproveQueueRequest) (*dto.BulkActionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk approve payload")
	}

	members, err := s.selection.Members(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}
	if len(members) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no complaints selected")
	}

	action, err := s.backend.BulkApprove(ctx, token, backend.BulkApproveRequest{
		ComplaintIDs: members,
		Department:   req.Department,
	})
	if err != nil {
		return nil, err
	}

	if err := s.selection.Clear(ctx, userID); err != nil {
		s.logger.Warn("failed to clear selection after bulk approve", zap.String("user_id", userID), zap.Error(err))
	}

	s.logger.Info("bulk approve completed",
		zap.String("user_id", userID),
		zap.Int("requested", len(members)),
		zap.Int("approved", action.Approved),
		zap.Int("failed", action.Failed),
	)

	return s.actionResult(ctx, token, userID, filter, action)
}

func (s *QueueService) actionResult(ctx context.Context, token, userID string, filter backend.QueueFilter, action *backend.ActionResponse) (*dto.BulkActionResult, error) {
	queue, err := s.Load(ctx, token, userID, filter)
	if err != nil {
		return nil, err
	}
	return &dto.BulkActionResult{
		Message:  action.Message,
		Approved: action.Approved,
		Rejected: action.Rejected,
		Queue:    *queue,
	}, nil
}

// reconcile prunes the stored selection down to ids still pending in the
// snapshot and returns the combined view.
func (s *QueueService) reconcile(ctx context.Context, userID string, snapshot *models.QueueSnapshot) (*dto.QueueResponse, error) {
	members, err := s.selection.Members(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}

	pending := pendingSet(snapshot.Items)
	kept := make([]string, 0, len(members))
	for _, id := range members {
		if _, ok := pending[id]; ok {
			kept = append(kept, id)
		}
	}
	if len(kept) != len(members) {
		if err := s.selection.Replace(ctx, userID, kept); err != nil {
			s.logger.Warn("failed to prune stale selection", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return &dto.QueueResponse{
		Items:     snapshot.Items,
		Stats:     snapshot.Stats,
		Config:    snapshot.Config,
		Selection: kept,
	}, nil
}

func pendingSet(items []models.AutoAssignmentItem) map[string]struct{} {
	pending := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.CurrentStatus == models.ReviewPending {
			pending[item.ComplaintID] = struct{}{}
		}
	}
	return pending
}
