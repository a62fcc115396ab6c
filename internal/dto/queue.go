package dto

import "github.com/civicsense/portal-gateway/internal/models"

// QueueResponse bundles the latest snapshot with the official's current
// bulk selection.
type QueueResponse struct {
	Items     []models.AutoAssignmentItem `json:"items"`
	Stats     models.QueueStats           `json:"stats"`
	Config    models.QueueConfig          `json:"config"`
	Selection []string                    `json:"selection"`
}

// ApproveQueueItemRequest confirms a suggested routing.
type ApproveQueueItemRequest struct {
	Department string `json:"department" validate:"required"`
	Remarks    string `json:"remarks"`
}

// RejectQueueItemRequest declines a suggested routing.
type RejectQueueItemRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ToggleSelectionRequest flips one complaint in or out of the bulk selection.
type ToggleSelectionRequest struct {
	ComplaintID string `json:"complaint_id" validate:"required"`
}

// BulkApproveQueueRequest approves the whole current selection.
type BulkApproveQueueRequest struct {
	Department string `json:"department" validate:"required"`
}

// BulkActionResult reports the backend outcome plus the reloaded queue.
type BulkActionResult struct {
	Message  string        `json:"message"`
	Approved int           `json:"approved,omitempty"`
	Rejected int           `json:"rejected,omitempty"`
	Queue    QueueResponse `json:"queue"`
}
