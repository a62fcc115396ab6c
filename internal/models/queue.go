package models

// ReviewState is the approval lane of an auto-assignment suggestion. It is
// independent of the grievance's own lifecycle status.
type ReviewState string

const (
	ReviewPending  ReviewState = "pending_approval"
	ReviewApproved ReviewState = "approved"
	ReviewRejected ReviewState = "rejected"
	ReviewRequired ReviewState = "review_required"
)

// AutoAssignmentItem is one AI-suggested routing awaiting an official's
// decision. Server-owned; admin actions are requests, the backend is the sole
// authority on the resulting state.
type AutoAssignmentItem struct {
	ComplaintID         string      `json:"complaint_id"`
	SuggestedDepartment string      `json:"suggested_department"`
	ConfidenceScore     float64     `json:"confidence_score"`
	CurrentStatus       ReviewState `json:"current_status"`
	Priority            Priority    `json:"priority"`
	DaysSinceSubmission int         `json:"days_since_submission"`
}

// QueueStats aggregates the queue as reported by the backend.
type QueueStats struct {
	Pending        int     `json:"pending"`
	Approved       int     `json:"approved"`
	Rejected       int     `json:"rejected"`
	ReviewRequired int     `json:"review_required"`
	AvgConfidence  float64 `json:"avg_confidence"`
}

// QueueConfig is the backend's auto-assignment tuning, rendered read-only.
type QueueConfig struct {
	Enabled              bool    `json:"enabled"`
	AutoApproveThreshold float64 `json:"auto_approve_threshold"`
	ReviewThreshold      float64 `json:"review_threshold"`
}

// QueueSnapshot bundles items, stats and config as fetched in one reload.
type QueueSnapshot struct {
	Items  []AutoAssignmentItem `json:"items"`
	Stats  QueueStats           `json:"stats"`
	Config QueueConfig          `json:"config"`
}
