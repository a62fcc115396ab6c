package dto

import "github.com/civicsense/portal-gateway/internal/models"

// GrievanceDetail decorates the server record with derived progress values so
// the status tracker renders without re-deriving lifecycle order client-side.
type GrievanceDetail struct {
	Grievance       models.Grievance `json:"grievance"`
	StageIndex      int              `json:"stage_index"`
	StageCount      int              `json:"stage_count"`
	ProgressPercent int              `json:"progress_percent"`
}
