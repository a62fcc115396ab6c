package dto

import "github.com/civicsense/portal-gateway/internal/models"

// AssignComplaintRequest routes a complaint to a department.
type AssignComplaintRequest struct {
	Department  string `json:"department" validate:"required"`
	OfficerName string `json:"officer_name"`
	Remarks     string `json:"remarks"`
}

// UpdateComplaintStatusRequest transitions a complaint's lifecycle status.
type UpdateComplaintStatusRequest struct {
	Status       models.GrievanceStatus `json:"status" validate:"required"`
	AdminRemarks string                 `json:"admin_remarks"`
}

// ExportSummaryRequest asks for a locally rendered complaint-list export.
type ExportSummaryRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportSummaryResponse returns the signed download location.
type ExportSummaryResponse struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	Format    string `json:"format"`
	ExpiresAt int64  `json:"expires_at"`
}
