package backend

import "github.com/civicsense/portal-gateway/internal/models"

// SubmitGrievanceRequest is the wire payload for POST /api/grievances. The
// guided-question flags are already folded into Description as bracket
// markers by the wizard; they are not separate fields on this contract.
type SubmitGrievanceRequest struct {
	Description    string                `json:"description"`
	Location       string                `json:"location"`
	Latitude       *float64              `json:"lat,omitempty"`
	Longitude      *float64              `json:"lng,omitempty"`
	ImageBase64    string                `json:"image_base64,omitempty"`
	AudioBase64    string                `json:"audio_base64,omitempty"`
	AudioPath      string                `json:"audio_path,omitempty"`
	AudioMeta      *models.AudioMetadata `json:"audio_meta,omitempty"`
	AudioLanguage  string                `json:"audio_language,omitempty"`
	SubmitterName  string                `json:"submitter_name,omitempty"`
	SubmitterPhone string                `json:"submitter_phone,omitempty"`
}

// SubmitGrievanceResponse carries the new complaint id and the classifier's
// routing decision.
type SubmitGrievanceResponse struct {
	ComplaintID    string                `json:"complaint_id"`
	Classification models.Classification `json:"classification"`
}

// UploadMediaResponse is returned by the multipart media upload endpoint.
type UploadMediaResponse struct {
	Success  bool                 `json:"success"`
	Path     string               `json:"path"`
	Metadata models.AudioMetadata `json:"metadata"`
}

// Credentials authenticates against the backend.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a new citizen account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Success bool           `json:"success"`
	Token   string         `json:"token"`
	User    models.Profile `json:"user"`
}

// ComplaintFilter holds the admin complaint list query constraints. Filtering
// is server-side; the gateway passes these through untouched.
type ComplaintFilter struct {
	Search   string
	Status   string
	Priority string
	Category string
}

// QueueFilter holds the auto-assignment queue query constraints.
type QueueFilter struct {
	Days       int
	Status     string
	Department string
}

// AssignRequest routes a complaint to a department.
type AssignRequest struct {
	Department  string `json:"department"`
	OfficerName string `json:"officer_name,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

// StatusUpdateRequest transitions a complaint's lifecycle status.
type StatusUpdateRequest struct {
	Status       models.GrievanceStatus `json:"status"`
	AdminRemarks string                 `json:"admin_remarks,omitempty"`
}

// ApproveRequest confirms an AI-suggested routing.
type ApproveRequest struct {
	Department string `json:"department"`
	Remarks    string `json:"remarks,omitempty"`
}

// RejectRequest declines an AI-suggested routing.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// BulkApproveRequest approves a set of pending suggestions in one call.
type BulkApproveRequest struct {
	ComplaintIDs []string `json:"ids"`
	Department   string   `json:"department"`
}

// ActionResponse reports the outcome of a mutating admin action.
type ActionResponse struct {
	Message  string `json:"message"`
	Approved int    `json:"approved,omitempty"`
	Rejected int    `json:"rejected,omitempty"`
	Failed   int    `json:"failed,omitempty"`
}

type errorBody struct {
	Detail string `json:"detail"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	switch {
	case b.Detail != "":
		return b.Detail
	case b.Error.Message != "":
		return b.Error.Message
	case b.Message != "":
		return b.Message
	}
	return ""
}
