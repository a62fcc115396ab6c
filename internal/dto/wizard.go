package dto

import "github.com/civicsense/portal-gateway/internal/models"

// UpdateDescriptionRequest carries the step-1 fields.
type UpdateDescriptionRequest struct {
	Description   string `json:"description" validate:"required"`
	SafetyHazard  bool   `json:"safety_hazard"`
	BlockedAccess bool   `json:"blocked_access"`
}

// UpdateLocationRequest carries the step-2 text location.
type UpdateLocationRequest struct {
	LocationText string `json:"location_text" validate:"required"`
}

// SelectPinRequest reports a map pin selection. Coordinates come from the
// click, not from the tile server, so this works with tiles unavailable.
type SelectPinRequest struct {
	Latitude  *float64 `json:"lat" validate:"required"`
	Longitude *float64 `json:"lng" validate:"required"`
}

// SetAudioLanguageRequest records the spoken language of an audio attachment.
type SetAudioLanguageRequest struct {
	Language string `json:"language" validate:"required"`
}

// UpdateContactRequest carries the optional step-3 contact fields.
type UpdateContactRequest struct {
	SubmitterName  string `json:"submitter_name"`
	SubmitterPhone string `json:"submitter_phone"`
}

// AttachmentState summarises an attachment slot for rendering. "Attached" is
// true as soon as the name is known, independent of the background upload.
type AttachmentState struct {
	Attached       bool                  `json:"attached"`
	Name           string                `json:"name,omitempty"`
	UploadResolved bool                  `json:"upload_resolved"`
	Metadata       *models.AudioMetadata `json:"metadata,omitempty"`
	Language       string                `json:"language,omitempty"`
}

// DraftResponse is the wizard state returned to the client after every
// mutation, so the view never diverges from the stored draft.
type DraftResponse struct {
	Step           models.WizardStep `json:"step"`
	Description    string            `json:"description"`
	SafetyHazard   bool              `json:"safety_hazard"`
	BlockedAccess  bool              `json:"blocked_access"`
	LocationText   string            `json:"location_text"`
	Latitude       *float64          `json:"lat,omitempty"`
	Longitude      *float64          `json:"lng,omitempty"`
	Audio          AttachmentState   `json:"audio"`
	Image          AttachmentState   `json:"image"`
	SubmitterName  string            `json:"submitter_name"`
	SubmitterPhone string            `json:"submitter_phone"`
}

// MapProviderResponse is the location picker's tile configuration.
type MapProviderResponse struct {
	TileURL     string `json:"tile_url"`
	Attribution string `json:"attribution"`
	MinZoom     int    `json:"min_zoom"`
	MaxZoom     int    `json:"max_zoom"`
	Available   bool   `json:"available"`
}

// SubmitResponse reports a successful submission: the backend complaint id,
// its classification, and where the client should navigate next.
type SubmitResponse struct {
	ComplaintID    string                `json:"complaint_id"`
	Classification models.Classification `json:"classification"`
	RedirectTo     string                `json:"redirect_to"`
}
