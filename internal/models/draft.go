package models

import "time"

// WizardStep identifies the active step of the submission wizard.
type WizardStep int

const (
	StepDescription WizardStep = iota + 1
	StepLocationEvidence
	StepContactSubmit
)

// AudioMetadata describes an uploaded audio attachment as reported by the
// backend (or probed locally from the file header).
type AudioMetadata struct {
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Format          string  `json:"format,omitempty"`
	SizeBytes       int64   `json:"size_bytes,omitempty"`
}

// GrievanceDraft is the transient, session-scoped state of the submission
// wizard. It is created empty when the wizard starts, mutated per step, and
// discarded on successful submit. Nothing here survives a completed
// submission.
type GrievanceDraft struct {
	SessionID string     `json:"session_id"`
	Step      WizardStep `json:"step"`

	// Step 1
	Description   string `json:"description"`
	SafetyHazard  bool   `json:"safety_hazard"`
	BlockedAccess bool   `json:"blocked_access"`

	// Step 2
	LocationText string   `json:"location_text"`
	Latitude     *float64 `json:"lat,omitempty"`
	Longitude    *float64 `json:"lng,omitempty"`
	ImageName    string   `json:"image_name,omitempty"`
	ImageBase64  string   `json:"image_base64,omitempty"`

	// Audio attachment: base64 for inline fallback, path+meta once the
	// background upload resolves. Both representations of the same audio
	// coexist until submit. AudioSpool identifies the in-flight upload for
	// this exact attachment; a finished upload job whose spool path no
	// longer matches belongs to an attachment that has since been replaced.
	AudioName     string         `json:"audio_name,omitempty"`
	AudioBase64   string         `json:"audio_base64,omitempty"`
	AudioPath     string         `json:"audio_path,omitempty"`
	AudioSpool    string         `json:"audio_spool,omitempty"`
	AudioMeta     *AudioMetadata `json:"audio_meta,omitempty"`
	AudioLanguage string         `json:"audio_language,omitempty"`

	// Step 3
	SubmitterName  string `json:"submitter_name,omitempty"`
	SubmitterPhone string `json:"submitter_phone,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAudio reports whether an audio attachment is present in any form.
func (d *GrievanceDraft) HasAudio() bool {
	return d.AudioName != ""
}

// ClearAudio removes the audio attachment. All associated fields go together;
// a draft must never hold a language tag or metadata for audio that is gone.
func (d *GrievanceDraft) ClearAudio() {
	d.AudioName = ""
	d.AudioBase64 = ""
	d.AudioPath = ""
	d.AudioSpool = ""
	d.AudioMeta = nil
	d.AudioLanguage = ""
}

// ClearImage removes the image attachment.
func (d *GrievanceDraft) ClearImage() {
	d.ImageName = ""
	d.ImageBase64 = ""
}
