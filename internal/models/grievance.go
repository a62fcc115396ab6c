package models

import "time"

// GrievanceStatus is the lifecycle lane of a grievance. The order is strict
// and drives progress rendering.
type GrievanceStatus string

const (
	StatusSubmitted  GrievanceStatus = "submitted"
	StatusAssigned   GrievanceStatus = "assigned"
	StatusInProgress GrievanceStatus = "in_progress"
	StatusResolved   GrievanceStatus = "resolved"
)

var statusRanks = map[GrievanceStatus]int{
	StatusSubmitted:  0,
	StatusAssigned:   1,
	StatusInProgress: 2,
	StatusResolved:   3,
}

// Rank returns the position of the status in the lifecycle, or -1 when unknown.
func (s GrievanceStatus) Rank() int {
	if rank, ok := statusRanks[s]; ok {
		return rank
	}
	return -1
}

// Valid reports whether the status is one of the known lifecycle values.
func (s GrievanceStatus) Valid() bool {
	_, ok := statusRanks[s]
	return ok
}

// Priority assigned by the backend classifier.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TimelineEntry is one step of a grievance's status history.
type TimelineEntry struct {
	Status    GrievanceStatus `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Remarks   string          `json:"remarks,omitempty"`
}

// Classification is the backend's routing decision for a submission.
type Classification struct {
	Category      string   `json:"category"`
	Priority      Priority `json:"priority"`
	Department    string   `json:"department"`
	Explanation   string   `json:"explanation,omitempty"`
	KeywordsFound []string `json:"keywords_found,omitempty"`
}

// Grievance is the server-owned complaint record. The gateway never mutates
// it directly; every transition goes through a backend call that returns the
// updated record.
type Grievance struct {
	ID             string          `json:"id"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Location       string          `json:"location"`
	Latitude       *float64        `json:"lat,omitempty"`
	Longitude      *float64        `json:"lng,omitempty"`
	Status         GrievanceStatus `json:"status"`
	Priority       Priority        `json:"priority"`
	Department     string          `json:"department"`
	Explanation    string          `json:"explanation,omitempty"`
	KeywordsFound  []string        `json:"keywords_found,omitempty"`
	IsDuplicate    bool            `json:"is_duplicate"`
	SimilarTo      string          `json:"similar_to,omitempty"`
	DuplicateScore float64         `json:"duplicate_score,omitempty"`
	Timeline       []TimelineEntry `json:"timeline,omitempty"`
	AudioPath      string          `json:"audio_path,omitempty"`
	AudioLanguage  string          `json:"audio_language,omitempty"`
	ImagePath      string          `json:"image_path,omitempty"`
	SubmitterName  string          `json:"submitter_name,omitempty"`
	SubmitterPhone string          `json:"submitter_phone,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
