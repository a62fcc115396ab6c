package dto

// AssistantRequest is one user message to the local responder.
type AssistantRequest struct {
	Message string `json:"message" validate:"required"`
}

// AssistantResponse is the matched reply. Suggestions list follow-up prompts
// the client may render as quick replies.
type AssistantResponse struct {
	Reply       string   `json:"reply"`
	Topic       string   `json:"topic,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}
