package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/dto"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

// assistantRule maps trigger keywords to a canned reply. First rule whose
// keyword appears in the lowercased message wins; rule order is the priority.
type assistantRule struct {
	Topic    string
	Keywords []string
	Reply    string
}

var defaultAssistantRules = []assistantRule{
	{
		Topic:    "emergency",
		Keywords: []string{"emergency", "urgent", "danger", "fire", "accident"},
		Reply:    "For emergencies please call the municipal control room at 1077 or dial 112. This portal handles non-emergency civic grievances.",
	},
	{
		Topic:    "file",
		Keywords: []string{"file", "submit", "complain", "report", "register"},
		Reply:    "To file a grievance, tap \"New Grievance\" and follow the three steps: describe the issue, add the location and any photo or voice note, then review and submit. You will get a complaint id to track it.",
	},
	{
		Topic:    "track",
		Keywords: []string{"track", "status", "progress", "update", "pending"},
		Reply:    "Open \"My Grievances\" and select a complaint to see its current status and full timeline. Statuses move from submitted to assigned, in progress, and resolved.",
	},
	{
		Topic:    "voice",
		Keywords: []string{"voice", "audio", "record", "speak", "language"},
		Reply:    "You can record a voice note in step 2 instead of typing. After recording, pick the language you spoke so the complaint can be transcribed correctly.",
	},
	{
		Topic:    "photo",
		Keywords: []string{"photo", "image", "picture", "camera"},
		Reply:    "Attach a photo of the issue in step 2. Clear photos of the exact spot help the department resolve your complaint faster.",
	},
	{
		Topic:    "department",
		Keywords: []string{"department", "who", "assigned", "responsible"},
		Reply:    "Complaints are classified automatically and routed to the responsible department, for example Water Supply, Roads, Sanitation, or Electricity. The assigned department shows on the complaint's detail page.",
	},
	{
		Topic:    "anonymous",
		Keywords: []string{"anonymous", "name", "phone", "contact", "privacy"},
		Reply:    "Your name and phone number are optional. Leaving them empty files the grievance anonymously; adding them lets the department reach you for clarifications.",
	},
	{
		Topic:    "time",
		Keywords: []string{"long", "time", "days", "when", "resolve"},
		Reply:    "Resolution time depends on the category and priority. High-priority issues like safety hazards are typically attended within 48 hours; routine complaints within 7 working days.",
	},
}

var assistantFallback = dto.AssistantResponse{
	Reply: "I can help with filing a grievance, tracking its status, voice and photo attachments, or finding the responsible department. What would you like to know?",
	Suggestions: []string{
		"How do I file a grievance?",
		"How do I track my complaint?",
		"Can I record a voice note?",
		"Which department handles my issue?",
	},
}

// AssistantService is the portal's offline helper. It matches messages against
// a fixed keyword table and never calls the backend, so it keeps answering
// when everything else is down.
type AssistantService struct {
	rules     []assistantRule
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssistantService constructs an AssistantService with the default rules.
func NewAssistantService(validate *validator.Validate, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssistantService{rules: defaultAssistantRules, validator: validate, logger: logger}
}

// Reply answers one message. Unmatched messages get the fallback with quick
// suggestions instead of an error.
func (s *AssistantService) Reply(req dto.AssistantRequest) (*dto.AssistantResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assistant payload")
	}

	message := strings.ToLower(req.Message)
	for _, rule := range s.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(message, keyword) {
				return &dto.AssistantResponse{Reply: rule.Reply, Topic: rule.Topic}, nil
			}
		}
	}

	fallback := assistantFallback
	return &fallback, nil
}
