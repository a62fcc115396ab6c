package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

// Guided-question markers appended to the description at submit time. The
// stored draft keeps the flags as booleans, so retrying a failed submit can
// never stack a second copy of a marker.
const (
	markerSafetyHazard  = " [Safety Hazard Flagged]"
	markerBlockedAccess = " [Blocking Access Flagged]"
)

// anonymousSubmitter is the wire value for grievances filed without a name.
const anonymousSubmitter = "Anonymous"

type draftStore interface {
	Get(ctx context.Context, sessionID string) (*models.GrievanceDraft, error)
	Save(ctx context.Context, draft *models.GrievanceDraft, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type grievanceSubmitter interface {
	SubmitGrievance(ctx context.Context, req backend.SubmitGrievanceRequest) (*backend.SubmitGrievanceResponse, error)
}

// WizardConfig tunes the submission wizard.
type WizardConfig struct {
	DraftTTL          time.Duration
	MinDescriptionLen int
}

// WizardService drives the three-step submission wizard. All draft state lives
// in the store; each call loads, mutates and saves, so concurrent tabs of the
// same session converge on last-write-wins per field group.
type WizardService struct {
	drafts    draftStore
	backend   grievanceSubmitter
	validator *validator.Validate
	logger    *zap.Logger
	config    WizardConfig
}

// NewWizardService constructs a WizardService instance.
func NewWizardService(drafts draftStore, b grievanceSubmitter, validate *validator.Validate, logger *zap.Logger, config WizardConfig) *WizardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.MinDescriptionLen <= 0 {
		config.MinDescriptionLen = 20
	}
	if config.DraftTTL <= 0 {
		config.DraftTTL = 2 * time.Hour
	}
	return &WizardService{drafts: drafts, backend: b, validator: validate, logger: logger, config: config}
}

// Start opens a fresh draft for the session, replacing any existing one.
func (s *WizardService) Start(ctx context.Context, sessionID string) (*dto.DraftResponse, error) {
	now := time.Now().UTC()
	draft := &models.GrievanceDraft{
		SessionID: sessionID,
		Step:      models.StepDescription,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draftView(draft), nil
}

// Get returns the current draft state.
func (s *WizardService) Get(ctx context.Context, sessionID string) (*dto.DraftResponse, error) {
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return draftView(draft), nil
}

// UpdateDescription stores the step-1 fields. The guided-question flags stay
// structured here; they are folded into the description only when submitting.
func (s *WizardService) UpdateDescription(ctx context.Context, sessionID string, req dto.UpdateDescriptionRequest) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid description payload")
	}

	return s.mutate(ctx, sessionID, func(draft *models.GrievanceDraft) error {
		draft.Description = req.Description
		draft.SafetyHazard = req.SafetyHazard
		draft.BlockedAccess = req.BlockedAccess
		return nil
	})
}

// UpdateLocation stores the step-2 text location.
func (s *WizardService) UpdateLocation(ctx context.Context, sessionID string, req dto.UpdateLocationRequest) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}

	return s.mutate(ctx, sessionID, func(draft *models.GrievanceDraft) error {
		draft.LocationText = req.LocationText
		return nil
	})
}

// SelectPin stores map pin coordinates alongside the text location.
func (s *WizardService) SelectPin(ctx context.Context, sessionID string, req dto.SelectPinRequest) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pin payload")
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "pin coordinates out of bounds")
	}

	return s.mutate(ctx, sessionID, func(draft *models.GrievanceDraft) error {
		draft.Latitude = req.Latitude
		draft.Longitude = req.Longitude
		return nil
	})
}

// SetAudioLanguage tags the spoken language of the attached audio.
func (s *WizardService) SetAudioLanguage(ctx context.Context, sessionID string, req dto.SetAudioLanguageRequest) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid language payload")
	}

	return s.mutate(ctx, sessionID, func(draft *models.GrievanceDraft) error {
		if !draft.HasAudio() {
			return appErrors.Clone(appErrors.ErrValidation, "no audio attachment to tag")
		}
		draft.AudioLanguage = req.Language
		return nil
	})
}

// UpdateContact stores the optional step-3 contact fields.
func (s *WizardService) UpdateContact(ctx context.Context, sessionID string, req dto.UpdateContactRequest) (*dto.DraftResponse, error) {
	return s.mutate(ctx, sessionID, func(draft *models.GrievanceDraft) error {
		draft.SubmitterName = req.SubmitterName
		draft.SubmitterPhone = req.SubmitterPhone
		return nil
	})
}

// Advance moves the wizard forward one step, enforcing the step guard.
func (s *WizardService) Advance(ctx context.Context, sessionID string) (*dto.DraftResponse, error) {
	return s.mutate(ctx, sessionID, func(draft *models.GrievanceDraft) error {
		switch draft.Step {
		case models.StepDescription:
			if err := s.guardDescription(draft); err != nil {
				return err
			}
			draft.Step = models.StepLocationEvidence
		case models.StepLocationEvidence:
			if err := s.guardLocationEvidence(draft); err != nil {
				return err
			}
			draft.Step = models.StepContactSubmit
		case models.StepContactSubmit:
			return appErrors.Clone(appErrors.ErrStepBlocked, "already at the final step")
		default:
			return appErrors.Clone(appErrors.ErrInternal, "draft in unknown step")
		}
		return nil
	})
}

// Back moves the wizard one step back. Backward moves are never guarded and
// never discard entered data.
func (s *WizardService) Back(ctx context.Context, sessionID string) (*dto.DraftResponse, error) {
	return s.mutate(ctx, sessionID, func(draft *models.GrievanceDraft) error {
		if draft.Step > models.StepDescription {
			draft.Step--
		}
		return nil
	})
}

// Submit files the draft with the backend. The draft is only discarded after
// the backend confirms; any failure leaves it intact for retry.
func (s *WizardService) Submit(ctx context.Context, sessionID string) (*dto.SubmitResponse, error) {
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if draft.Step != models.StepContactSubmit {
		return nil, appErrors.Clone(appErrors.ErrStepBlocked, "wizard has not reached the final step")
	}
	// Re-check earlier guards: a stale tab may have weakened the draft since
	// the step transitions happened.
	if err := s.guardDescription(draft); err != nil {
		return nil, err
	}
	if err := s.guardLocationEvidence(draft); err != nil {
		return nil, err
	}

	resp, err := s.backend.SubmitGrievance(ctx, buildSubmitRequest(draft))
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, sessionID); err != nil {
		// Submission already succeeded; an orphaned draft only costs its TTL.
		s.logger.Warn("failed to discard draft after submit", zap.String("session_id", sessionID), zap.Error(err))
	}

	s.logger.Info("grievance submitted",
		zap.String("session_id", sessionID),
		zap.String("complaint_id", resp.ComplaintID),
		zap.String("department", resp.Classification.Department),
	)

	return &dto.SubmitResponse{
		ComplaintID:    resp.ComplaintID,
		Classification: resp.Classification,
		RedirectTo:     "/grievances/" + resp.ComplaintID,
	}, nil
}

// Discard throws the draft away without submitting.
func (s *WizardService) Discard(ctx context.Context, sessionID string) error {
	return s.drafts.Delete(ctx, sessionID)
}

func (s *WizardService) guardDescription(draft *models.GrievanceDraft) error {
	if utf8.RuneCountInString(strings.TrimSpace(draft.Description)) < s.config.MinDescriptionLen {
		return appErrors.Clone(appErrors.ErrStepBlocked, "description is too short")
	}
	return nil
}

func (s *WizardService) guardLocationEvidence(draft *models.GrievanceDraft) error {
	if strings.TrimSpace(draft.LocationText) == "" {
		return appErrors.Clone(appErrors.ErrStepBlocked, "location is required")
	}
	if draft.HasAudio() && draft.AudioLanguage == "" {
		return appErrors.Clone(appErrors.ErrStepBlocked, "select the spoken language of the audio")
	}
	return nil
}

func (s *WizardService) mutate(ctx context.Context, sessionID string, fn func(*models.GrievanceDraft) error) (*dto.DraftResponse, error) {
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(draft); err != nil {
		return nil, err
	}
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draftView(draft), nil
}

func (s *WizardService) save(ctx context.Context, draft *models.GrievanceDraft) error {
	draft.UpdatedAt = time.Now().UTC()
	if err := s.drafts.Save(ctx, draft, s.config.DraftTTL); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist draft")
	}
	return nil
}

// buildSubmitRequest folds the draft into the backend contract. Markers ride
// on the outgoing description only; the draft's description stays clean. When
// the background upload has resolved, the durable path wins and the inline
// base64 copy is dropped from the payload.
func buildSubmitRequest(draft *models.GrievanceDraft) backend.SubmitGrievanceRequest {
	description := draft.Description
	if draft.SafetyHazard {
		description += markerSafetyHazard
	}
	if draft.BlockedAccess {
		description += markerBlockedAccess
	}

	submitterName := draft.SubmitterName
	if submitterName == "" {
		submitterName = anonymousSubmitter
	}

	req := backend.SubmitGrievanceRequest{
		Description:    description,
		Location:       draft.LocationText,
		Latitude:       draft.Latitude,
		Longitude:      draft.Longitude,
		ImageBase64:    draft.ImageBase64,
		SubmitterName:  submitterName,
		SubmitterPhone: draft.SubmitterPhone,
	}

	if draft.HasAudio() {
		req.AudioLanguage = draft.AudioLanguage
		if draft.AudioPath != "" {
			req.AudioPath = draft.AudioPath
			req.AudioMeta = draft.AudioMeta
		} else {
			req.AudioBase64 = draft.AudioBase64
		}
	}

	return req
}

func draftView(draft *models.GrievanceDraft) *dto.DraftResponse {
	return &dto.DraftResponse{
		Step:          draft.Step,
		Description:   draft.Description,
		SafetyHazard:  draft.SafetyHazard,
		BlockedAccess: draft.BlockedAccess,
		LocationText:  draft.LocationText,
		Latitude:      draft.Latitude,
		Longitude:     draft.Longitude,
		Audio: dto.AttachmentState{
			Attached:       draft.HasAudio(),
			Name:           draft.AudioName,
			UploadResolved: draft.AudioPath != "",
			Metadata:       draft.AudioMeta,
			Language:       draft.AudioLanguage,
		},
		Image: dto.AttachmentState{
			Attached: draft.ImageName != "",
			Name:     draft.ImageName,
		},
		SubmitterName:  draft.SubmitterName,
		SubmitterPhone: draft.SubmitterPhone,
	}
}
