package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

type mockDraftStore struct {
	drafts  map[string]*models.GrievanceDraft
	getErr  error
	saveErr error
	deleted []string
}

func newMockDraftStore() *mockDraftStore {
	return &mockDraftStore{drafts: make(map[string]*models.GrievanceDraft)}
}

func (m *mockDraftStore) Get(ctx context.Context, sessionID string) (*models.GrievanceDraft, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	draft, ok := m.drafts[sessionID]
	if !ok {
		return nil, appErrors.ErrDraftNotFound
	}
	copied := *draft
	return &copied, nil
}

func (m *mockDraftStore) Save(ctx context.Context, draft *models.GrievanceDraft, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *draft
	m.drafts[draft.SessionID] = &copied
	return nil
}

func (m *mockDraftStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.drafts, sessionID)
	m.deleted = append(m.deleted, sessionID)
	return nil
}

type mockSubmitter struct {
	lastRequest *backend.SubmitGrievanceRequest
	response    *backend.SubmitGrievanceResponse
	err         error
	calls       int
}

func (m *mockSubmitter) SubmitGrievance(ctx context.Context, req backend.SubmitGrievanceRequest) (*backend.SubmitGrievanceResponse, error) {
	m.calls++
	m.lastRequest = &req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func newWizardService(store *mockDraftStore, submitter *mockSubmitter) *WizardService {
	return NewWizardService(store, submitter, validator.New(), zap.NewNop(), WizardConfig{
		DraftTTL:          time.Hour,
		MinDescriptionLen: 20,
	})
}

func seedDraft(store *mockDraftStore, draft *models.GrievanceDraft) {
	store.drafts[draft.SessionID] = draft
}

func TestWizardStartOpensFreshDraft(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})

	view, err := svc.Start(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepDescription, view.Step)
	assert.False(t, view.Audio.Attached)
	require.Contains(t, store.drafts, "s1")
}

func TestWizardAdvanceRequiresMinimumDescription(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepDescription, Description: "too short"})

	_, err := svc.Advance(context.Background(), "s1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStepBlocked.Code, appErr.Code)

	seedDraft(store, &models.GrievanceDraft{
		SessionID:   "s1",
		Step:        models.StepDescription,
		Description: "the streetlight on 4th avenue has been dark for a week",
	})
	view, err := svc.Advance(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepLocationEvidence, view.Step)
}

func TestWizardAdvanceCountsRunesNotBytes(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})
	// 20 multibyte runes, well over 20 bytes either way; the guard must pass.
	seedDraft(store, &models.GrievanceDraft{
		SessionID:   "s1",
		Step:        models.StepDescription,
		Description: strings.Repeat("स", 20),
	})

	_, err := svc.Advance(context.Background(), "s1")
	require.NoError(t, err)
}

func TestWizardAdvanceLocationGuard(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})
	seedDraft(store, &models.GrievanceDraft{
		SessionID:   "s1",
		Step:        models.StepLocationEvidence,
		Description: "overflowing garbage bins near the market entrance",
	})

	_, err := svc.Advance(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStepBlocked.Code, appErrors.FromError(err).Code)

	seedDraft(store, &models.GrievanceDraft{
		SessionID:    "s1",
		Step:         models.StepLocationEvidence,
		Description:  "overflowing garbage bins near the market entrance",
		LocationText: "Market Road, Ward 12",
	})
	view, err := svc.Advance(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepContactSubmit, view.Step)
}

func TestWizardAdvanceAudioRequiresLanguage(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})
	seedDraft(store, &models.GrievanceDraft{
		SessionID:    "s1",
		Step:         models.StepLocationEvidence,
		Description:  "water pipeline leaking for three days near the school",
		LocationText: "School Street",
		AudioName:    "note.wav",
	})

	_, err := svc.Advance(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStepBlocked.Code, appErrors.FromError(err).Code)

	_, err = svc.SetAudioLanguage(context.Background(), "s1", dto.SetAudioLanguageRequest{Language: "hi"})
	require.NoError(t, err)

	view, err := svc.Advance(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepContactSubmit, view.Step)
}

func TestWizardBackIsNeverGuarded(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepContactSubmit})

	view, err := svc.Back(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepLocationEvidence, view.Step)

	view, err = svc.Back(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepDescription, view.Step)

	// Already at the first step: stays put.
	view, err = svc.Back(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepDescription, view.Step)
}

func TestWizardSetAudioLanguageWithoutAudio(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})

	_, err := svc.SetAudioLanguage(context.Background(), "s1", dto.SetAudioLanguageRequest{Language: "hi"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestWizardSelectPinBounds(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})

	lat, lng := 91.0, 20.0
	_, err := svc.SelectPin(context.Background(), "s1", dto.SelectPinRequest{Latitude: &lat, Longitude: &lng})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	lat, lng = 17.43, 78.45
	view, err := svc.SelectPin(context.Background(), "s1", dto.SelectPinRequest{Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	require.NotNil(t, view.Latitude)
	assert.InDelta(t, 17.43, *view.Latitude, 0.0001)
}

func TestWizardSubmitAppendsMarkers(t *testing.T) {
	store := newMockDraftStore()
	submitter := &mockSubmitter{response: &backend.SubmitGrievanceResponse{
		ComplaintID: "GRV-42",
		Classification: models.Classification{
			Category:   "roads",
			Priority:   models.PriorityHigh,
			Department: "Roads",
		},
	}}
	svc := newWizardService(store, submitter)
	seedDraft(store, &models.GrievanceDraft{
		SessionID:     "s1",
		Step:          models.StepContactSubmit,
		Description:   "a deep pothole is swallowing scooter wheels on the bypass",
		SafetyHazard:  true,
		BlockedAccess: true,
		LocationText:  "Bypass Road km 3",
	})

	res, err := svc.Submit(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "GRV-42", res.ComplaintID)
	assert.Equal(t, "/grievances/GRV-42", res.RedirectTo)

	require.NotNil(t, submitter.lastRequest)
	assert.Equal(t,
		"a deep pothole is swallowing scooter wheels on the bypass [Safety Hazard Flagged] [Blocking Access Flagged]",
		submitter.lastRequest.Description,
	)
	assert.Contains(t, store.deleted, "s1")
}

func TestWizardSubmitDefaultsAnonymousSubmitter(t *testing.T) {
	store := newMockDraftStore()
	submitter := &mockSubmitter{response: &backend.SubmitGrievanceResponse{ComplaintID: "GRV-50"}}
	svc := newWizardService(store, submitter)
	seedDraft(store, &models.GrievanceDraft{
		SessionID:    "s1",
		Step:         models.StepContactSubmit,
		Description:  "garbage has not been collected for over a week now",
		LocationText: "Market Lane",
	})

	_, err := svc.Submit(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, submitter.lastRequest)
	assert.Equal(t, "Anonymous", submitter.lastRequest.SubmitterName)
}

func TestWizardSubmitKeepsProvidedSubmitter(t *testing.T) {
	store := newMockDraftStore()
	submitter := &mockSubmitter{response: &backend.SubmitGrievanceResponse{ComplaintID: "GRV-51"}}
	svc := newWizardService(store, submitter)
	seedDraft(store, &models.GrievanceDraft{
		SessionID:     "s1",
		Step:          models.StepContactSubmit,
		Description:   "garbage has not been collected for over a week now",
		LocationText:  "Market Lane",
		SubmitterName: "R. Devi",
	})

	_, err := svc.Submit(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, submitter.lastRequest)
	assert.Equal(t, "R. Devi", submitter.lastRequest.SubmitterName)
}

func TestWizardSubmitRetryDoesNotDuplicateMarkers(t *testing.T) {
	store := newMockDraftStore()
	submitter := &mockSubmitter{err: appErrors.ErrBackendUnavailable}
	svc := newWizardService(store, submitter)
	seedDraft(store, &models.GrievanceDraft{
		SessionID:    "s1",
		Step:         models.StepContactSubmit,
		Description:  "streetlights out across the whole colony since monday",
		SafetyHazard: true,
		LocationText: "Shanti Colony",
	})

	_, err := svc.Submit(context.Background(), "s1")
	require.Error(t, err)
	// Draft survives the failure untouched.
	require.Contains(t, store.drafts, "s1")
	assert.Equal(t, "streetlights out across the whole colony since monday", store.drafts["s1"].Description)

	submitter.err = nil
	submitter.response = &backend.SubmitGrievanceResponse{ComplaintID: "GRV-7"}

	_, err = svc.Submit(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, submitter.calls)
	assert.Equal(t, 1, strings.Count(submitter.lastRequest.Description, "[Safety Hazard Flagged]"))
}

func TestWizardSubmitPrefersUploadedAudioPath(t *testing.T) {
	store := newMockDraftStore()
	submitter := &mockSubmitter{response: &backend.SubmitGrievanceResponse{ComplaintID: "GRV-9"}}
	svc := newWizardService(store, submitter)
	seedDraft(store, &models.GrievanceDraft{
		SessionID:     "s1",
		Step:          models.StepContactSubmit,
		Description:   "voice note attached describing the drainage overflow",
		LocationText:  "Lake View Road",
		AudioName:     "note.wav",
		AudioBase64:   "aW5saW5lLWNvcHk=",
		AudioPath:     "uploads/audio/note.wav",
		AudioMeta:     &models.AudioMetadata{DurationSeconds: 12.5, Format: "wav"},
		AudioLanguage: "te",
	})

	_, err := svc.Submit(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "uploads/audio/note.wav", submitter.lastRequest.AudioPath)
	assert.Empty(t, submitter.lastRequest.AudioBase64)
	assert.Equal(t, "te", submitter.lastRequest.AudioLanguage)
	require.NotNil(t, submitter.lastRequest.AudioMeta)
	assert.InDelta(t, 12.5, submitter.lastRequest.AudioMeta.DurationSeconds, 0.001)
}

func TestWizardSubmitFallsBackToInlineAudio(t *testing.T) {
	store := newMockDraftStore()
	submitter := &mockSubmitter{response: &backend.SubmitGrievanceResponse{ComplaintID: "GRV-10"}}
	svc := newWizardService(store, submitter)
	seedDraft(store, &models.GrievanceDraft{
		SessionID:     "s1",
		Step:          models.StepContactSubmit,
		Description:   "voice note attached, upload still pending in background",
		LocationText:  "Hill Street",
		AudioName:     "note.wav",
		AudioBase64:   "aW5saW5lLWNvcHk=",
		AudioLanguage: "hi",
	})

	_, err := svc.Submit(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "aW5saW5lLWNvcHk=", submitter.lastRequest.AudioBase64)
	assert.Empty(t, submitter.lastRequest.AudioPath)
}

func TestWizardSubmitBeforeFinalStep(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})
	seedDraft(store, &models.GrievanceDraft{
		SessionID:    "s1",
		Step:         models.StepLocationEvidence,
		Description:  "a long enough description for the first guard to pass",
		LocationText: "Main Road",
	})

	_, err := svc.Submit(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStepBlocked.Code, appErrors.FromError(err).Code)
}

func TestWizardGetMissingDraft(t *testing.T) {
	store := newMockDraftStore()
	svc := newWizardService(store, &mockSubmitter{})

	_, err := svc.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDraftNotFound) || appErrors.FromError(err).Code == appErrors.ErrDraftNotFound.Code)
}
