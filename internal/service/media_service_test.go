package service

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/jobs"
)

type mockUploader struct {
	response *backend.UploadMediaResponse
	err      error
	lastName string
	calls    int
}

func (m *mockUploader) UploadMedia(ctx context.Context, filename string, data []byte) (*backend.UploadMediaResponse, error) {
	m.calls++
	m.lastName = filename
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

type mockSpool struct {
	files map[string][]byte
}

func newMockSpool() *mockSpool {
	return &mockSpool{files: make(map[string][]byte)}
}

func (m *mockSpool) Save(filename string, data []byte) (string, error) {
	m.files[filename] = data
	return filename, nil
}

func (m *mockSpool) Read(filename string) ([]byte, error) {
	data, ok := m.files[filename]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return data, nil
}

func (m *mockSpool) Delete(filename string) error {
	delete(m.files, filename)
	return nil
}

func newMediaService(store *mockDraftStore, uploader *mockUploader, spool *mockSpool) *MediaService {
	return NewMediaService(store, uploader, spool, zap.NewNop(), MediaConfig{
		MaxFileSizeBytes: 1 << 20,
		AllowedAudioMIME: []string{"audio/wav"},
		AllowedImageMIME: []string{"image/png"},
		DraftTTL:         time.Hour,
	})
}

// wavFixture builds a minimal PCM WAV file with the given byte rate and data
// chunk length.
func wavFixture(byteRate uint32, dataLen int) []byte {
	buf := make([]byte, 0, 44+dataLen)
	buf = append(buf, []byte("RIFF")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+dataLen))
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, 1) // mono
	buf = binary.LittleEndian.AppendUint32(buf, byteRate)
	buf = binary.LittleEndian.AppendUint32(buf, byteRate)
	buf = binary.LittleEndian.AppendUint16(buf, 2)
	buf = binary.LittleEndian.AppendUint16(buf, 16)
	buf = append(buf, []byte("data")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dataLen))
	buf = append(buf, make([]byte, dataLen)...)
	return buf
}

func TestRecordingSessionIsExclusive(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})
	svc := newMediaService(store, &mockUploader{}, newMockSpool())

	require.NoError(t, svc.StartRecording(context.Background(), "s1"))

	err := svc.StartRecording(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRecordingActive.Code, appErrors.FromError(err).Code)

	// A different session records independently.
	seedDraft(store, &models.GrievanceDraft{SessionID: "s2", Step: models.StepLocationEvidence})
	require.NoError(t, svc.StartRecording(context.Background(), "s2"))
}

func TestStopRecordingWithoutStart(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})
	svc := newMediaService(store, &mockUploader{}, newMockSpool())

	_, err := svc.StopRecording(context.Background(), "s1", "note.wav", base64.StdEncoding.EncodeToString(wavFixture(16000, 16000)))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoRecording.Code, appErrors.FromError(err).Code)
}

func TestCancelRecordingFreesTheSlot(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})
	svc := newMediaService(store, &mockUploader{}, newMockSpool())

	require.NoError(t, svc.StartRecording(context.Background(), "s1"))
	require.NoError(t, svc.CancelRecording("s1"))

	err := svc.CancelRecording("s1")
	require.Error(t, err)

	require.NoError(t, svc.StartRecording(context.Background(), "s1"))
}

func TestAttachAudioProbesWAVDuration(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})
	svc := newMediaService(store, &mockUploader{}, newMockSpool())

	data := wavFixture(16000, 48000) // 3 seconds
	view, err := svc.AttachAudio(context.Background(), "s1", "note.wav", base64.StdEncoding.EncodeToString(data))
	require.NoError(t, err)
	assert.True(t, view.Audio.Attached)
	assert.False(t, view.Audio.UploadResolved)
	require.NotNil(t, view.Audio.Metadata)
	assert.InDelta(t, 3.0, view.Audio.Metadata.DurationSeconds, 0.001)
}

func TestAttachAudioReplacesPreviousAttachment(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{
		SessionID:     "s1",
		Step:          models.StepLocationEvidence,
		AudioName:     "old.wav",
		AudioBase64:   "b2xk",
		AudioPath:     "uploads/audio/old.wav",
		AudioMeta:     &models.AudioMetadata{DurationSeconds: 9},
		AudioLanguage: "hi",
	})
	svc := newMediaService(store, &mockUploader{}, newMockSpool())

	view, err := svc.AttachAudio(context.Background(), "s1", "new.wav", base64.StdEncoding.EncodeToString(wavFixture(16000, 16000)))
	require.NoError(t, err)
	assert.Equal(t, "new.wav", view.Audio.Name)
	// Replacing the clip drops the stale language tag and upload path.
	assert.Empty(t, view.Audio.Language)
	assert.False(t, view.Audio.UploadResolved)
}

func TestAttachAudioRejectsOversizedPayload(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})
	svc := NewMediaService(store, &mockUploader{}, newMockSpool(), zap.NewNop(), MediaConfig{
		MaxFileSizeBytes: 100,
		DraftTTL:         time.Hour,
	})

	_, err := svc.AttachAudio(context.Background(), "s1", "big.wav", base64.StdEncoding.EncodeToString(wavFixture(16000, 16000)))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMediaTooLarge.Code, appErrors.FromError(err).Code)
}

func TestAttachAudioRejectsUnsupportedType(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})
	svc := newMediaService(store, &mockUploader{}, newMockSpool())

	_, err := svc.AttachAudio(context.Background(), "s1", "note.txt", base64.StdEncoding.EncodeToString([]byte("plain text, not audio")))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMediaUnsupported.Code, appErrors.FromError(err).Code)
}

func TestAttachAudioRejectsBadBase64(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})
	svc := newMediaService(store, &mockUploader{}, newMockSpool())

	_, err := svc.AttachAudio(context.Background(), "s1", "note.wav", "%%not-base64%%")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRemoveAudioClearsEverything(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{
		SessionID:     "s1",
		Step:          models.StepLocationEvidence,
		AudioName:     "note.wav",
		AudioBase64:   "aW5saW5l",
		AudioPath:     "uploads/audio/note.wav",
		AudioSpool:    "spool/s1/pending.wav",
		AudioMeta:     &models.AudioMetadata{DurationSeconds: 4},
		AudioLanguage: "ta",
	})
	spool := newMockSpool()
	spool.files["spool/s1/pending.wav"] = wavFixture(16000, 16000)
	svc := newMediaService(store, &mockUploader{}, spool)

	view, err := svc.RemoveAudio(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, view.Audio.Attached)
	assert.Empty(t, view.Audio.Language)
	assert.Nil(t, view.Audio.Metadata)

	stored := store.drafts["s1"]
	assert.Empty(t, stored.AudioName)
	assert.Empty(t, stored.AudioBase64)
	assert.Empty(t, stored.AudioPath)
	assert.Empty(t, stored.AudioSpool)
	assert.Nil(t, stored.AudioMeta)
	assert.Empty(t, stored.AudioLanguage)
	// The pending spooled copy goes with the attachment.
	assert.NotContains(t, spool.files, "spool/s1/pending.wav")
}

func TestAttachAndRemoveImage(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})
	svc := newMediaService(store, &mockUploader{}, newMockSpool())

	// Minimal PNG header so content sniffing sees image/png.
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	view, err := svc.AttachImage(context.Background(), "s1", "photo.png", base64.StdEncoding.EncodeToString(png))
	require.NoError(t, err)
	assert.True(t, view.Image.Attached)
	assert.Equal(t, "photo.png", view.Image.Name)

	view, err = svc.RemoveImage(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, view.Image.Attached)
}

func TestProcessUploadJobResolvesPath(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{
		SessionID:   "s1",
		Step:        models.StepLocationEvidence,
		AudioName:   "note.wav",
		AudioBase64: "aW5saW5l",
		AudioSpool:  "spool/s1/abc.wav",
		AudioMeta:   &models.AudioMetadata{DurationSeconds: 3},
	})
	spool := newMockSpool()
	spool.files["spool/s1/abc.wav"] = wavFixture(16000, 48000)
	uploader := &mockUploader{response: &backend.UploadMediaResponse{
		Success:  true,
		Path:     "uploads/audio/note.wav",
		Metadata: models.AudioMetadata{DurationSeconds: 3.1, Format: "wav", SizeBytes: 48044},
	}}
	svc := newMediaService(store, uploader, spool)

	err := svc.ProcessUploadJob(context.Background(), jobs.Job{
		ID:      "job-1",
		Type:    "media_upload",
		Payload: uploadJobPayload{SessionID: "s1", AudioName: "note.wav", SpoolPath: "spool/s1/abc.wav"},
	})
	require.NoError(t, err)

	stored := store.drafts["s1"]
	assert.Equal(t, "uploads/audio/note.wav", stored.AudioPath)
	assert.Empty(t, stored.AudioSpool)
	require.NotNil(t, stored.AudioMeta)
	assert.InDelta(t, 3.1, stored.AudioMeta.DurationSeconds, 0.001)
	// Spool entry is consumed.
	assert.NotContains(t, spool.files, "spool/s1/abc.wav")
}

func TestProcessUploadJobIgnoresStaleResult(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{
		SessionID:  "s1",
		Step:       models.StepLocationEvidence,
		AudioName:  "replacement.wav",
		AudioSpool: "spool/s1/replacement.wav",
	})
	spool := newMockSpool()
	spool.files["spool/s1/old.wav"] = wavFixture(16000, 16000)
	uploader := &mockUploader{response: &backend.UploadMediaResponse{Path: "uploads/audio/old.wav"}}
	svc := newMediaService(store, uploader, spool)

	err := svc.ProcessUploadJob(context.Background(), jobs.Job{
		ID:      "job-1",
		Type:    "media_upload",
		Payload: uploadJobPayload{SessionID: "s1", AudioName: "old.wav", SpoolPath: "spool/s1/old.wav"},
	})
	require.NoError(t, err)
	assert.Empty(t, store.drafts["s1"].AudioPath)
	assert.NotContains(t, spool.files, "spool/s1/old.wav")
}

func TestProcessUploadJobIgnoresSupersededSameName(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{
		SessionID:  "s1",
		Step:       models.StepLocationEvidence,
		AudioName:  "note.wav",
		AudioSpool: "spool/s1/fresh.wav",
	})
	spool := newMockSpool()
	spool.files["spool/s1/stale.wav"] = wavFixture(16000, 16000)
	uploader := &mockUploader{response: &backend.UploadMediaResponse{Path: "uploads/audio/note.wav"}}
	svc := newMediaService(store, uploader, spool)

	// The job belongs to an earlier attachment that happened to use the
	// same filename. Its result must not land on the current one.
	err := svc.ProcessUploadJob(context.Background(), jobs.Job{
		ID:      "job-1",
		Type:    "media_upload",
		Payload: uploadJobPayload{SessionID: "s1", AudioName: "note.wav", SpoolPath: "spool/s1/stale.wav"},
	})
	require.NoError(t, err)

	stored := store.drafts["s1"]
	assert.Empty(t, stored.AudioPath)
	assert.Equal(t, "spool/s1/fresh.wav", stored.AudioSpool)
	assert.NotContains(t, spool.files, "spool/s1/stale.wav")
}

func TestAttachAudioSpoolsFreshNoncePerAttachment(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", Step: models.StepLocationEvidence})
	spool := newMockSpool()
	svc := newMediaService(store, &mockUploader{}, spool)

	captured := make(chan jobs.Job, 2)
	queue := jobs.NewQueue("upload-test", func(_ context.Context, job jobs.Job) error {
		captured <- job
		return nil
	}, jobs.QueueConfig{Workers: 1})
	queue.Start(context.Background())
	defer queue.Stop()
	svc.SetUploadQueue(queue)

	data := base64.StdEncoding.EncodeToString(wavFixture(16000, 16000))
	_, err := svc.AttachAudio(context.Background(), "s1", "note.wav", data)
	require.NoError(t, err)
	first := (<-captured).Payload.(uploadJobPayload)

	_, err = svc.AttachAudio(context.Background(), "s1", "note.wav", data)
	require.NoError(t, err)
	second := (<-captured).Payload.(uploadJobPayload)

	// Same filename, distinct spool paths, and the draft tracks the latest.
	assert.NotEqual(t, first.SpoolPath, second.SpoolPath)
	assert.Equal(t, second.SpoolPath, store.drafts["s1"].AudioSpool)
}

func TestProcessUploadJobReturnsBackendError(t *testing.T) {
	store := newMockDraftStore()
	seedDraft(store, &models.GrievanceDraft{SessionID: "s1", AudioName: "note.wav"})
	spool := newMockSpool()
	spool.files["spool/s1/note.wav"] = wavFixture(16000, 16000)
	uploader := &mockUploader{err: appErrors.ErrBackendUnavailable}
	svc := newMediaService(store, uploader, spool)

	err := svc.ProcessUploadJob(context.Background(), jobs.Job{
		ID:      "job-1",
		Payload: uploadJobPayload{SessionID: "s1", AudioName: "note.wav", SpoolPath: "spool/s1/note.wav"},
	})
	require.Error(t, err)
	// Spool stays for the retry.
	assert.Contains(t, spool.files, "spool/s1/note.wav")
}

func TestProbeWAVDuration(t *testing.T) {
	duration, ok := probeWAVDuration(wavFixture(32000, 64000))
	require.True(t, ok)
	assert.InDelta(t, 2.0, duration, 0.001)

	_, ok = probeWAVDuration([]byte("definitely not a wav file, far too short anyway"))
	assert.False(t, ok)
}
