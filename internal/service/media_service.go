package service

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/jobs"
)

type mediaUploader interface {
	UploadMedia(ctx context.Context, filename string, data []byte) (*backend.UploadMediaResponse, error)
}

type mediaSpool interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	Delete(filename string) error
}

// MediaConfig bounds attachments handled by the media service.
type MediaConfig struct {
	MaxFileSizeBytes int64
	AllowedAudioMIME []string
	AllowedImageMIME []string
	DraftTTL         time.Duration
}

// uploadJobPayload travels through the background upload queue.
type uploadJobPayload struct {
	SessionID string
	AudioName string
	SpoolPath string
}

// MediaService manages audio and image attachments on the submission draft.
// Attachments land inline (base64) immediately so the wizard can proceed; the
// audio copy is also spooled to disk and shipped to the backend by a
// background job, which fills in the durable path and metadata afterwards.
type MediaService struct {
	drafts   draftStore
	uploader mediaUploader
	spool    mediaSpool
	logger   *zap.Logger
	config   MediaConfig

	queue   *jobs.Queue
	metrics *MetricsService

	// One recording session per wizard session. Guarded by mu.
	mu        sync.Mutex
	recording map[string]time.Time
}

// NewMediaService constructs a MediaService instance.
func NewMediaService(drafts draftStore, uploader mediaUploader, spool mediaSpool, logger *zap.Logger, config MediaConfig) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxFileSizeBytes <= 0 {
		config.MaxFileSizeBytes = 10 * 1024 * 1024
	}
	if config.DraftTTL <= 0 {
		config.DraftTTL = 2 * time.Hour
	}
	return &MediaService{
		drafts:    drafts,
		uploader:  uploader,
		spool:     spool,
		logger:    logger,
		config:    config,
		recording: make(map[string]time.Time),
	}
}

// SetUploadQueue attaches the background queue. Without one, attachments stay
// inline-only and ride up as base64 at submit time.
func (s *MediaService) SetUploadQueue(q *jobs.Queue) {
	s.queue = q
}

// SetMetrics attaches upload-job instrumentation.
func (s *MediaService) SetMetrics(m *MetricsService) {
	s.metrics = m
}

// StartRecording opens a recording session for the wizard session. Only one
// can be active at a time.
func (s *MediaService) StartRecording(ctx context.Context, sessionID string) error {
	if _, err := s.drafts.Get(ctx, sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, active := s.recording[sessionID]; active {
		return appErrors.ErrRecordingActive
	}
	s.recording[sessionID] = time.Now().UTC()
	return nil
}

// StopRecording closes the recording session and attaches the captured audio.
func (s *MediaService) StopRecording(ctx context.Context, sessionID, name, dataBase64 string) (*dto.DraftResponse, error) {
	s.mu.Lock()
	_, active := s.recording[sessionID]
	delete(s.recording, sessionID)
	s.mu.Unlock()

	if !active {
		return nil, appErrors.ErrNoRecording
	}
	return s.AttachAudio(ctx, sessionID, name, dataBase64)
}

// CancelRecording closes the recording session without attaching anything.
func (s *MediaService) CancelRecording(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, active := s.recording[sessionID]; !active {
		return appErrors.ErrNoRecording
	}
	delete(s.recording, sessionID)
	return nil
}

// AttachAudio stores an audio attachment on the draft, replacing any existing
// one. The previous attachment's language tag and metadata go with it.
func (s *MediaService) AttachAudio(ctx context.Context, sessionID, name, dataBase64 string) (*dto.DraftResponse, error) {
	data, err := s.decodeAttachment(dataBase64, s.config.AllowedAudioMIME)
	if err != nil {
		return nil, err
	}

	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.discardSpool(draft.AudioSpool)
	draft.ClearAudio()
	draft.AudioName = name
	draft.AudioBase64 = dataBase64
	if duration, ok := probeWAVDuration(data); ok {
		draft.AudioMeta = &models.AudioMetadata{
			DurationSeconds: duration,
			Format:          "wav",
			SizeBytes:       int64(len(data)),
		}
	}
	// A fresh spool path per attachment; the upload job carries the same
	// path and only lands its result while the draft still points at it.
	if s.queue != nil && s.spool != nil {
		draft.AudioSpool = path.Join("spool", sessionID, uuid.NewString()+path.Ext(name))
	}

	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}

	s.enqueueUpload(sessionID, name, draft.AudioSpool, data)
	return draftView(draft), nil
}

// RemoveAudio clears the audio attachment and everything tied to it.
func (s *MediaService) RemoveAudio(ctx context.Context, sessionID string) (*dto.DraftResponse, error) {
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.discardSpool(draft.AudioSpool)
	draft.ClearAudio()

	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draftView(draft), nil
}

// AttachImage stores an image attachment on the draft.
func (s *MediaService) AttachImage(ctx context.Context, sessionID, name, dataBase64 string) (*dto.DraftResponse, error) {
	if _, err := s.decodeAttachment(dataBase64, s.config.AllowedImageMIME); err != nil {
		return nil, err
	}

	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	draft.ImageName = name
	draft.ImageBase64 = dataBase64

	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draftView(draft), nil
}

// RemoveImage clears the image attachment.
func (s *MediaService) RemoveImage(ctx context.Context, sessionID string) (*dto.DraftResponse, error) {
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	draft.ClearImage()

	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draftView(draft), nil
}

// ProcessUploadJob ships a spooled audio file to the backend and records the
// durable path on the draft. Stale jobs (the attachment was replaced or
// removed meanwhile) drop their result on the floor.
func (s *MediaService) ProcessUploadJob(ctx context.Context, job jobs.Job) error {
	start := time.Now()
	payload, ok := job.Payload.(uploadJobPayload)
	if !ok {
		s.logger.Error("unexpected upload job payload", zap.String("job_id", job.ID))
		return nil
	}

	data, err := s.spool.Read(payload.SpoolPath)
	if err != nil {
		s.logger.Warn("spooled attachment missing", zap.String("path", payload.SpoolPath), zap.Error(err))
		return nil
	}

	resp, err := s.uploader.UploadMedia(ctx, payload.AudioName, data)
	if err != nil {
		s.metrics.ObserveUploadJob(false, time.Since(start))
		return err
	}
	s.metrics.ObserveUploadJob(true, time.Since(start))

	draft, err := s.drafts.Get(ctx, payload.SessionID)
	if err != nil {
		s.discardSpool(payload.SpoolPath)
		return nil
	}
	if draft.AudioSpool != payload.SpoolPath {
		s.discardSpool(payload.SpoolPath)
		return nil
	}

	draft.AudioPath = resp.Path
	draft.AudioSpool = ""
	meta := resp.Metadata
	if meta.DurationSeconds == 0 && draft.AudioMeta != nil {
		meta.DurationSeconds = draft.AudioMeta.DurationSeconds
	}
	if meta.SizeBytes == 0 {
		meta.SizeBytes = int64(len(data))
	}
	draft.AudioMeta = &meta

	if err := s.saveDraft(ctx, draft); err != nil {
		return err
	}
	s.discardSpool(payload.SpoolPath)

	s.logger.Info("audio upload resolved",
		zap.String("session_id", payload.SessionID),
		zap.String("path", resp.Path),
	)
	return nil
}

func (s *MediaService) enqueueUpload(sessionID, name, spoolPath string, data []byte) {
	if s.queue == nil || s.spool == nil || spoolPath == "" {
		return
	}

	if _, err := s.spool.Save(spoolPath, data); err != nil {
		s.logger.Warn("failed to spool attachment", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	err := s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "media_upload",
		Payload: uploadJobPayload{
			SessionID: sessionID,
			AudioName: name,
			SpoolPath: spoolPath,
		},
	})
	if err != nil {
		s.logger.Warn("failed to enqueue upload", zap.String("session_id", sessionID), zap.Error(err))
		s.discardSpool(spoolPath)
	}
}

func (s *MediaService) discardSpool(spoolPath string) {
	if s.spool == nil || !strings.HasPrefix(spoolPath, "spool/") {
		return
	}
	if err := s.spool.Delete(spoolPath); err != nil {
		s.logger.Warn("failed to remove spooled attachment", zap.String("path", spoolPath), zap.Error(err))
	}
}

func (s *MediaService) saveDraft(ctx context.Context, draft *models.GrievanceDraft) error {
	draft.UpdatedAt = time.Now().UTC()
	if err := s.drafts.Save(ctx, draft, s.config.DraftTTL); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist draft")
	}
	return nil
}

func (s *MediaService) decodeAttachment(dataBase64 string, allowed []string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(dataBase64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attachment is not valid base64")
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attachment is empty")
	}
	if int64(len(data)) > s.config.MaxFileSizeBytes {
		return nil, appErrors.ErrMediaTooLarge
	}
	if len(allowed) > 0 && !mimeAllowed(http.DetectContentType(data), allowed) {
		return nil, appErrors.ErrMediaUnsupported
	}
	return data, nil
}

// mimeAliases maps sniffer output to the canonical types used in config.
var mimeAliases = map[string]string{
	"audio/wave":   "audio/wav",
	"audio/x-wave": "audio/wav",
	"video/webm":   "audio/webm",
}

func mimeAllowed(detected string, allowed []string) bool {
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	detected = strings.TrimSpace(strings.ToLower(detected))
	if alias, ok := mimeAliases[detected]; ok {
		detected = alias
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(a), detected) {
			return true
		}
	}
	return false
}

// probeWAVDuration reads the RIFF/WAVE header and derives the clip duration
// from the data chunk length and byte rate. Non-WAV payloads report no
// duration; the backend fills it in after the upload.
func probeWAVDuration(data []byte) (float64, bool) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, false
	}

	// Walk the chunks; fmt is not always 16 bytes and data is not always last.
	var byteRate uint32
	var dataSize int
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		switch chunkID {
		case "fmt ":
			if offset+20 <= len(data) {
				byteRate = binary.LittleEndian.Uint32(data[offset+16 : offset+20])
			}
		case "data":
			dataSize = chunkSize
		}
		if byteRate > 0 && dataSize > 0 {
			return float64(dataSize) / float64(byteRate), true
		}
		offset += 8 + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}
	return 0, false
}
