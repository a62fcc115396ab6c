package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/civicsense/portal-gateway/internal/dto"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

type fakeMediaSrv struct {
	startErr    error
	lastSession string
	lastName    string
	removed     bool
}

func (f *fakeMediaSrv) StartRecording(_ context.Context, sessionID string) error {
	f.lastSession = sessionID
	return f.startErr
}

func (f *fakeMediaSrv) StopRecording(_ context.Context, sessionID, name, _ string) (*dto.DraftResponse, error) {
	f.lastSession, f.lastName = sessionID, name
	return &dto.DraftResponse{Audio: dto.AttachmentState{Attached: true, Name: name}}, nil
}

func (f *fakeMediaSrv) CancelRecording(sessionID string) error {
	f.lastSession = sessionID
	return nil
}

func (f *fakeMediaSrv) AttachAudio(_ context.Context, sessionID, name, _ string) (*dto.DraftResponse, error) {
	f.lastSession, f.lastName = sessionID, name
	return &dto.DraftResponse{Audio: dto.AttachmentState{Attached: true, Name: name}}, nil
}

func (f *fakeMediaSrv) RemoveAudio(_ context.Context, sessionID string) (*dto.DraftResponse, error) {
	f.lastSession, f.removed = sessionID, true
	return &dto.DraftResponse{}, nil
}

func (f *fakeMediaSrv) AttachImage(_ context.Context, sessionID, name, _ string) (*dto.DraftResponse, error) {
	f.lastSession, f.lastName = sessionID, name
	return &dto.DraftResponse{Image: dto.AttachmentState{Attached: true, Name: name}}, nil
}

func (f *fakeMediaSrv) RemoveImage(_ context.Context, sessionID string) (*dto.DraftResponse, error) {
	f.lastSession, f.removed = sessionID, true
	return &dto.DraftResponse{}, nil
}

func TestMediaHandlerStartRecordingNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeMediaSrv{}
	handler := NewMediaHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/wizard/audio/recording", nil)
	c.Request.Header.Set(DraftSessionHeader, "draft-1")

	handler.StartRecording(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "draft-1", service.lastSession)
}

func TestMediaHandlerStartRecordingConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMediaHandler(&fakeMediaSrv{startErr: appErrors.ErrRecordingActive})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/wizard/audio/recording", nil)
	c.Request.Header.Set(DraftSessionHeader, "draft-1")

	handler.StartRecording(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMediaHandlerStopRecordingRequiresPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMediaHandler(&fakeMediaSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/wizard/audio/recording/stop", strings.NewReader(`{"name":"clip.wav"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(DraftSessionHeader, "draft-1")

	handler.StopRecording(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMediaHandlerAttachAudio(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeMediaSrv{}
	handler := NewMediaHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/wizard/audio", strings.NewReader(`{"name":"note.wav","data_base64":"UklGRg=="}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(DraftSessionHeader, "draft-1")

	handler.AttachAudio(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "note.wav", service.lastName)
}

func TestMediaHandlerRemoveImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeMediaSrv{}
	handler := NewMediaHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/wizard/image", nil)
	c.Request.Header.Set(DraftSessionHeader, "draft-1")

	handler.RemoveImage(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, service.removed)
}

func TestMediaHandlerRequiresDraftSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMediaHandler(&fakeMediaSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/wizard/audio", nil)

	handler.RemoveAudio(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
