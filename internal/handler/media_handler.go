package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicsense/portal-gateway/internal/dto"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/response"
)

// AttachMediaRequest carries one base64-encoded attachment.
type AttachMediaRequest struct {
	Name       string `json:"name" binding:"required"`
	DataBase64 string `json:"data_base64" binding:"required"`
}

type mediaService interface {
	StartRecording(ctx context.Context, sessionID string) error
	StopRecording(ctx context.Context, sessionID, name, dataBase64 string) (*dto.DraftResponse, error)
	CancelRecording(sessionID string) error
	AttachAudio(ctx context.Context, sessionID, name, dataBase64 string) (*dto.DraftResponse, error)
	RemoveAudio(ctx context.Context, sessionID string) (*dto.DraftResponse, error)
	AttachImage(ctx context.Context, sessionID, name, dataBase64 string) (*dto.DraftResponse, error)
	RemoveImage(ctx context.Context, sessionID string) (*dto.DraftResponse, error)
}

// MediaHandler wires HTTP endpoints to the media service. It shares the
// wizard's draft-session resolution.
type MediaHandler struct {
	service mediaService
}

// NewMediaHandler creates a new handler.
func NewMediaHandler(svc mediaService) *MediaHandler {
	return &MediaHandler{service: svc}
}

func (h *MediaHandler) requireDraftSession(c *gin.Context) (string, bool) {
	id := ""
	if claims := claimsFromContext(c); claims != nil {
		id = claims.SessionID
	} else {
		id = c.GetHeader(DraftSessionHeader)
	}
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing draft session"))
		return "", false
	}
	c.Header(DraftSessionHeader, id)
	return id, true
}

// StartRecording godoc
// @Summary Open a recording session
// @Description Only one recording session per draft can be active
// @Tags Media
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /wizard/audio/recording [post]
func (h *MediaHandler) StartRecording(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	if err := h.service.StartRecording(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// StopRecording godoc
// @Summary Close the recording session and attach the clip
// @Tags Media
// @Accept json
// @Produce json
// @Param payload body AttachMediaRequest true "Recorded audio"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /wizard/audio/recording/stop [post]
func (h *MediaHandler) StopRecording(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	var req AttachMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid recording payload"))
		return
	}
	res, err := h.service.StopRecording(c.Request.Context(), id, req.Name, req.DataBase64)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// CancelRecording godoc
// @Summary Abort the recording session
// @Tags Media
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /wizard/audio/recording [delete]
func (h *MediaHandler) CancelRecording(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	if err := h.service.CancelRecording(id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AttachAudio godoc
// @Summary Attach an uploaded audio file
// @Tags Media
// @Accept json
// @Produce json
// @Param payload body AttachMediaRequest true "Audio file"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /wizard/audio [put]
func (h *MediaHandler) AttachAudio(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	var req AttachMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid audio payload"))
		return
	}
	res, err := h.service.AttachAudio(c.Request.Context(), id, req.Name, req.DataBase64)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// RemoveAudio godoc
// @Summary Remove the audio attachment
// @Tags Media
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /wizard/audio [delete]
func (h *MediaHandler) RemoveAudio(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	res, err := h.service.RemoveAudio(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// AttachImage godoc
// @Summary Attach a photo
// @Tags Media
// @Accept json
// @Produce json
// @Param payload body AttachMediaRequest true "Image file"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /wizard/image [put]
func (h *MediaHandler) AttachImage(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	var req AttachMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid image payload"))
		return
	}
	res, err := h.service.AttachImage(c.Request.Context(), id, req.Name, req.DataBase64)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// RemoveImage godoc
// @Summary Remove the photo attachment
// @Tags Media
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /wizard/image [delete]
func (h *MediaHandler) RemoveImage(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	res, err := h.service.RemoveImage(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
