package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civicsense/portal-gateway/internal/dto"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/response"
)

// DraftSessionHeader carries the wizard session id for anonymous drafting.
// Authenticated requests use their gateway session instead.
const DraftSessionHeader = "X-Draft-Session"

type wizardService interface {
	Start(ctx context.Context, sessionID string) (*dto.DraftResponse, error)
	Get(ctx context.Context, sessionID string) (*dto.DraftResponse, error)
	UpdateDescription(ctx context.Context, sessionID string, req dto.UpdateDescriptionRequest) (*dto.DraftResponse, error)
	UpdateLocation(ctx context.Context, sessionID string, req dto.UpdateLocationRequest) (*dto.DraftResponse, error)
	SelectPin(ctx context.Context, sessionID string, req dto.SelectPinRequest) (*dto.DraftResponse, error)
	SetAudioLanguage(ctx context.Context, sessionID string, req dto.SetAudioLanguageRequest) (*dto.DraftResponse, error)
	UpdateContact(ctx context.Context, sessionID string, req dto.UpdateContactRequest) (*dto.DraftResponse, error)
	Advance(ctx context.Context, sessionID string) (*dto.DraftResponse, error)
	Back(ctx context.Context, sessionID string) (*dto.DraftResponse, error)
	Submit(ctx context.Context, sessionID string) (*dto.SubmitResponse, error)
	Discard(ctx context.Context, sessionID string) error
}

// WizardHandler wires HTTP endpoints to the submission wizard.
type WizardHandler struct {
	service wizardService
}

// NewWizardHandler creates a new handler.
func NewWizardHandler(svc wizardService) *WizardHandler {
	return &WizardHandler{service: svc}
}

// draftSession resolves the wizard session: the gateway session when signed
// in, otherwise the client-held draft header.
func (h *WizardHandler) draftSession(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.SessionID
	}
	return c.GetHeader(DraftSessionHeader)
}

func (h *WizardHandler) requireDraftSession(c *gin.Context) (string, bool) {
	id := h.draftSession(c)
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing draft session"))
		return "", false
	}
	c.Header(DraftSessionHeader, id)
	return id, true
}

// Start godoc
// @Summary Start a submission draft
// @Description Open a fresh three-step draft, replacing any existing one
// @Tags Wizard
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /wizard [post]
func (h *WizardHandler) Start(c *gin.Context) {
	id := h.draftSession(c)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(DraftSessionHeader, id)

	res, err := h.service.Start(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Get godoc
// @Summary Get the current draft
// @Tags Wizard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /wizard [get]
func (h *WizardHandler) Get(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	res, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// UpdateDescription godoc
// @Summary Update step-1 fields
// @Tags Wizard
// @Accept json
// @Produce json
// @Param payload body dto.UpdateDescriptionRequest true "Description payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /wizard/description [put]
func (h *WizardHandler) UpdateDescription(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	var req dto.UpdateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid description payload"))
		return
	}
	res, err := h.service.UpdateDescription(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// UpdateLocation godoc
// @Summary Update the text location
// @Tags Wizard
// @Accept json
// @Produce json
// @Param payload body dto.UpdateLocationRequest true "Location payload"
// @Success 200 {object} response.Envelope
// @Router /wizard/location [put]
func (h *WizardHandler) UpdateLocation(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid location payload"))
		return
	}
	res, err := h.service.UpdateLocation(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// SelectPin godoc
// @Summary Record a map pin selection
// @Tags Wizard
// @Accept json
// @Produce json
// @Param payload body dto.SelectPinRequest true "Pin payload"
// @Success 200 {object} response.Envelope
// @Router /wizard/pin [put]
func (h *WizardHandler) SelectPin(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	var req dto.SelectPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pin payload"))
		return
	}
	res, err := h.service.SelectPin(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// SetAudioLanguage godoc
// @Summary Tag the audio attachment's spoken language
// @Tags Wizard
// @Accept json
// @Produce json
// @Param payload body dto.SetAudioLanguageRequest true "Language payload"
// @Success 200 {object} response.Envelope
// @Router /wizard/audio/language [put]
func (h *WizardHandler) SetAudioLanguage(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	var req dto.SetAudioLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid language payload"))
		return
	}
	res, err := h.service.SetAudioLanguage(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// UpdateContact godoc
// @Summary Update the optional contact fields
// @Tags Wizard
// @Accept json
// @Produce json
// @Param payload body dto.UpdateContactRequest true "Contact payload"
// @Success 200 {object} response.Envelope
// @Router /wizard/contact [put]
func (h *WizardHandler) UpdateContact(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact payload"))
		return
	}
	res, err := h.service.UpdateContact(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Advance godoc
// @Summary Move the wizard forward one step
// @Description Forward moves are guarded; a blocked guard returns 422
// @Tags Wizard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /wizard/advance [post]
func (h *WizardHandler) Advance(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	res, err := h.service.Advance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Back godoc
// @Summary Move the wizard back one step
// @Tags Wizard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /wizard/back [post]
func (h *WizardHandler) Back(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	res, err := h.service.Back(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Submit godoc
// @Summary Submit the draft
// @Description File the grievance with the backend; the draft is discarded only on success
// @Tags Wizard
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /wizard/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	res, err := h.service.Submit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Discard godoc
// @Summary Discard the draft without submitting
// @Tags Wizard
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /wizard [delete]
func (h *WizardHandler) Discard(c *gin.Context) {
	id, ok := h.requireDraftSession(c)
	if !ok {
		return
	}
	if err := h.service.Discard(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
