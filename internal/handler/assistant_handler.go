package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicsense/portal-gateway/internal/dto"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/response"
)

type assistantService interface {
	Reply(req dto.AssistantRequest) (*dto.AssistantResponse, error)
}

// AssistantHandler exposes the offline keyword helper.
type AssistantHandler struct {
	service assistantService
}

// NewAssistantHandler creates a new handler.
func NewAssistantHandler(svc assistantService) *AssistantHandler {
	return &AssistantHandler{service: svc}
}

// Reply godoc
// @Summary Ask the portal helper
// @Description Keyword-matched canned answers; unmatched messages get suggestions
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.AssistantRequest true "Question"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assistant [post]
func (h *AssistantHandler) Reply(c *gin.Context) {
	var req dto.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assistant payload"))
		return
	}
	res, err := h.service.Reply(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
