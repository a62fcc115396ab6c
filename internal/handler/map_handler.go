package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/pkg/response"
)

type mapTilesService interface {
	Provider(ctx context.Context) *dto.MapProviderResponse
}

// MapHandler exposes the tile provider configuration for the location picker.
type MapHandler struct {
	service mapTilesService
}

// NewMapHandler creates a new handler.
func NewMapHandler(svc mapTilesService) *MapHandler {
	return &MapHandler{service: svc}
}

// Provider godoc
// @Summary Get map tile provider configuration
// @Description Includes reachability; the picker degrades to manual entry when unavailable
// @Tags Map
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /map/provider [get]
func (h *MapHandler) Provider(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Provider(c.Request.Context()), nil)
}
