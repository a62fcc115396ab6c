package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/response"
)

type queueService interface {
	Load(ctx context.Context, token, userID string, filter backend.QueueFilter) (*dto.QueueResponse, error)
	ToggleSelection(ctx context.Context, token, userID string, filter backend.QueueFilter, complaintID string) (*dto.QueueResponse, error)
	ToggleSelectAll(ctx context.Context, token, userID string, filter backend.QueueFilter) (*dto.QueueResponse, error)
	Approve(ctx context.Context, token, userID string, filter backend.QueueFilter, complaintID string, req dto.ApproveQueueItemRequest) (*dto.BulkActionResult, error)
	Reject(ctx context.Context, token, userID string, filter backend.QueueFilter, complaintID string, req dto.RejectQueueItemRequest) (*dto.BulkActionResult, error)
	BulkApprove(ctx context.Context, token, userID string, filter backend.QueueFilter, req dto.BulkApproveQueueRequest) (*dto.BulkActionResult, error)
}

// QueueHandler wires HTTP endpoints to the auto-assignment review queue.
type QueueHandler struct {
	service queueService
}

// NewQueueHandler creates a new handler.
func NewQueueHandler(svc queueService) *QueueHandler {
	return &QueueHandler{service: svc}
}

func queueFilterFromQuery(c *gin.Context) backend.QueueFilter {
	days, _ := strconv.Atoi(c.Query("days"))
	return backend.QueueFilter{
		Days:       days,
		Status:     c.Query("status"),
		Department: c.Query("department"),
	}
}

func (h *QueueHandler) actor(c *gin.Context) (token, userID string, ok bool) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", "", false
	}
	return session.BackendToken, session.User.ID, true
}

// Load godoc
// @Summary Load the auto-assignment queue
// @Description Items, stats, config and the official's current selection
// @Tags Queue
// @Produce json
// @Param days query int false "Look-back window in days"
// @Param status query string false "Review state filter"
// @Param department query string false "Suggested department filter"
// @Success 200 {object} response.Envelope
// @Router /admin/queue [get]
func (h *QueueHandler) Load(c *gin.Context) {
	token, userID, ok := h.actor(c)
	if !ok {
		return
	}
	res, err := h.service.Load(c.Request.Context(), token, userID, queueFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Toggle godoc
// @Summary Toggle one complaint in the bulk selection
// @Tags Queue
// @Accept json
// @Produce json
// @Param payload body dto.ToggleSelectionRequest true "Complaint to toggle"
// @Success 200 {object} response.Envelope
// @Router /admin/queue/selection [post]
func (h *QueueHandler) Toggle(c *gin.Context) {
	token, userID, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.ToggleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	res, err := h.service.ToggleSelection(c.Request.Context(), token, userID, queueFilterFromQuery(c), req.ComplaintID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ToggleAll godoc
// @Summary Select all pending items, or clear when all are selected
// @Tags Queue
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/queue/selection/all [post]
func (h *QueueHandler) ToggleAll(c *gin.Context) {
	token, userID, ok := h.actor(c)
	if !ok {
		return
	}
	res, err := h.service.ToggleSelectAll(c.Request.Context(), token, userID, queueFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Approve godoc
// @Summary Approve one suggested routing
// @Tags Queue
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.ApproveQueueItemRequest true "Approval payload"
// @Success 200 {object} response.Envelope
// @Router /admin/queue/{id}/approve [post]
func (h *QueueHandler) Approve(c *gin.Context) {
	token, userID, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.ApproveQueueItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approve payload"))
		return
	}
	res, err := h.service.Approve(c.Request.Context(), token, userID, queueFilterFromQuery(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Reject godoc
// @Summary Reject one suggested routing
// @Tags Queue
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.RejectQueueItemRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Router /admin/queue/{id}/reject [post]
func (h *QueueHandler) Reject(c *gin.Context) {
	token, userID, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.RejectQueueItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reject payload"))
		return
	}
	res, err := h.service.Reject(c.Request.Context(), token, userID, queueFilterFromQuery(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// BulkApprove godoc
// @Summary Approve the whole current selection
// @Tags Queue
// @Accept json
// @Produce json
// @Param payload body dto.BulkApproveQueueRequest true "Bulk approval payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/queue/bulk-approve [post]
func (h *QueueHandler) BulkApprove(c *gin.Context) {
	token, userID, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.BulkApproveQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk approve payload"))
		return
	}
	res, err := h.service.BulkApprove(c.Request.Context(), token, userID, queueFilterFromQuery(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
