package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/response"
)

type grievanceService interface {
	Get(ctx context.Context, id string) (*dto.GrievanceDetail, error)
	List(ctx context.Context, token string, filter backend.ComplaintFilter) ([]models.Grievance, error)
	Assign(ctx context.Context, token, id string, req dto.AssignComplaintRequest) (*models.Grievance, error)
	UpdateStatus(ctx context.Context, token, id string, req dto.UpdateComplaintStatusRequest) (*models.Grievance, error)
}

// GrievanceHandler wires HTTP endpoints to grievance reads and transitions.
type GrievanceHandler struct {
	service grievanceService
}

// NewGrievanceHandler creates a new handler.
func NewGrievanceHandler(svc grievanceService) *GrievanceHandler {
	return &GrievanceHandler{service: svc}
}

func complaintFilterFromQuery(c *gin.Context) backend.ComplaintFilter {
	return backend.ComplaintFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
	}
}

func backendToken(c *gin.Context) (string, bool) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return session.BackendToken, true
}

// Get godoc
// @Summary Get one grievance
// @Description Returns the record with its timeline and derived progress
// @Tags Grievances
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grievances/{id} [get]
func (h *GrievanceHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// List godoc
// @Summary List complaints for review
// @Description Filters pass through to the backend untouched
// @Tags Admin
// @Produce json
// @Param search query string false "Free-text search"
// @Param status query string false "Lifecycle status"
// @Param priority query string false "Priority"
// @Param category query string false "Category"
// @Success 200 {object} response.Envelope
// @Router /admin/complaints [get]
func (h *GrievanceHandler) List(c *gin.Context) {
	token, ok := backendToken(c)
	if !ok {
		return
	}
	res, err := h.service.List(c.Request.Context(), token, complaintFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Assign godoc
// @Summary Assign a complaint to a department
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.AssignComplaintRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /admin/complaints/{id}/assign [post]
func (h *GrievanceHandler) Assign(c *gin.Context) {
	token, ok := backendToken(c)
	if !ok {
		return
	}
	var req dto.AssignComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	res, err := h.service.Assign(c.Request.Context(), token, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// UpdateStatus godoc
// @Summary Update a complaint's lifecycle status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateComplaintStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /admin/complaints/{id}/status [post]
func (h *GrievanceHandler) UpdateStatus(c *gin.Context) {
	token, ok := backendToken(c)
	if !ok {
		return
	}
	var req dto.UpdateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	res, err := h.service.UpdateStatus(c.Request.Context(), token, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
