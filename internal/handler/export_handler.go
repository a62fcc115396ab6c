package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/response"
)

type exportService interface {
	Generate(ctx context.Context, token string, filter backend.ComplaintFilter, format string) (*dto.ExportSummaryResponse, error)
	Open(token string) (*os.File, error)
	PassthroughCSV(ctx context.Context, token string) (io.ReadCloser, string, error)
}

// ExportHandler wires HTTP endpoints to complaint-list exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Generate godoc
// @Summary Render a complaint summary export
// @Description Renders the filtered list as CSV or PDF and returns a signed download link
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.ExportSummaryRequest true "Export request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/exports [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	token, ok := backendToken(c)
	if !ok {
		return
	}
	var req dto.ExportSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	res, err := h.service.Generate(c.Request.Context(), token, complaintFilterFromQuery(c), req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Download godoc
// @Summary Download a rendered export
// @Description The signed token is the only credential; links expire
// @Tags Admin
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	name := filepath.Base(file.Name())
	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, file) //nolint:errcheck
}

// PassthroughCSV godoc
// @Summary Stream the backend's raw CSV dump
// @Tags Admin
// @Produce text/csv
// @Success 200 {file} file
// @Router /admin/complaints/export.csv [get]
func (h *ExportHandler) PassthroughCSV(c *gin.Context) {
	token, ok := backendToken(c)
	if !ok {
		return
	}
	body, filename, err := h.service.PassthroughCSV(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer body.Close() //nolint:errcheck

	if filename == "" {
		filename = "complaints.csv"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)
	io.Copy(c.Writer, body) //nolint:errcheck
}
