package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/export"
	"github.com/civicsense/portal-gateway/pkg/storage"
)

type exportBackend interface {
	ListComplaints(ctx context.Context, token string, filter backend.ComplaintFilter) ([]models.Grievance, error)
	ExportComplaintsCSV(ctx context.Context, token string) (io.ReadCloser, string, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportService renders complaint-list exports locally and hands out signed
// download links. The backend's own CSV dump is also available as a plain
// pass-through for officials who want the raw data.
type ExportService struct {
	backend exportBackend
	storage exportStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(b exportBackend, store exportStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		backend: b,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate fetches the filtered complaint list, renders it in the requested
// format and stores the file behind a signed token.
func (s *ExportService) Generate(ctx context.Context, token string, filter backend.ComplaintFilter, format string) (*dto.ExportSummaryResponse, error) {
	complaints, err := s.backend.ListComplaints(ctx, token, filter)
	if err != nil {
		return nil, err
	}

	dataset, title := buildComplaintDataset(complaints)

	var payload []byte
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
	case "pdf":
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("complaints_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	downloadToken, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("export generated",
		zap.String("export_id", exportID),
		zap.String("format", format),
		zap.Int("rows", len(complaints)),
	)

	return &dto.ExportSummaryResponse{
		Token:     downloadToken,
		URL:       fmt.Sprintf("%s/admin/exports/%s", prefix, downloadToken),
		Format:    format,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// Open validates a download token and returns a handle to the rendered file.
func (s *ExportService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export no longer available")
	}
	return file, nil
}

// PassthroughCSV streams the backend's own CSV dump.
func (s *ExportService) PassthroughCSV(ctx context.Context, token string) (io.ReadCloser, string, error) {
	return s.backend.ExportComplaintsCSV(ctx, token)
}

// Cleanup removes rendered exports older than ttl (defaults to the configured
// result TTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func buildComplaintDataset(complaints []models.Grievance) (export.Dataset, string) {
	rows := make([]map[string]string, 0, len(complaints))
	for _, c := range complaints {
		duplicate := "no"
		if c.IsDuplicate {
			duplicate = "yes"
		}
		rows = append(rows, map[string]string{
			"ID":         c.ID,
			"Category":   c.Category,
			"Location":   c.Location,
			"Status":     string(c.Status),
			"Priority":   string(c.Priority),
			"Department": c.Department,
			"Duplicate":  duplicate,
			"Created At": c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"ID", "Category", "Location", "Status", "Priority", "Department", "Duplicate", "Created At"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Complaint Summary %s", time.Now().UTC().Format("2006-01-02"))
	return dataset, title
}
