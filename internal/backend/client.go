// Package backend is the typed HTTP client for the classification backend.
// Pure request/response: no retries, no caching. Non-2xx responses surface
// the server-provided detail message; callers decide how to present it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/models"
	"github.com/civicsense/portal-gateway/pkg/config"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

// Observer receives one measurement per backend call.
type Observer interface {
	ObserveBackendRequest(operation, status string, duration time.Duration)
}

// Client talks to the classification backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	observer   Observer
}

// New constructs a backend client from configuration.
func New(cfg config.BackendConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger.With(zap.String("component", "backend_client")),
	}
}

// SetObserver attaches per-call instrumentation. Nil observers are ignored.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

func (c *Client) observe(operation string, start time.Time, err error) {
	if c.observer == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.observer.ObserveBackendRequest(operation, status, time.Since(start))
}

// SubmitGrievance files a new grievance and returns the classification result.
func (c *Client) SubmitGrievance(ctx context.Context, req SubmitGrievanceRequest) (*SubmitGrievanceResponse, error) {
	var out SubmitGrievanceResponse
	if err := c.doJSON(ctx, "submit_grievance", http.MethodPost, "/api/grievances", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGrievance fetches a single grievance record by id.
func (c *Client) GetGrievance(ctx context.Context, id string) (*models.Grievance, error) {
	var out models.Grievance
	if err := c.doJSON(ctx, "get_grievance", http.MethodGet, "/api/grievances/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadMedia streams an attachment to the backend and returns the durable
// path plus extracted metadata.
func (c *Client) UploadMedia(ctx context.Context, filename string, data []byte) (*UploadMediaResponse, error) {
	start := time.Now()
	out, err := c.uploadMedia(ctx, filename, data)
	c.observe("upload_media", start, err)
	return out, err
}

func (c *Client) uploadMedia(ctx context.Context, filename string, data []byte) (*UploadMediaResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upload form")
	}
	if _, err := part.Write(data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "write upload form")
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "close upload form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out UploadMediaResponse
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates a user against the backend.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, "login", http.MethodPost, "/api/auth/login", "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a citizen account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, "register", http.MethodPost, "/api/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListComplaints returns the filtered admin complaint list. Filters ride as
// query constraints; the backend does the filtering.
func (c *Client) ListComplaints(ctx context.Context, token string, filter ComplaintFilter) ([]models.Grievance, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Priority != "" {
		q.Set("priority", filter.Priority)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	path := "/api/admin/complaints"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []models.Grievance
	if err := c.doJSON(ctx, "list_complaints", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignComplaint routes a complaint to a department and returns the updated record.
func (c *Client) AssignComplaint(ctx context.Context, token, id string, req AssignRequest) (*models.Grievance, error) {
	var out models.Grievance
	if err := c.doJSON(ctx, "assign_complaint", http.MethodPost, "/api/admin/complaints/"+url.PathEscape(id)+"/assign", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateComplaintStatus transitions a complaint and returns the updated record.
func (c *Client) UpdateComplaintStatus(ctx context.Context, token, id string, req StatusUpdateRequest) (*models.Grievance, error) {
	var out models.Grievance
	if err := c.doJSON(ctx, "update_status", http.MethodPost, "/api/admin/complaints/"+url.PathEscape(id)+"/status", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AutoAssignQueue returns items, stats and config for the auto-assignment queue.
func (c *Client) AutoAssignQueue(ctx context.Context, token string, filter QueueFilter) (*models.QueueSnapshot, error) {
	q := url.Values{}
	if filter.Days > 0 {
		q.Set("days", strconv.Itoa(filter.Days))
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Department != "" {
		q.Set("department", filter.Department)
	}
	path := "/api/admin/auto-assignment"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out models.QueueSnapshot
	if err := c.doJSON(ctx, "auto_assign_queue", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveAssignment confirms one AI-suggested routing.
func (c *Client) ApproveAssignment(ctx context.Context, token, complaintID string, req ApproveRequest) (*ActionResponse, error) {
	var out ActionResponse
	if err := c.doJSON(ctx, "approve_assignment", http.MethodPost, "/api/admin/auto-assignment/"+url.PathEscape(complaintID)+"/approve", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectAssignment declines one AI-suggested routing.
func (c *Client) RejectAssignment(ctx context.Context, token, complaintID string, req RejectRequest) (*ActionResponse, error) {
	var out ActionResponse
	if err := c.doJSON(ctx, "reject_assignment", http.MethodPost, "/api/admin/auto-assignment/"+url.PathEscape(complaintID)+"/reject", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkApprove approves a set of pending suggestions in one request.
func (c *Client) BulkApprove(ctx context.Context, token string, req BulkApproveRequest) (*ActionResponse, error) {
	var out ActionResponse
	if err := c.doJSON(ctx, "bulk_approve", http.MethodPost, "/api/admin/auto-assignment/bulk-approve", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportComplaintsCSV streams the backend's CSV export. The caller owns the
// returned reader.
func (c *Client) ExportComplaintsCSV(ctx context.Context, token string) (io.ReadCloser, string, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/admin/complaints/export", http.NoBody)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build export request")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("export_csv", start, err)
		return nil, "", appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.ErrBackendUnavailable.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close() //nolint:errcheck
		statusErr := c.statusError(resp)
		c.observe("export_csv", start, statusErr)
		return nil, "", statusErr
	}
	c.observe("export_csv", start, nil)
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/csv"
	}
	return resp.Body, contentType, nil
}

func (c *Client) doJSON(ctx context.Context, operation, method, path, token string, in, out interface{}) error {
	start := time.Now()
	var err error
	defer func() { c.observe(operation, start, err) }()

	var body io.Reader = http.NoBody
	if in != nil {
		payload, marshalErr := json.Marshal(in)
		if marshalErr != nil {
			err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request")
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, reqErr := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if reqErr != nil {
		err = appErrors.Wrap(reqErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build request")
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	err = c.send(req, out)
	return err
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend unreachable",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.ErrBackendUnavailable.Message)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackend.Code, appErrors.ErrBackend.Status, "decode backend response")
	}
	return nil
}

// statusError maps a non-2xx backend response to a typed error carrying the
// server-provided detail message when one is present.
func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var parsed errorBody
	_ = json.Unmarshal(raw, &parsed)
	detail := parsed.text()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, detail)
	case http.StatusUnauthorized:
		return appErrors.Clone(appErrors.ErrInvalidCredentials, detail)
	case http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrForbidden, detail)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return appErrors.Clone(appErrors.ErrValidation, detail)
	}

	if detail == "" {
		detail = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}
	return appErrors.New(appErrors.ErrBackend.Code, appErrors.ErrBackend.Status, detail)
}
