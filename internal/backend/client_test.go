package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsense/portal-gateway/pkg/config"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(config.BackendConfig{BaseURL: server.URL, Timeout: 2 * time.Second}, nil)
}

func TestSubmitGrievance(t *testing.T) {
	var captured SubmitGrievanceRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/grievances", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(SubmitGrievanceResponse{ComplaintID: "CMP-1001"})
	})

	resp, err := client.SubmitGrievance(context.Background(), SubmitGrievanceRequest{
		Description: "streetlight broken on main road for two weeks",
		Location:    "Main St",
	})
	require.NoError(t, err)
	assert.Equal(t, "CMP-1001", resp.ComplaintID)
	assert.Equal(t, "Main St", captured.Location)
}

func TestGetGrievanceNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"complaint not found"}`))
	})

	_, err := client.GetGrievance(context.Background(), "CMP-missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "complaint not found", appErr.Message)
}

func TestListComplaintsSendsFilters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/complaints", r.URL.Path)
		assert.Equal(t, "water", r.URL.Query().Get("search"))
		assert.Equal(t, "assigned", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	})

	items, err := client.ListComplaints(context.Background(), "admin-token", ComplaintFilter{Search: "water", Status: "assigned"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBulkApprovePayload(t *testing.T) {
	var captured BulkApproveRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/auto-assignment/bulk-approve", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(ActionResponse{Message: "ok", Approved: 3})
	})

	resp, err := client.BulkApprove(context.Background(), "tok", BulkApproveRequest{
		ComplaintIDs: []string{"a", "b", "c"},
		Department:   "Health",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Approved)
	assert.Equal(t, []string{"a", "b", "c"}, captured.ComplaintIDs)
	assert.Equal(t, "Health", captured.Department)
}

func TestUploadMediaMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close() //nolint:errcheck
		assert.Equal(t, "note.wav", header.Filename)
		_ = json.NewEncoder(w).Encode(UploadMediaResponse{Success: true, Path: "uploads/note.wav"})
	})

	resp, err := client.UploadMedia(context.Background(), "note.wav", []byte("RIFF audio bytes"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "uploads/note.wav", resp.Path)
}

func TestBackendUnreachable(t *testing.T) {
	client := New(config.BackendConfig{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, nil)

	_, err := client.GetGrievance(context.Background(), "CMP-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBackendUnavailable.Code, appErrors.FromError(err).Code)
}

func TestStatusErrorFallbackMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, err := client.GetGrievance(context.Background(), "CMP-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBackend.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "500")
}
