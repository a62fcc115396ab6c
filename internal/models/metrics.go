package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot for the ops endpoint.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	BackendCallsTotal        uint64    `json:"backend_calls_total"`
	AverageBackendDurationMs float64   `json:"avg_backend_duration_ms"`
	UploadJobsTotal          uint64    `json:"upload_jobs_total"`
	UploadJobFailures        uint64    `json:"upload_job_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
