package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civicsense/portal-gateway/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	backendTotal    *prometheus.CounterVec
	uploadDuration  prometheus.Observer
	uploadTotal     *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	backendCount         uint64
	backendDurationTotal uint64
	uploadCount          uint64
	uploadFailureCount   uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of calls to the classification backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	backendTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Total calls to the classification backend",
	}, []string{"operation", "status"})

	uploadDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "media_upload_duration_seconds",
		Help:    "Duration of background media upload jobs",
		Buckets: prometheus.DefBuckets,
	})

	uploadTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_upload_jobs_total",
		Help: "Background media upload jobs by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, backendDuration, backendTotal, uploadDuration, uploadTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		backendDuration: backendDuration,
		backendTotal:    backendTotal,
		uploadDuration:  uploadDuration,
		uploadTotal:     uploadTotal,
	}
}

// RegisterQueueDepth exposes a background queue's backlog as a gauge.
func (m *MetricsService) RegisterQueueDepth(name string, depth func() int) {
	if m == nil || depth == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "job_queue_depth",
		Help:        "Pending jobs in a background queue",
		ConstLabels: prometheus.Labels{"queue": name},
	}, func() float64 {
		return float64(depth())
	}))
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveBackendRequest records one call to the classification backend.
func (m *MetricsService) ObserveBackendRequest(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	m.backendTotal.WithLabelValues(operation, status).Inc()
	atomic.AddUint64(&m.backendCount, 1)
	atomic.AddUint64(&m.backendDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveUploadJob records the outcome of a background media upload job.
func (m *MetricsService) ObserveUploadJob(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.uploadDuration != nil {
		m.uploadDuration.Observe(duration.Seconds())
	}
	outcome := "success"
	if !success {
		outcome = "failure"
		atomic.AddUint64(&m.uploadFailureCount, 1)
	}
	m.uploadTotal.WithLabelValues(outcome).Inc()
	atomic.AddUint64(&m.uploadCount, 1)
}

// Snapshot returns aggregated metrics suitable for the ops endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	backendCalls := atomic.LoadUint64(&m.backendCount)
	backendDuration := atomic.LoadUint64(&m.backendDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgBackendMs float64
	if backendCalls > 0 {
		avgBackendMs = float64(backendDuration) / float64(backendCalls) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		BackendCallsTotal:        backendCalls,
		AverageBackendDurationMs: avgBackendMs,
		UploadJobsTotal:          atomic.LoadUint64(&m.uploadCount),
		UploadJobFailures:        atomic.LoadUint64(&m.uploadFailureCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
