package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteportal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "siteportal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// UploadItemsTotal counts upload queue items by outcome (rejected, completed, error).
	UploadItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteportal_upload_items_total",
			Help: "Upload queue items by outcome",
		},
		[]string{"outcome"},
	)
	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "siteportal_upload_bytes_total",
			Help: "Bytes persisted to the blob namespace",
		},
	)
	// UnlockAttemptsTotal counts access code submissions by result.
	UnlockAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteportal_unlock_attempts_total",
			Help: "Access code submissions by result",
		},
		[]string{"result"},
	)
	GenAIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteportal_genai_requests_total",
			Help: "Text generation calls by status",
		},
		[]string{"status"},
	)
)
