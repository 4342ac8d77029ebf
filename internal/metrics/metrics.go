// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImportedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_import_rows_total",
			Help: "Rows read by customer imports, by outcome",
		},
		[]string{"outcome"}, // success, skipped, failed
	)

	ImportsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customer_imports_completed_total",
			Help: "Number of completed customer import runs",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Emails handed to the delivery provider, by outcome",
		},
		[]string{"outcome"}, // success, failed
	)

	BulkSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bulk_send_duration_seconds",
			Help:    "Wall time of one bulk send",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	ContentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_generation_requests_total",
			Help: "Calls to the content generation provider, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	BulkSendJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_send_jobs_total",
			Help: "Asynchronous bulk send jobs, by final status",
		},
		[]string{"status"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)
)
