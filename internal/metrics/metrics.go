// Package metrics defines Prometheus metrics for topicd.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topicd_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicd_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicd_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	ModelRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicd_model_runs_total",
			Help: "Clustering runs by scope and model outcome (reused, refit, fresh)",
		},
		[]string{"scope", "outcome"},
	)

	WindowSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicd_window_skips_total",
			Help: "Windows skipped due to clustering capability failures",
		},
		[]string{"window"},
	)

	ReassignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicd_reassignments_total",
			Help: "Manual reassignments by path (existing topic vs new topic)",
		},
		[]string{"path"},
	)

	SimilarityAssignsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "topicd_similarity_assigns_total",
			Help: "New emails attached to topics by similarity scoring",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		ModelRunsTotal, WindowSkipsTotal,
		ReassignmentsTotal, SimilarityAssignsTotal,
	)
}
