package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WorkflowSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_submissions_total",
			Help: "Submit attempts per flow and result.",
		},
		[]string{"flow", "result"},
	)

	CatalogWorks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_works",
			Help: "Number of works in the portfolio catalog.",
		},
	)
)

// Recorder reports workflow submissions to Prometheus.
type Recorder struct{}

func (Recorder) ObserveSubmission(flow, result string) {
	WorkflowSubmissions.WithLabelValues(flow, result).Inc()
}
