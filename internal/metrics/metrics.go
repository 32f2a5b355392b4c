package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelfin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixelfin_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixelfin_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Report run metrics
var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelfin_runs_total",
			Help: "Total number of report generation runs",
		},
		[]string{"kind", "status"}, // kind: html|zip, status: ok|error
	)

	RunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixelfin_runs_active",
			Help: "Number of report runs currently executing",
		},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixelfin_run_duration_seconds",
			Help:    "Report run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"kind"},
	)

	RunItemsReported = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixelfin_run_items_reported",
			Help: "Number of items in the most recent report run",
		},
	)

	SlotsChecked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixelfin_slots_checked_total",
			Help: "Total number of image slots resolved and classified",
		},
	)

	ImageFetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixelfin_image_fetch_failures_total",
			Help: "Total number of per-slot image fetch failures",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelfin_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)
)

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape.
func InitializeMetrics() {
	for _, kind := range []string{"html", "zip"} {
		for _, status := range []string{"ok", "error"} {
			RunsTotal.WithLabelValues(kind, status)
		}
		RunDuration.WithLabelValues(kind)
	}
}
