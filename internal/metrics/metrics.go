// Package metrics defines the Prometheus metrics exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan pipeline metrics
var (
	// ScansTotal tracks completed scan jobs by outcome.
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paladin_scans_total",
			Help: "Total number of scan jobs by outcome",
		},
		[]string{"status"},
	)

	// ScanDuration tracks end-to-end scan duration.
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "paladin_scan_duration_seconds",
			Help:    "Scan duration in seconds, clone through persistence",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	// ScanFindings tracks findings per completed scan after normalization.
	ScanFindings = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "paladin_scan_findings",
			Help:    "Normalized findings per completed scan",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	// ScansInProgress tracks currently running scans.
	ScansInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "paladin_scans_in_progress",
			Help: "Number of scans currently running",
		},
	)
)

// Advisory refresh metrics
var (
	// RefreshRunsTotal tracks refresh runs by outcome.
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paladin_refresh_runs_total",
			Help: "Total number of advisory refresh runs by outcome",
		},
		[]string{"status"},
	)

	// RefreshAdvisoriesIngested tracks advisories processed per refresh.
	RefreshAdvisoriesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paladin_refresh_advisories_ingested_total",
			Help: "Total number of advisories ingested",
		},
	)

	// RefreshEnrichmentFailures tracks per-package enrichment failures that
	// were logged and skipped.
	RefreshEnrichmentFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paladin_refresh_enrichment_failures_total",
			Help: "Total number of per-package enrichment failures",
		},
	)

	// RefreshDuration tracks refresh run duration.
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "paladin_refresh_duration_seconds",
			Help:    "Advisory refresh duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)

// Suppression and review metrics
var (
	// SuppressionsTotal tracks suppression toggles by resulting state.
	SuppressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paladin_suppressions_total",
			Help: "Total number of finding suppression toggles",
		},
		[]string{"state"},
	)

	// ReviewsTotal tracks AI reviews by outcome.
	ReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paladin_reviews_total",
			Help: "Total number of AI finding reviews by outcome",
		},
		[]string{"outcome"},
	)

	// ReviewDuration tracks reviewer round-trip time.
	ReviewDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "paladin_review_duration_seconds",
			Help:    "AI review duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal tracks HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paladin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paladin_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)
)
