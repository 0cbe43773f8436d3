// Package metrics provides Prometheus metrics for the foamperf analysis engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the analysis engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Pipeline metrics
	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram

	// Parser metrics
	parseRows        prometheus.Counter
	parseRowsSkipped prometheus.Counter
	parseErrors      prometheus.Counter

	// Reducer metrics
	reductionErrors prometheus.Counter

	// Detection metrics
	patchConfidence prometheus.Histogram

	// History metrics
	historyWrites prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "foamperf",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.analysesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analyses_total",
		Help:      "Total number of analysis requests by domain and outcome",
	}, []string{"domain", "status"})

	m.analysisDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_duration_seconds",
		Help:      "Histogram of end-to-end analysis pipeline duration",
		Buckets:   m.histogramBuckets,
	})

	m.parseRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "parse_rows_total",
		Help:      "Total number of log rows parsed successfully",
	})

	m.parseRowsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "parse_rows_skipped_total",
		Help:      "Total number of malformed log rows skipped (torn writes, restarts)",
	})

	m.parseErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "parse_errors_total",
		Help:      "Total number of terminal parse failures (missing or empty logs)",
	})

	m.reductionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reduction_errors_total",
		Help:      "Total number of terminal reduction failures (empty series or window)",
	})

	m.patchConfidence = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "patch_confidence",
		Help:      "Histogram of accepted patch-detection confidence scores",
		Buckets:   []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
	})

	m.historyWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_writes_total",
		Help:      "Total number of analyses persisted to the history store",
	})
}

// Handler exposes the custom registry for an ops-only metrics listener.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// RecordAnalysis records one finished pipeline pass.
func RecordAnalysis(domain string, ok bool, seconds float64) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	globalManager.analysesTotal.WithLabelValues(domain, status).Inc()
	globalManager.analysisDuration.Observe(seconds)
}

// RecordParseRow counts one successfully parsed log row.
func RecordParseRow() {
	if globalManager != nil && globalManager.enabled {
		globalManager.parseRows.Inc()
	}
}

// RecordParseRowSkipped counts one malformed row skipped by the parser.
func RecordParseRowSkipped() {
	if globalManager != nil && globalManager.enabled {
		globalManager.parseRowsSkipped.Inc()
	}
}

// RecordParseError counts one terminal parse failure.
func RecordParseError() {
	if globalManager != nil && globalManager.enabled {
		globalManager.parseErrors.Inc()
	}
}

// RecordReductionError counts one terminal reduction failure.
func RecordReductionError() {
	if globalManager != nil && globalManager.enabled {
		globalManager.reductionErrors.Inc()
	}
}

// ObservePatchConfidence records one accepted detection confidence.
func ObservePatchConfidence(confidence float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.patchConfidence.Observe(confidence)
	}
}

// RecordHistoryWrite counts one persisted analysis.
func RecordHistoryWrite() {
	if globalManager != nil && globalManager.enabled {
		globalManager.historyWrites.Inc()
	}
}
