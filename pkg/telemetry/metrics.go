package telemetry

import (
	"time"

	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// ResultOf returns the result label for an error list.
func ResultOf(errs diag.List) string {
	if len(errs) > 0 {
		return ResultFailed
	}
	return ResultOK
}

// Metrics provides Prometheus metrics for confmix. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	config MetricsConfig

	validations       *prometheus.CounterVec
	mixes             *prometheus.CounterVec
	windowResolutions *prometheus.CounterVec
	nodesResolved     *prometheus.CounterVec
	errorsByClass     *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	documentsLoaded   *prometheus.CounterVec
	documentCacheSize prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with its own registry.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of schema validations",
			},
			[]string{"result"},
		),
		mixes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mixes_total",
				Help:      "Total number of parameter mixes",
			},
			[]string{"result"},
		),
		windowResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "window_resolutions_total",
				Help:      "Total number of dependency window resolutions",
			},
			[]string{"result"},
		),
		nodesResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_resolved_total",
				Help:      "Total number of stack nodes resolved",
			},
			[]string{"result"},
		),
		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of error records by component and class",
			},
			[]string{"component", "class"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of resolution operations in seconds",
				Buckets:   buckets,
			},
			[]string{"operation"},
		),
		documentsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_loaded_total",
				Help:      "Total number of documents loaded by format and cache outcome",
			},
			[]string{"format", "cache"},
		),
		documentCacheSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "document_cache_entries",
				Help:      "Current number of cached documents",
			},
		),
	}

	registry.MustRegister(
		m.validations,
		m.mixes,
		m.windowResolutions,
		m.nodesResolved,
		m.errorsByClass,
		m.operationDuration,
		m.documentsLoaded,
		m.documentCacheSize,
	)

	return m, nil
}

// Registry returns the private registry, or nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordValidation records one schema validation.
func (m *Metrics) RecordValidation(errs diag.List, duration time.Duration) {
	if m == nil || m.validations == nil {
		return
	}
	m.validations.WithLabelValues(ResultOf(errs)).Inc()
	m.operationDuration.WithLabelValues("validate").Observe(duration.Seconds())
	m.recordErrors("schema", errs)
}

// RecordMix records one parameter mix.
func (m *Metrics) RecordMix(errs diag.List, duration time.Duration) {
	if m == nil || m.mixes == nil {
		return
	}
	m.mixes.WithLabelValues(ResultOf(errs)).Inc()
	m.operationDuration.WithLabelValues("mix").Observe(duration.Seconds())
	m.recordErrors("params", errs)
}

// RecordWindowResolution records one dependency window resolution.
func (m *Metrics) RecordWindowResolution(errs diag.List, duration time.Duration) {
	if m == nil || m.windowResolutions == nil {
		return
	}
	m.windowResolutions.WithLabelValues(ResultOf(errs)).Inc()
	m.operationDuration.WithLabelValues("windows").Observe(duration.Seconds())
	m.recordErrors("depwindow", errs)
}

// RecordNode records the outcome of resolving one stack node.
func (m *Metrics) RecordNode(result string) {
	if m == nil || m.nodesResolved == nil {
		return
	}
	m.nodesResolved.WithLabelValues(result).Inc()
}

// RecordDocumentLoad records a document load.
func (m *Metrics) RecordDocumentLoad(format string, cached bool) {
	if m == nil || m.documentsLoaded == nil {
		return
	}
	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	m.documentsLoaded.WithLabelValues(format, outcome).Inc()
}

// SetDocumentCacheSize sets the number of cached documents.
func (m *Metrics) SetDocumentCacheSize(n int) {
	if m == nil || m.documentCacheSize == nil {
		return
	}
	m.documentCacheSize.Set(float64(n))
}

func (m *Metrics) recordErrors(component string, errs diag.List) {
	for _, e := range errs {
		m.errorsByClass.WithLabelValues(component, string(e.Class)).Inc()
	}
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
