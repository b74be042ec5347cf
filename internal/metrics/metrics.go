// Package metrics 汇总引擎的 Prometheus 指标。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	IndicatorComputeDur prometheus.Histogram
	AnalysisDur         prometheus.Histogram

	CacheLookups     *prometheus.CounterVec // labels: cache, result
	DetectorFailures *prometheus.CounterVec // labels: detector
	PatternsDetected *prometheus.CounterVec // labels: category

	gatherer prometheus.Gatherer
}

// New builds the collectors and registers them on reg.
// When reg is nil a private registry is created.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taengine_indicator_compute_duration_seconds",
			Help:    "Full indicator history computation latency",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taengine_analysis_duration_seconds",
			Help:    "End-to-end analysis latency per series",
			Buckets: prometheus.DefBuckets,
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taengine_cache_lookups_total",
			Help: "Single-slot cache lookups by cache and result",
		}, []string{"cache", "result"}),
		DetectorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taengine_detector_failures_total",
			Help: "Detector invocations that panicked",
		}, []string{"detector"}),
		PatternsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taengine_patterns_detected_total",
			Help: "Patterns emitted per category",
		}, []string{"category"}),
	}
	reg.MustRegister(
		m.IndicatorComputeDur,
		m.AnalysisDur,
		m.CacheLookups,
		m.DetectorFailures,
		m.PatternsDetected,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

func (m *Metrics) ObserveCompute(d time.Duration) {
	if m == nil {
		return
	}
	m.IndicatorComputeDur.Observe(d.Seconds())
}

func (m *Metrics) ObserveAnalysis(d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysisDur.Observe(d.Seconds())
}

// CacheLookup records a hit or miss for the named cache.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) DetectorFailed(detector string) {
	if m == nil {
		return
	}
	m.DetectorFailures.WithLabelValues(detector).Inc()
}

func (m *Metrics) PatternsFound(category string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PatternsDetected.WithLabelValues(category).Add(float64(n))
}

// Handler exposes the registry the collectors were registered on.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
