package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	findingsTotal    *prometheus.CounterVec
	stressIndex      *prometheus.GaugeVec
	uncoveredWeight  prometheus.Gauge
	weightsFallbacks *prometheus.CounterVec
	fetchesTotal     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		findingsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stresspulse_findings_total",
				Help: "Quality findings emitted per rule, severity, and status",
			},
			[]string{"rule", "severity", "status"},
		),
		stressIndex: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stresspulse_index_smoothed",
				Help: "Latest smoothed composite stress index",
			},
			[]string{"level"},
		),
		uncoveredWeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stresspulse_uncovered_weight",
				Help: "Weight fraction of indicators missing from the latest composite",
			},
		),
		weightsFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stresspulse_weights_fallbacks_total",
				Help: "Weight recomputations that fell back to a previous or equal vector",
			},
			[]string{"reason"},
		),
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stresspulse_fetches_total",
				Help: "Indicator fetch attempts",
			},
			[]string{"code", "result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stresspulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stresspulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFinding records one quality finding.
func (r *Recorder) RecordFinding(rule, severity, status string) {
	r.findingsTotal.WithLabelValues(rule, severity, status).Inc()
}

// RecordStressIndex records the latest smoothed composite, labeled by level.
func (r *Recorder) RecordStressIndex(level string, smoothed float64) {
	r.stressIndex.WithLabelValues(level).Set(smoothed)
}

// RecordUncoveredWeight records the weight fraction missing from the
// latest composite.
func (r *Recorder) RecordUncoveredWeight(fraction float64) {
	r.uncoveredWeight.Set(fraction)
}

// RecordWeightsFallback records a weight estimation fallback.
func (r *Recorder) RecordWeightsFallback(reason string) {
	r.weightsFallbacks.WithLabelValues(reason).Inc()
}

// RecordFetch records the outcome of one indicator fetch.
func (r *Recorder) RecordFetch(code string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.fetchesTotal.WithLabelValues(code, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
