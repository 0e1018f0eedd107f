// Package middleware provides cross-cutting concerns for the ranking
// engine, currently the Prometheus-backed metrics collector.
package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-arena/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks judge call volume and latency, comparison
// resolution, and run-level state such as current ratings.
type PrometheusMetrics struct {
	judgeRequests      *prometheus.CounterVec
	comparisonOutcomes *prometheus.CounterVec
	operationLatency   *prometheus.HistogramVec
	operationCounter   *prometheus.CounterVec
	runGauges          *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance registered in
// the default Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWith(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWith creates a PrometheusMetrics instance registered
// in the given registry. Tests pass a fresh registry to avoid duplicate
// registration panics.
func NewPrometheusMetricsWith(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		judgeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "judge_requests_total",
				Help: "Total number of judge calls, including retries.",
			},
			[]string{"judge", "status"},
		),
		comparisonOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comparisons_resolved_total",
				Help: "Comparisons resolved, labeled by final outcome.",
			},
			[]string{"judge", "outcome"},
		),
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arena_operation_duration_seconds",
				Help:    "Execution time of ranking engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "judge"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_operations_total",
				Help: "Total number of operations performed by the ranking engine.",
			},
			[]string{"operation", "status", "judge"},
		),
		runGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "arena_run_state",
				Help: "Current run state values such as scheduled comparisons and ratings.",
			},
			[]string{"metric", "label"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(operation string, seconds float64, labels map[string]string) {
	judge, ok := labels["judge"]
	if !ok {
		judge = "unknown"
	}
	pm.operationLatency.WithLabelValues(operation, judge).Observe(seconds)
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters. Judge calls and comparison resolutions route to
// dedicated metrics; everything else lands in the general operation counter.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	judge := labels["judge"]
	if judge == "" {
		// The LLM transport labels by model rather than judge name.
		judge = labels["model"]
	}
	if judge == "" {
		judge = "unknown"
	}

	switch metric {
	case "judge_requests_total", "llm_requests_total":
		status := labels["status"]
		if status == "" {
			status = "success"
		}
		pm.judgeRequests.WithLabelValues(judge, status).Add(value)
	case "comparisons_resolved_total":
		pm.comparisonOutcomes.WithLabelValues(judge, labels["outcome"]).Add(value)
	default:
		status := labels["status"]
		if status == "" {
			status = "success"
		}
		pm.operationCounter.WithLabelValues(metric, status, judge).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	label := labels["label"]
	if label == "" {
		label = labels["generator"]
	}
	pm.runGauges.WithLabelValues(metric, label).Set(value)
}
