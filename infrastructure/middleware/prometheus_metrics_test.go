// Package middleware contains the unit tests for the middleware package.
package middleware

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-arena/internal/ports"
)

func newTestMetrics(t *testing.T) *PrometheusMetrics {
	t.Helper()
	return NewPrometheusMetricsWith(prometheus.NewRegistry())
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm := newTestMetrics(t)
	require.NotNil(t, pm)

	assert.NotNil(t, pm.judgeRequests)
	assert.NotNil(t, pm.comparisonOutcomes)
	assert.NotNil(t, pm.operationLatency)
	assert.NotNil(t, pm.operationCounter)
	assert.NotNil(t, pm.runGauges)

	var _ ports.MetricsCollector = pm
}

func TestPrometheusMetricsRecordCounter(t *testing.T) {
	pm := newTestMetrics(t)

	pm.RecordCounter("judge_requests_total", 1, map[string]string{"judge": "openai", "status": "success"})
	pm.RecordCounter("judge_requests_total", 1, map[string]string{"judge": "openai", "status": "success"})
	pm.RecordCounter("judge_requests_total", 1, map[string]string{"judge": "openai", "status": "error"})

	assert.Equal(t, 2.0, testutil.ToFloat64(pm.judgeRequests.WithLabelValues("openai", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.judgeRequests.WithLabelValues("openai", "error")))
}

func TestPrometheusMetricsModelLabelFallback(t *testing.T) {
	pm := newTestMetrics(t)

	// The LLM transport reports with a model label instead of a judge name.
	pm.RecordCounter("llm_requests_total", 1, map[string]string{"model": "gpt-4o", "status": "success"})
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.judgeRequests.WithLabelValues("gpt-4o", "success")))

	pm.RecordCounter("llm_requests_total", 1, map[string]string{"status": "success"})
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.judgeRequests.WithLabelValues("unknown", "success")))
}

func TestPrometheusMetricsComparisonOutcomes(t *testing.T) {
	pm := newTestMetrics(t)

	pm.RecordCounter("comparisons_resolved_total", 1, map[string]string{"judge": "lexical", "outcome": "A_WINS"})
	pm.RecordCounter("comparisons_resolved_total", 1, map[string]string{"judge": "lexical", "outcome": "TIE"})
	pm.RecordCounter("comparisons_resolved_total", 1, map[string]string{"judge": "lexical", "outcome": "TIE"})

	assert.Equal(t, 1.0, testutil.ToFloat64(pm.comparisonOutcomes.WithLabelValues("lexical", "A_WINS")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.comparisonOutcomes.WithLabelValues("lexical", "TIE")))
}

func TestPrometheusMetricsRecordGauge(t *testing.T) {
	pm := newTestMetrics(t)

	pm.RecordGauge("current_rating", 1016.0, map[string]string{"generator": "model_a"})
	assert.Equal(t, 1016.0, testutil.ToFloat64(pm.runGauges.WithLabelValues("current_rating", "model_a")))

	pm.RecordGauge("comparisons_scheduled", 42, map[string]string{"label": "run"})
	assert.Equal(t, 42.0, testutil.ToFloat64(pm.runGauges.WithLabelValues("comparisons_scheduled", "run")))
}

func TestPrometheusMetricsRecordLatency(t *testing.T) {
	pm := newTestMetrics(t)

	pm.RecordLatency("judge_call", 0.125, map[string]string{"judge": "openai"})
	pm.RecordLatency("judge_call", 0.5, map[string]string{})

	// One series per judge label: "openai" plus the "unknown" fallback.
	assert.Equal(t, 2, testutil.CollectAndCount(pm.operationLatency))
}
