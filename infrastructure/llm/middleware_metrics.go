package llm

import (
	"context"
	"time"

	"github.com/ahrav/go-arena/internal/ports"
)

// metricsLLM records latency and outcome counters for every judge call
// made through the transport.
type metricsLLM struct {
	next      CoreLLM
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that reports request metrics to the
// given collector.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &metricsLLM{next: next, collector: collector}
	}
}

// DoRequest executes the request while recording latency and status.
func (m *metricsLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	start := time.Now()
	response, err := m.next.DoRequest(ctx, prompt, opts)

	if m.collector != nil {
		labels := map[string]string{
			"model":  m.next.GetModel(),
			"status": "success",
		}
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				labels["status"] = "timeout"
			} else {
				labels["status"] = "error"
			}
		}
		m.collector.RecordLatency("llm_request", time.Since(start).Seconds(), labels)
		m.collector.RecordCounter("llm_requests_total", 1, labels)
	}

	return response, err
}

// GetModel returns the model name from the wrapped implementation.
func (m *metricsLLM) GetModel() string { return m.next.GetModel() }
