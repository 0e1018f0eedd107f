// Package ports defines the boundary interfaces between the ranking core
// and its infrastructure: the judge capability, the LLM transport it is
// usually built on, and operational metrics.
package ports

import (
	"context"

	"github.com/ahrav/go-arena/internal/domain"
)

// PairwiseJudge compares the two responses of one comparison and states a
// preference. The judge is deliberately opaque: prompt construction, the
// judging model, and response parsing all live behind this interface, so
// judge backends can be swapped or mocked without touching the rating
// logic.
//
// Judge is called concurrently by the orchestrator; implementations must
// be safe for concurrent use. A returned error is treated as a transport
// failure and retried by the caller's policy; a returned Decision is
// trusted at face value.
type PairwiseJudge interface {
	// Judge evaluates one comparison and returns the verdict decision.
	Judge(ctx context.Context, c domain.Comparison) (domain.Decision, error)

	// Name identifies the judge backend for logging and verdict records.
	Name() string
}

// LLMClient is the transport used by LLM-backed judges. Implementations
// handle provider-specific authentication, request formatting, and
// response parsing, and may layer middleware for rate limiting, retries,
// and timeouts.
type LLMClient interface {
	// Complete sends a completion request and returns the generated text.
	// The options map carries provider-tunable parameters such as
	// "temperature", "max_tokens", and "system".
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// GetModel returns the model identifier used by this client.
	GetModel() string
}

// MetricsCollector receives operational metrics from the orchestrator and
// the judge transport. Implementations integrate with monitoring systems
// such as Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, seconds float64, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)
}
