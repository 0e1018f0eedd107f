package ports

import (
	"errors"
	"fmt"
	"time"
)

// Common transport errors surfaced by judge backends.
var (
	// ErrRateLimited indicates that the judging service rate limited the
	// request.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that the judging service is
	// temporarily unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that a judge call timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrMalformedVerdict indicates that the judge produced output the
	// verdict parser could not interpret. Treated as transient: a retried
	// call frequently yields a parseable verdict.
	ErrMalformedVerdict = errors.New("malformed verdict")
)

// JudgeError wraps a failure from a judge backend with enough context to
// decide retryability and to report the failing comparison.
type JudgeError struct {
	// Judge names the backend that produced the error.
	Judge string

	// ScenarioKey identifies the comparison's scenario, if known.
	ScenarioKey string

	// Err is the underlying error.
	Err error

	// RetryAfter indicates how long to wait before retrying, if the
	// service communicated one.
	RetryAfter *time.Duration
}

// Error implements the error interface for JudgeError.
func (e *JudgeError) Error() string {
	msg := fmt.Sprintf("judge error: judge=%s, err=%v", e.Judge, e.Err)
	if e.ScenarioKey != "" {
		msg += fmt.Sprintf(", scenario=%s", e.ScenarioKey)
	}
	if e.RetryAfter != nil {
		msg += fmt.Sprintf(", retry_after=%v", *e.RetryAfter)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *JudgeError) Unwrap() error { return e.Err }

// IsRetryable reports whether the failed call may succeed on retry.
// Only transport-level failures are retryable; logic errors are not.
func (e *JudgeError) IsRetryable() bool {
	return errors.Is(e.Err, ErrRateLimited) ||
		errors.Is(e.Err, ErrServiceUnavailable) ||
		errors.Is(e.Err, ErrTimeout) ||
		errors.Is(e.Err, ErrMalformedVerdict)
}

// NewJudgeError creates a JudgeError for the given backend and scenario.
func NewJudgeError(judge, scenarioKey string, err error) *JudgeError {
	return &JudgeError{Judge: judge, ScenarioKey: scenarioKey, Err: err}
}
