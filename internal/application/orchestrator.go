package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// ErrFailureRateExceeded signals that too many comparisons failed and the
// run was aborted. Verdicts collected before the abort are still returned
// alongside this error.
var ErrFailureRateExceeded = errors.New("judge failure rate exceeded")

// Default orchestrator settings. Judge calls are network bound, so a small
// pool saturates provider rate limits long before CPUs.
const (
	DefaultConcurrency   = 4
	DefaultMaxAttempts   = 3
	DefaultInitialWaitMs = 1000
	DefaultMaxWaitMs     = 30000
	DefaultJitterPercent = 0.1
)

// RetryPolicy controls the exponential backoff applied to transient judge
// failures. Delays are configured in milliseconds for YAML friendliness.
type RetryPolicy struct {
	// MaxAttempts is the number of retries after the initial call.
	// A value of 0 disables retries entirely.
	MaxAttempts int `yaml:"max_attempts" validate:"min=0,max=10"`

	// InitialWait is the delay in milliseconds before the first retry.
	// Subsequent delays grow exponentially.
	InitialWait int `yaml:"initial_wait_ms" validate:"min=0,max=60000"`

	// MaxWait caps the delay between retries, in milliseconds.
	MaxWait int `yaml:"max_wait_ms" validate:"min=0,max=300000"`

	// JitterPercent adds a random fraction of the current delay to avoid
	// synchronized retry storms. It should be between 0.0 and 1.0.
	JitterPercent float64 `yaml:"jitter_percent" validate:"min=0.0,max=1.0"`
}

// DefaultRetryPolicy returns the retry settings used when none are
// configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   DefaultMaxAttempts,
		InitialWait:   DefaultInitialWaitMs,
		MaxWait:       DefaultMaxWaitMs,
		JitterPercent: DefaultJitterPercent,
	}
}

// baseDelay and maxDelay convert the configured milliseconds to durations.
func (p RetryPolicy) baseDelay() time.Duration {
	return time.Duration(p.InitialWait) * time.Millisecond
}

func (p RetryPolicy) maxDelay() time.Duration {
	return time.Duration(p.MaxWait) * time.Millisecond
}

// OrchestratorConfig configures concurrency and fault tolerance for a run.
type OrchestratorConfig struct {
	// Concurrency bounds the number of in-flight judge calls.
	Concurrency int `yaml:"concurrency" validate:"min=0,max=64"`

	// Retry is the per-comparison retry policy.
	Retry RetryPolicy `yaml:"retry"`

	// MaxFailureRate aborts the run once the fraction of failed
	// comparisons over the total schedule exceeds it. Zero disables the
	// abort; individual failures then never escalate.
	MaxFailureRate float64 `yaml:"max_failure_rate" validate:"min=0.0,max=1.0"`
}

// DefaultOrchestratorConfig returns the orchestrator settings used when
// none are configured.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Concurrency: DefaultConcurrency,
		Retry:       DefaultRetryPolicy(),
	}
}

// JudgeOrchestrator dispatches comparisons to a judge under bounded
// concurrency and collects one verdict per comparison. Judge calls may
// complete in any order; each verdict lands in a write-once slot indexed
// by the comparison's sequence number, so downstream consumers recover
// deterministic order without locking.
//
// A comparison whose retries are exhausted becomes a FAILED verdict rather
// than aborting the batch. Only the optional global failure-rate policy
// aborts a run, and even then the collected verdicts are returned.
type JudgeOrchestrator struct {
	judge   ports.PairwiseJudge
	config  OrchestratorConfig
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewJudgeOrchestrator creates an orchestrator over the given judge.
// A nil metrics collector disables metric reporting.
func NewJudgeOrchestrator(judge ports.PairwiseJudge, config OrchestratorConfig, metrics ports.MetricsCollector) (*JudgeOrchestrator, error) {
	if judge == nil {
		return nil, fmt.Errorf("judge cannot be nil")
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	if config.Retry.InitialWait <= 0 {
		config.Retry.InitialWait = DefaultInitialWaitMs
	}
	if config.Retry.MaxWait <= 0 {
		config.Retry.MaxWait = DefaultMaxWaitMs
	}
	if config.MaxFailureRate < 0 || config.MaxFailureRate > 1 {
		return nil, fmt.Errorf("max failure rate %.2f outside [0, 1]", config.MaxFailureRate)
	}

	return &JudgeOrchestrator{
		judge:   judge,
		config:  config,
		metrics: metrics,
		tracer:  otel.Tracer("judge-orchestrator"),
	}, nil
}

// Collect judges every comparison and returns the verdicts indexed by
// sequence number. The returned slice always has one verdict per
// comparison: judged, failed-after-retries, or failed-because-aborted.
//
// When the failure-rate policy trips, Collect stops issuing new judge
// calls, lets in-flight calls finish, and returns the verdicts together
// with ErrFailureRateExceeded. The caller decides whether the partial
// transcript is still worth rating.
func (o *JudgeOrchestrator) Collect(ctx context.Context, comparisons []domain.Comparison) ([]domain.Verdict, error) {
	ctx, span := o.tracer.Start(ctx, "JudgeOrchestrator.Collect",
		trace.WithAttributes(
			attribute.String("judge", o.judge.Name()),
			attribute.Int("comparisons", len(comparisons)),
			attribute.Int("concurrency", o.config.Concurrency),
		),
	)
	defer span.End()

	log := clog.FromContext(ctx).With("judge", o.judge.Name())
	log.Infof("judging %d comparison(s) with concurrency %d", len(comparisons), o.config.Concurrency)

	// The scheduler assigns sequence indices at emission; the slot layout
	// below depends on them being dense and in order.
	for i, c := range comparisons {
		if c.Seq != i {
			return nil, fmt.Errorf("comparison at position %d has sequence index %d", i, c.Seq)
		}
	}

	// One write-once slot per comparison. Each slot is written by exactly
	// one worker, so no locking is needed on the slots themselves.
	verdicts := make([]domain.Verdict, len(comparisons))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var failures atomic.Int64
	total := len(comparisons)

	g := &errgroup.Group{}
	g.SetLimit(o.config.Concurrency)

	for i := range comparisons {
		c := comparisons[i]
		if runCtx.Err() != nil {
			break
		}

		g.Go(func() error {
			verdict := o.judgeWithRetry(runCtx, c)
			verdicts[c.Seq] = verdict

			if verdict.Failed() {
				failed := failures.Add(1)
				if o.config.MaxFailureRate > 0 &&
					float64(failed)/float64(total) > o.config.MaxFailureRate {
					cancel()
				}
			}
			return nil
		})
	}

	// Workers never return errors; failures are encoded in the verdicts.
	_ = g.Wait()

	// Comparisons never dispatched after an abort get explicit FAILED
	// verdicts so the transcript stays complete and auditable.
	for i := range verdicts {
		if !verdicts[i].Outcome.Valid() {
			verdicts[i] = domain.Verdict{
				Comparison:  comparisons[i],
				Outcome:     domain.OutcomeFailed,
				Explanation: "not judged: run aborted",
			}
		}
	}

	if o.config.MaxFailureRate > 0 {
		rate := float64(failures.Load()) / float64(total)
		if rate > o.config.MaxFailureRate {
			span.RecordError(ErrFailureRateExceeded)
			return verdicts, fmt.Errorf("%w: %.0f%% of %d comparisons failed",
				ErrFailureRateExceeded, rate*100, total)
		}
	}

	log.Infof("collected %d verdict(s), %d failed", len(verdicts), failures.Load())
	return verdicts, nil
}

// judgeWithRetry issues one judge call with exponential backoff on
// transient failures. Exhausted retries produce a FAILED verdict carrying
// the final error text.
func (o *JudgeOrchestrator) judgeWithRetry(ctx context.Context, c domain.Comparison) domain.Verdict {
	ctx, span := o.tracer.Start(ctx, "JudgeOrchestrator.judge",
		trace.WithAttributes(
			attribute.Int("comparison.seq", c.Seq),
			attribute.String("comparison.scenario", c.ScenarioKey),
			attribute.String("comparison.generator_a", string(c.GeneratorA)),
			attribute.String("comparison.generator_b", string(c.GeneratorB)),
		),
	)
	defer span.End()

	var lastErr error
	for attempt := 0; attempt <= o.config.Retry.MaxAttempts; attempt++ {
		start := time.Now()
		decision, err := o.judge.Judge(ctx, c)
		o.recordLatency("judge_call", time.Since(start))

		if err == nil {
			o.recordOutcome(decision.Outcome)
			return domain.Verdict{
				Comparison:  c,
				Outcome:     decision.Outcome,
				Explanation: decision.Explanation,
			}
		}

		lastErr = err
		if attempt == o.config.Retry.MaxAttempts || !isRetryable(err) {
			break
		}

		clog.FromContext(ctx).Warnf("judge call for comparison %d failed (attempt %d/%d): %v",
			c.Seq, attempt+1, o.config.Retry.MaxAttempts+1, err)

		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = o.config.Retry.MaxAttempts
		case <-time.After(o.retryDelay(attempt)):
		}
		if ctx.Err() != nil {
			break
		}
	}

	span.RecordError(lastErr)
	o.recordOutcome(domain.OutcomeFailed)
	clog.FromContext(ctx).Errorf("comparison %d failed after %d attempt(s): %v",
		c.Seq, o.config.Retry.MaxAttempts+1, lastErr)

	return domain.Verdict{
		Comparison:  c,
		Outcome:     domain.OutcomeFailed,
		Explanation: fmt.Sprintf("judge failed after %d attempts: %v", o.config.Retry.MaxAttempts+1, lastErr),
	}
}

// isRetryable reports whether a judge failure is worth retrying. Judge
// backends signal retryability through JudgeError; anything else is
// treated as permanent.
func isRetryable(err error) bool {
	var jerr *ports.JudgeError
	if errors.As(err, &jerr) {
		return jerr.IsRetryable()
	}
	return false
}

// retryDelay computes the exponential backoff delay with jitter for the
// given attempt.
func (o *JudgeOrchestrator) retryDelay(attempt int) time.Duration {
	base := o.config.Retry.baseDelay()
	delay := base * time.Duration(1<<attempt)
	if max := o.config.Retry.maxDelay(); delay > max {
		delay = max
	}

	jitter := int64(float64(delay) * o.config.Retry.JitterPercent)
	if jitter > 0 {
		delay += time.Duration(rand.Int64N(2*jitter) - jitter)
	}

	if delay < base {
		return base
	}
	return delay
}

func (o *JudgeOrchestrator) recordLatency(operation string, d time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordLatency(operation, d.Seconds(), map[string]string{"judge": o.judge.Name()})
}

func (o *JudgeOrchestrator) recordOutcome(outcome domain.Outcome) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordCounter("comparisons_resolved_total", 1, map[string]string{
		"judge":   o.judge.Name(),
		"outcome": string(outcome),
	})
}
