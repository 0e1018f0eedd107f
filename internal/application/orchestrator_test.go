package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// stubJudge resolves comparisons from a script keyed by sequence number.
// Unscripted comparisons win for A.
type stubJudge struct {
	mu       sync.Mutex
	outcomes map[int]domain.Outcome
	errs     map[int]error
	failN    map[int]int // fail the first N attempts for a seq
	attempts map[int]int
	inFlight atomic.Int64
	maxSeen  atomic.Int64
	delay    time.Duration
}

func (s *stubJudge) Judge(ctx context.Context, c domain.Comparison) (domain.Decision, error) {
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		prev := s.maxSeen.Load()
		if cur <= prev || s.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return domain.Decision{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempts == nil {
		s.attempts = make(map[int]int)
	}
	s.attempts[c.Seq]++

	if n, ok := s.failN[c.Seq]; ok && s.attempts[c.Seq] <= n {
		return domain.Decision{}, ports.NewJudgeError("stub", c.ScenarioKey, ports.ErrServiceUnavailable)
	}
	if err, ok := s.errs[c.Seq]; ok {
		return domain.Decision{}, err
	}
	if outcome, ok := s.outcomes[c.Seq]; ok {
		return domain.Decision{Outcome: outcome, Explanation: "scripted"}, nil
	}
	return domain.Decision{Outcome: domain.OutcomeAWins, Explanation: "default"}, nil
}

func (s *stubJudge) Name() string { return "stub" }

func makeComparisons(n int) []domain.Comparison {
	comparisons := make([]domain.Comparison, n)
	for i := range comparisons {
		comparisons[i] = domain.Comparison{
			Seq:         i,
			ScenarioKey: fmt.Sprintf("S%d", i),
			GeneratorA:  "model_a",
			GeneratorB:  "model_b",
			TextA:       "a",
			TextB:       "b",
		}
	}
	return comparisons
}

func fastConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Concurrency: 4,
		Retry: RetryPolicy{
			MaxAttempts: 2,
			InitialWait: 1,
			MaxWait:     5,
		},
	}
}

func TestOrchestratorCollectsAllVerdicts(t *testing.T) {
	judge := &stubJudge{outcomes: map[int]domain.Outcome{
		0: domain.OutcomeAWins,
		1: domain.OutcomeBWins,
		2: domain.OutcomeTie,
	}}
	o, err := NewJudgeOrchestrator(judge, fastConfig(), nil)
	require.NoError(t, err)

	verdicts, err := o.Collect(context.Background(), makeComparisons(3))
	require.NoError(t, err)
	require.Len(t, verdicts, 3)

	// Verdicts land in sequence order regardless of completion order.
	assert.Equal(t, domain.OutcomeAWins, verdicts[0].Outcome)
	assert.Equal(t, domain.OutcomeBWins, verdicts[1].Outcome)
	assert.Equal(t, domain.OutcomeTie, verdicts[2].Outcome)
	for i, v := range verdicts {
		assert.Equal(t, i, v.Comparison.Seq)
	}
}

func TestOrchestratorRetriesTransientFailures(t *testing.T) {
	judge := &stubJudge{
		outcomes: map[int]domain.Outcome{0: domain.OutcomeBWins},
		failN:    map[int]int{0: 2},
	}
	o, err := NewJudgeOrchestrator(judge, fastConfig(), nil)
	require.NoError(t, err)

	verdicts, err := o.Collect(context.Background(), makeComparisons(1))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBWins, verdicts[0].Outcome)
	assert.Equal(t, 3, judge.attempts[0])
}

func TestOrchestratorExhaustedRetriesBecomeFailedVerdict(t *testing.T) {
	judge := &stubJudge{failN: map[int]int{1: 100}}
	o, err := NewJudgeOrchestrator(judge, fastConfig(), nil)
	require.NoError(t, err)

	verdicts, err := o.Collect(context.Background(), makeComparisons(3))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeAWins, verdicts[0].Outcome)
	assert.True(t, verdicts[1].Failed())
	assert.Contains(t, verdicts[1].Explanation, "judge failed after 3 attempts")
	assert.Equal(t, domain.OutcomeAWins, verdicts[2].Outcome)
	// Initial attempt plus two retries.
	assert.Equal(t, 3, judge.attempts[1])
}

func TestOrchestratorPermanentErrorsAreNotRetried(t *testing.T) {
	judge := &stubJudge{errs: map[int]error{
		0: ports.NewJudgeError("stub", "S0", errors.New("no reference text")),
	}}
	o, err := NewJudgeOrchestrator(judge, fastConfig(), nil)
	require.NoError(t, err)

	verdicts, err := o.Collect(context.Background(), makeComparisons(1))
	require.NoError(t, err)
	assert.True(t, verdicts[0].Failed())
	assert.Equal(t, 1, judge.attempts[0])
}

func TestOrchestratorBoundsConcurrency(t *testing.T) {
	judge := &stubJudge{delay: 10 * time.Millisecond}
	config := fastConfig()
	config.Concurrency = 2

	o, err := NewJudgeOrchestrator(judge, config, nil)
	require.NoError(t, err)

	_, err = o.Collect(context.Background(), makeComparisons(8))
	require.NoError(t, err)
	assert.LessOrEqual(t, judge.maxSeen.Load(), int64(2))
}

func TestOrchestratorFailureRateAbort(t *testing.T) {
	// Every call fails permanently; the 25% threshold trips early.
	judge := &stubJudge{delay: time.Millisecond}
	for i := 0; i < 20; i++ {
		if judge.errs == nil {
			judge.errs = make(map[int]error)
		}
		judge.errs[i] = ports.NewJudgeError("stub", fmt.Sprintf("S%d", i), errors.New("permanent"))
	}

	config := fastConfig()
	config.Concurrency = 1
	config.MaxFailureRate = 0.25

	o, err := NewJudgeOrchestrator(judge, config, nil)
	require.NoError(t, err)

	verdicts, err := o.Collect(context.Background(), makeComparisons(20))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrFailureRateExceeded)

	// The transcript stays complete: every comparison has a verdict and
	// all of them are failures, with the undispatched remainder marked.
	require.Len(t, verdicts, 20)
	for _, v := range verdicts {
		assert.True(t, v.Failed())
	}
	aborted := 0
	for _, v := range verdicts {
		if v.Explanation == "not judged: run aborted" {
			aborted++
		}
	}
	assert.Positive(t, aborted)
}

func TestOrchestratorShuffledCompletionIsDeterministic(t *testing.T) {
	// Random per-call delays shuffle completion order; verdict content and
	// position must not change.
	comparisons := makeComparisons(12)
	outcomes := map[int]domain.Outcome{}
	for i := range comparisons {
		switch i % 3 {
		case 0:
			outcomes[i] = domain.OutcomeAWins
		case 1:
			outcomes[i] = domain.OutcomeBWins
		default:
			outcomes[i] = domain.OutcomeTie
		}
	}

	var reference []domain.Verdict
	for trial := 0; trial < 5; trial++ {
		judge := &stubJudge{outcomes: outcomes, delay: time.Duration(trial%3) * time.Millisecond}
		o, err := NewJudgeOrchestrator(judge, fastConfig(), nil)
		require.NoError(t, err)

		verdicts, err := o.Collect(context.Background(), comparisons)
		require.NoError(t, err)

		if reference == nil {
			reference = verdicts
			continue
		}
		assert.Equal(t, reference, verdicts, "trial %d", trial)
	}
}

func TestNewJudgeOrchestratorValidation(t *testing.T) {
	_, err := NewJudgeOrchestrator(nil, DefaultOrchestratorConfig(), nil)
	require.Error(t, err)

	o, err := NewJudgeOrchestrator(&stubJudge{}, OrchestratorConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConcurrency, o.config.Concurrency)
	assert.Equal(t, DefaultInitialWaitMs, o.config.Retry.InitialWait)
}
