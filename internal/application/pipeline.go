package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// RunInput carries the three logical inputs of a run: ordered generator
// identities, their response records, and the optional reference mapping.
type RunInput struct {
	// Order lists the generators in load order; it fixes scenario
	// first-seen ordering and therefore the whole schedule.
	Order []domain.GeneratorID

	// Records maps each generator to its response records.
	Records map[domain.GeneratorID][]domain.ResponseRecord

	// Reference maps scenario keys to ground-truth texts. May be nil.
	Reference map[string]string
}

// RunResult is everything a run produces: the final leaderboard, the full
// verdict transcript including failures, and the rating update history.
type RunResult struct {
	Leaderboard []domain.LeaderboardEntry
	Verdicts    []domain.Verdict
	History     []domain.RatingUpdate
	Ratings     map[domain.GeneratorID]float64
}

// Pipeline runs the full ranking flow: align, schedule, judge, rate. It
// owns the component wiring; the caller supplies the judge backend and an
// optional metrics collector.
type Pipeline struct {
	config  Config
	judge   ports.PairwiseJudge
	metrics ports.MetricsCollector
}

// NewPipeline assembles a pipeline from configuration and a judge backend.
func NewPipeline(config Config, judge ports.PairwiseJudge, metrics ports.MetricsCollector) (*Pipeline, error) {
	if judge == nil {
		return nil, fmt.Errorf("judge cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{config: config, judge: judge, metrics: metrics}, nil
}

// Run executes the pipeline end to end. Verdicts are collected
// concurrently but ratings are applied strictly in schedule order, so the
// same inputs and the same verdicts always produce the same result.
//
// When the run stops early, whether through the failure-rate abort or a
// cancelled context, the partial-run policy decides the outcome: with
// FinalizePartial the collected transcript is still rated and a result is
// returned; without it the run fails and nothing is rated.
func (p *Pipeline) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	log := clog.FromContext(ctx)

	scenarios, generators, err := NewAligner(p.config.Strict).Align(ctx, input.Order, input.Records, input.Reference)
	if err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		return nil, domain.ErrNoOverlap
	}

	comparisons := NewPairScheduler().Schedule(scenarios)
	log.Infof("scheduled %d pairwise comparison(s)", len(comparisons))
	if p.metrics != nil {
		p.metrics.RecordGauge("comparisons_scheduled", float64(len(comparisons)), map[string]string{"label": "run"})
	}

	orchestrator, err := NewJudgeOrchestrator(p.judge, p.config.Orchestrator, p.metrics)
	if err != nil {
		return nil, err
	}

	verdicts, err := orchestrator.Collect(ctx, comparisons)
	if err == nil && ctx.Err() != nil {
		// Cancellation stops dispatch without an orchestrator error; the
		// undispatched remainder is marked failed. Surface it so the
		// partial-run policy applies to user aborts too.
		err = fmt.Errorf("run aborted: %w", ctx.Err())
	}
	if err != nil {
		if !p.config.FinalizePartial || !isPartialRun(err) {
			return nil, err
		}
		log.Warnf("finalizing with partial data: %v", err)
	}

	engine, err := domain.NewRatingEngine(generators, p.config.KFactor, p.config.BaseRating)
	if err != nil {
		return nil, err
	}
	if err := engine.ApplyAll(verdicts); err != nil {
		return nil, err
	}

	ratings, err := engine.Snapshot()
	if err != nil {
		return nil, err
	}

	if p.metrics != nil {
		for id, rating := range ratings {
			p.metrics.RecordGauge("current_rating", rating, map[string]string{"generator": string(id)})
		}
	}

	return &RunResult{
		Leaderboard: domain.BuildLeaderboard(ratings),
		Verdicts:    verdicts,
		History:     engine.History(),
		Ratings:     ratings,
	}, nil
}

// isPartialRun reports whether the orchestrator stopped early but still
// produced a complete, auditable transcript worth rating under the
// finalize-with-partial-data policy.
func isPartialRun(err error) bool {
	return errors.Is(err, ErrFailureRateExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
