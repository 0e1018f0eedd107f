package judge

import (
	"context"
	"fmt"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

var _ ports.PairwiseJudge = (*PositionSwap)(nil)

// PositionSwap decorates a PairwiseJudge to cancel position bias. It judges
// every comparison twice, once as given and once with the responses
// swapped, and only declares a winner when both rounds agree. Disagreement
// between the rounds means the judge's preference is driven by position
// rather than content, so the verdict becomes a tie.
type PositionSwap struct {
	inner ports.PairwiseJudge
}

// NewPositionSwap wraps a judge with double-round position debiasing.
func NewPositionSwap(inner ports.PairwiseJudge) (*PositionSwap, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner judge cannot be nil")
	}
	return &PositionSwap{inner: inner}, nil
}

// Name identifies the judge backend, including the wrapped judge.
func (s *PositionSwap) Name() string { return s.inner.Name() + "+swap" }

// Judge runs both rounds and reconciles their outcomes. An error from
// either round fails the whole comparison; the caller's retry policy then
// repeats both rounds.
func (s *PositionSwap) Judge(ctx context.Context, c domain.Comparison) (domain.Decision, error) {
	forward, err := s.inner.Judge(ctx, c)
	if err != nil {
		return domain.Decision{}, err
	}

	reversed, err := s.inner.Judge(ctx, swapPositions(c))
	if err != nil {
		return domain.Decision{}, err
	}

	return reconcile(forward, reversed), nil
}

// swapPositions flips the presentation order of the two responses. The
// generator identities travel with their texts so the swapped decision can
// be mapped back.
func swapPositions(c domain.Comparison) domain.Comparison {
	c.GeneratorA, c.GeneratorB = c.GeneratorB, c.GeneratorA
	c.TextA, c.TextB = c.TextB, c.TextA
	return c
}

// reconcile folds the two rounds into one verdict. The reversed round's
// outcome is mirrored back into the original orientation first.
func reconcile(forward, reversed domain.Decision) domain.Decision {
	mirrored := mirrorOutcome(reversed.Outcome)

	if forward.Outcome == mirrored {
		return forward
	}

	return domain.Decision{
		Outcome: domain.OutcomeTie,
		Explanation: fmt.Sprintf("rounds disagree (forward: %s, swapped: %s); treating as tie",
			forward.Outcome, mirrored),
	}
}

// mirrorOutcome translates an outcome judged on swapped positions back to
// the original orientation.
func mirrorOutcome(o domain.Outcome) domain.Outcome {
	switch o {
	case domain.OutcomeAWins:
		return domain.OutcomeBWins
	case domain.OutcomeBWins:
		return domain.OutcomeAWins
	}
	return o
}
