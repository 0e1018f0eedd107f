package domain

import (
	"fmt"
	"math"
	"sort"
)

// Default ELO parameters. K bounds how far a single outcome can move a
// rating; the base rating is every generator's starting point.
const (
	DefaultKFactor    = 32.0
	DefaultBaseRating = 1000.0
)

// EngineState tracks the lifecycle of a RatingEngine. The engine moves
// strictly forward: INITIAL -> APPLYING -> FINAL.
type EngineState int

const (
	// EngineInitial means no verdict has been applied yet; every generator
	// sits at the base rating.
	EngineInitial EngineState = iota
	// EngineApplying means the engine is consuming the ordered verdict
	// stream.
	EngineApplying
	// EngineFinal is terminal; no further mutation is permitted.
	EngineFinal
)

// String returns a human-readable state name.
func (s EngineState) String() string {
	switch s {
	case EngineInitial:
		return "INITIAL"
	case EngineApplying:
		return "APPLYING"
	case EngineFinal:
		return "FINAL"
	}
	return fmt.Sprintf("EngineState(%d)", int(s))
}

// RatingUpdate records one applied verdict: the comparison, both ratings
// before and after, and the ELO inputs. The update history is append-only
// and grows by exactly one entry per non-failed verdict.
type RatingUpdate struct {
	// Comparison is the match whose verdict produced this update.
	Comparison Comparison `json:"comparison"`

	// ModelA and ModelB name the two generators, matching the comparison.
	ModelA GeneratorID `json:"model_a"`
	ModelB GeneratorID `json:"model_b"`

	// RatingABefore and RatingBBefore are the ratings going into the update.
	RatingABefore float64 `json:"rating_a_before"`
	RatingBBefore float64 `json:"rating_b_before"`

	// RatingAAfter and RatingBAfter are the ratings after the update.
	RatingAAfter float64 `json:"rating_a_after"`
	RatingBAfter float64 `json:"rating_b_after"`

	// ScoreA is generator A's match score (1, 0, or 0.5).
	ScoreA float64 `json:"score_a"`

	// ExpectedA is the logistic expected score for A before the update.
	ExpectedA float64 `json:"expected_a"`
}

// RatingEngine folds an ordered verdict stream into per-generator ELO
// ratings. The engine is deliberately not concurrent: verdicts are applied
// one at a time, sorted by comparison sequence index, so that re-running
// the same transcript always yields the same ratings and history no matter
// how the judge calls were interleaved on the network.
//
// The engine owns its rating map exclusively. Callers read ratings only
// through Snapshot after Finalize.
type RatingEngine struct {
	kFactor    float64
	baseRating float64

	state   EngineState
	ratings map[GeneratorID]float64
	history []RatingUpdate
}

// NewRatingEngine creates a rating engine for the fixed generator set
// produced by the aligner. Every generator starts at baseRating. A
// non-positive kFactor or baseRating falls back to the defaults.
func NewRatingEngine(generators []GeneratorID, kFactor, baseRating float64) (*RatingEngine, error) {
	if len(generators) < 2 {
		return nil, fmt.Errorf("rating engine needs at least two generators, got %d", len(generators))
	}
	if kFactor <= 0 {
		kFactor = DefaultKFactor
	}
	if baseRating <= 0 {
		baseRating = DefaultBaseRating
	}

	ratings := make(map[GeneratorID]float64, len(generators))
	for _, id := range generators {
		if _, dup := ratings[id]; dup {
			return nil, fmt.Errorf("duplicate generator %q", id)
		}
		ratings[id] = baseRating
	}

	return &RatingEngine{
		kFactor:    kFactor,
		baseRating: baseRating,
		state:      EngineInitial,
		ratings:    ratings,
	}, nil
}

// State returns the engine's current lifecycle state.
func (e *RatingEngine) State() EngineState { return e.state }

// ExpectedScore computes the logistic expected score for a player rated
// ratingA against one rated ratingB.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// ApplyAll sorts the verdicts by comparison sequence index and applies them
// in that order. Failed verdicts are skipped without touching any rating.
// The engine transitions to FINAL when ApplyAll returns successfully.
//
// The input slice is not modified; verdicts are copied before sorting.
func (e *RatingEngine) ApplyAll(verdicts []Verdict) error {
	if e.state == EngineFinal {
		return ErrEngineFinalized
	}

	ordered := make([]Verdict, len(verdicts))
	copy(ordered, verdicts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Comparison.Seq < ordered[j].Comparison.Seq
	})

	for _, v := range ordered {
		if err := e.apply(v); err != nil {
			return err
		}
	}

	e.state = EngineFinal
	return nil
}

// apply folds a single verdict into the ratings. A verdict referencing a
// generator outside the fixed set is an invariant violation: comparisons
// are built from the aligner's generator set, so this cannot happen in a
// correct pipeline.
func (e *RatingEngine) apply(v Verdict) error {
	if v.Failed() {
		return nil
	}

	a, b := v.Comparison.GeneratorA, v.Comparison.GeneratorB
	ratingA, okA := e.ratings[a]
	ratingB, okB := e.ratings[b]
	if !okA {
		return fmt.Errorf("%w: %q", ErrUnknownGenerator, a)
	}
	if !okB {
		return fmt.Errorf("%w: %q", ErrUnknownGenerator, b)
	}

	scoreA, err := v.Outcome.ScoreA()
	if err != nil {
		return fmt.Errorf("comparison %d: %w", v.Comparison.Seq, err)
	}

	e.state = EngineApplying

	expectedA := ExpectedScore(ratingA, ratingB)
	newA := ratingA + e.kFactor*(scoreA-expectedA)
	newB := ratingB + e.kFactor*((1.0-scoreA)-(1.0-expectedA))

	e.ratings[a] = newA
	e.ratings[b] = newB

	e.history = append(e.history, RatingUpdate{
		Comparison:    v.Comparison,
		ModelA:        a,
		ModelB:        b,
		RatingABefore: ratingA,
		RatingBBefore: ratingB,
		RatingAAfter:  newA,
		RatingBAfter:  newB,
		ScoreA:        scoreA,
		ExpectedA:     expectedA,
	})
	return nil
}

// History returns the applied update log in application order. The
// returned slice is a copy; the engine's history cannot be mutated through
// it.
func (e *RatingEngine) History() []RatingUpdate {
	out := make([]RatingUpdate, len(e.history))
	copy(out, e.history)
	return out
}

// Snapshot returns the final ratings. It may only be called on a finalized
// engine; intermediate ratings are never observable.
func (e *RatingEngine) Snapshot() (map[GeneratorID]float64, error) {
	if e.state != EngineFinal {
		return nil, fmt.Errorf("snapshot requires a finalized engine, state is %s", e.state)
	}
	out := make(map[GeneratorID]float64, len(e.ratings))
	for id, r := range e.ratings {
		out[id] = r
	}
	return out, nil
}
