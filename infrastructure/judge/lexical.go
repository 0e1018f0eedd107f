package judge

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// foldCaser is a package-level Unicode case folder for performance.
var foldCaser = cases.Fold()

// DefaultTieMargin is the similarity margin below which two responses are
// considered equally close to the reference.
const DefaultTieMargin = 0.05

var _ ports.PairwiseJudge = (*Lexical)(nil)

// Lexical is a deterministic PairwiseJudge that prefers the response whose
// normalized Levenshtein similarity to the reference text is higher. It
// requires comparisons with a reference and needs no network access, which
// makes it useful for offline runs and as a baseline against LLM judges.
//
// The judge is stateless and safe for concurrent use.
type Lexical struct {
	// tieMargin is the similarity delta under which the verdict is a tie.
	tieMargin float64
}

// NewLexical creates a lexical judge. The margin must be within [0, 1];
// a zero margin ties only when both similarities are exactly equal.
func NewLexical(tieMargin float64) (*Lexical, error) {
	if tieMargin < 0 || tieMargin > 1.0 {
		return nil, fmt.Errorf("tie margin %.2f outside the similarity range", tieMargin)
	}
	return &Lexical{tieMargin: tieMargin}, nil
}

// Name identifies the judge backend.
func (l *Lexical) Name() string { return "lexical" }

// Judge compares both responses against the reference by edit-distance
// similarity. Comparisons without a reference cannot be judged lexically
// and fail permanently.
func (l *Lexical) Judge(_ context.Context, c domain.Comparison) (domain.Decision, error) {
	if !c.HasReference() {
		return domain.Decision{}, ports.NewJudgeError(l.Name(), c.ScenarioKey,
			fmt.Errorf("comparison has no reference text"))
	}

	simA := similarity(c.TextA, c.Reference)
	simB := similarity(c.TextB, c.Reference)

	explanation := fmt.Sprintf("similarity to reference: A=%.3f, B=%.3f", simA, simB)
	switch {
	case simA-simB > l.tieMargin:
		return domain.Decision{Outcome: domain.OutcomeAWins, Explanation: explanation}, nil
	case simB-simA > l.tieMargin:
		return domain.Decision{Outcome: domain.OutcomeBWins, Explanation: explanation}, nil
	default:
		return domain.Decision{Outcome: domain.OutcomeTie, Explanation: explanation}, nil
	}
}

// similarity computes a normalized Levenshtein similarity in [0, 1] between
// case-folded strings. Identical strings score 1; completely dissimilar
// strings score 0.
func similarity(a, b string) float64 {
	a = foldCaser.String(a)
	b = foldCaser.String(b)

	if a == b {
		return 1.0
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}
