package domain

import "fmt"

// Comparison is a single scheduled pairwise match between two generators on
// one scenario. Comparisons are created once by the scheduler and never
// mutated afterwards.
//
// Seq is the comparison's position in schedule order. It is the sole
// ordering key used when verdicts are folded into ratings, which makes the
// final ratings independent of the order in which judge calls complete.
type Comparison struct {
	// Seq is the stable, zero-based schedule index of this comparison.
	Seq int `json:"seq"`

	// ScenarioKey identifies the scenario being compared.
	ScenarioKey string `json:"scenario_key"`

	// GeneratorA and GeneratorB are the two distinct generators under
	// comparison. GeneratorA always sorts before GeneratorB.
	GeneratorA GeneratorID `json:"generator_a"`
	GeneratorB GeneratorID `json:"generator_b"`

	// TextA and TextB are the responses of GeneratorA and GeneratorB.
	TextA string `json:"text_a"`
	TextB string `json:"text_b"`

	// Reference holds the optional ground-truth text for the scenario.
	Reference string `json:"reference,omitempty"`
}

// HasReference reports whether a ground-truth text is attached.
func (c Comparison) HasReference() bool { return c.Reference != "" }

// Outcome is the result of judging one comparison.
type Outcome string

// Possible comparison outcomes. OutcomeFailed marks a comparison whose
// judge calls exhausted all retries; it is recorded in the verdict log but
// never applied to ratings.
const (
	OutcomeAWins  Outcome = "A_WINS"
	OutcomeBWins  Outcome = "B_WINS"
	OutcomeTie    Outcome = "TIE"
	OutcomeFailed Outcome = "FAILED"
)

// Valid reports whether o is one of the defined outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeAWins, OutcomeBWins, OutcomeTie, OutcomeFailed:
		return true
	}
	return false
}

// ScoreA converts the outcome into generator A's match score for the ELO
// update: 1 for a win, 0 for a loss, 0.5 for a tie. Calling ScoreA on a
// failed outcome is a programming error.
func (o Outcome) ScoreA() (float64, error) {
	switch o {
	case OutcomeAWins:
		return 1.0, nil
	case OutcomeBWins:
		return 0.0, nil
	case OutcomeTie:
		return 0.5, nil
	}
	return 0, fmt.Errorf("outcome %q has no score", o)
}

// Decision is a judge's raw answer for one comparison, before it is bound
// to the comparison as a Verdict.
type Decision struct {
	// Outcome is the judge's preference between the two responses.
	Outcome Outcome `json:"outcome"`

	// Explanation is the judge's natural-language reasoning.
	Explanation string `json:"explanation"`
}

// Verdict binds a judge decision to the comparison it resolves. A verdict
// with OutcomeFailed carries the final error text in Explanation.
type Verdict struct {
	// Comparison is the scheduled match this verdict resolves.
	Comparison Comparison `json:"comparison"`

	// Outcome is the judged result, or OutcomeFailed when the judge could
	// not produce a usable decision after retries.
	Outcome Outcome `json:"outcome"`

	// Explanation is the judge's reasoning, or the failure description for
	// failed comparisons.
	Explanation string `json:"explanation"`
}

// Failed reports whether this verdict records a judge failure.
func (v Verdict) Failed() bool { return v.Outcome == OutcomeFailed }
