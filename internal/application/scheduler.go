package application

import (
	"sort"

	"github.com/ahrav/go-arena/internal/domain"
)

// PairScheduler turns aligned scenarios into the ordered comparison
// schedule. Scheduling is purely deterministic: scenarios in aligner
// order, generator pairs in lexicographic order, and a running sequence
// index assigned at emission. That index is the sole ordering authority
// for rating application, fully decoupled from judge completion time.
type PairScheduler struct{}

// NewPairScheduler creates a scheduler.
func NewPairScheduler() *PairScheduler { return &PairScheduler{} }

// Schedule emits one Comparison per unordered generator pair per
// scenario. Only generators with a response in the scenario participate;
// a scenario shared by two of three generators yields exactly one
// comparison. O(scenarios x generators^2) is accepted: datasets are tens
// of generators and hundreds of scenarios.
func (s *PairScheduler) Schedule(scenarios []domain.AlignedScenario) []domain.Comparison {
	var comparisons []domain.Comparison
	seq := 0

	for _, scenario := range scenarios {
		generators := scenario.Generators()
		sort.Slice(generators, func(i, j int) bool { return generators[i] < generators[j] })

		for i := 0; i < len(generators); i++ {
			for j := i + 1; j < len(generators); j++ {
				a, b := generators[i], generators[j]
				comparisons = append(comparisons, domain.Comparison{
					Seq:         seq,
					ScenarioKey: scenario.ScenarioKey,
					GeneratorA:  a,
					GeneratorB:  b,
					TextA:       scenario.Responses[a],
					TextB:       scenario.Responses[b],
					Reference:   scenario.Reference,
				})
				seq++
			}
		}
	}

	return comparisons
}
