// Package application wires the ranking pipeline: aligning generator
// outputs by scenario, scheduling pairwise comparisons, orchestrating
// concurrent judge calls, and folding verdicts into ratings.
package application

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"

	"github.com/ahrav/go-arena/internal/domain"
)

// Aligner groups per-generator response records by scenario key into
// aligned scenario bundles. Its output fixes both the generator set and
// the scenario ordering for the rest of the run.
type Aligner struct {
	// strict turns the fewer-than-two-generators skip into an error.
	strict bool
}

// NewAligner creates an aligner. In strict mode a scenario covered by
// fewer than two generators fails the run instead of being skipped.
func NewAligner(strict bool) *Aligner {
	return &Aligner{strict: strict}
}

// Align builds the ordered aligned-scenario sequence from per-generator
// record lists. Generators are visited in the given order and scenario
// keys keep their first-seen order across generators, so re-running on the
// same input yields an identical sequence.
//
// A duplicate scenario key within a single generator's records is an
// ambiguous alignment and fails immediately. Scenario keys covered by
// fewer than two generators cannot be compared and are dropped with a
// warning. Reference entries with no matching scenario are ignored.
func (a *Aligner) Align(
	ctx context.Context,
	order []domain.GeneratorID,
	records map[domain.GeneratorID][]domain.ResponseRecord,
	reference map[string]string,
) ([]domain.AlignedScenario, []domain.GeneratorID, error) {
	log := clog.FromContext(ctx)

	var keyOrder []string
	responses := make(map[string]map[domain.GeneratorID]string)

	for _, gen := range order {
		seen := make(map[string]bool, len(records[gen]))
		for _, record := range records[gen] {
			if seen[record.ScenarioKey] {
				return nil, nil, domain.NewDuplicateKeyError(gen, record.ScenarioKey)
			}
			seen[record.ScenarioKey] = true

			byGen, ok := responses[record.ScenarioKey]
			if !ok {
				byGen = make(map[domain.GeneratorID]string)
				responses[record.ScenarioKey] = byGen
				keyOrder = append(keyOrder, record.ScenarioKey)
			}
			byGen[gen] = record.Text
		}
	}

	scenarios := make([]domain.AlignedScenario, 0, len(keyOrder))
	for _, key := range keyOrder {
		byGen := responses[key]
		if len(byGen) < 2 {
			if a.strict {
				return nil, nil, fmt.Errorf("scenario %q covered by %d generator(s), need at least 2", key, len(byGen))
			}
			log.Warnf("scenario %q covered by %d generator(s), skipping", key, len(byGen))
			continue
		}
		scenarios = append(scenarios, domain.AlignedScenario{
			ScenarioKey: key,
			Responses:   byGen,
			Reference:   reference[key],
		})
	}

	generators := make([]domain.GeneratorID, len(order))
	copy(generators, order)

	log.Infof("aligned %d scenario(s) across %d generator(s)", len(scenarios), len(generators))
	return scenarios, generators, nil
}
