// Package testutils provides test data generators for exercising the
// evaluation pipeline. These components are intended for internal use
// within the project's test suites and demo tooling and are not part of
// the public API.
package testutils

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/ahrav/go-arena/internal/domain"
)

// GeneratorProfile describes one synthetic generator and how often it
// reproduces the reference answer. Accuracy is the probability, per
// scenario, that the generator answers correctly.
type GeneratorProfile struct {
	Name     string
	Accuracy float64
}

// SyntheticScenario is one generated evaluation scenario with a known
// reference answer and one response per configured generator.
type SyntheticScenario struct {
	Key       string
	Reference string
	Responses map[string]string
}

// SyntheticDataset holds a full generated run: scenarios plus the
// profiles that produced them.
type SyntheticDataset struct {
	Profiles  []GeneratorProfile
	Scenarios []SyntheticScenario
}

type factTemplate struct {
	question string
	answer   string
	wrong    []string
}

var factTemplates = []factTemplate{
	{
		question: "What is the chemical symbol for gold?",
		answer:   "The chemical symbol for gold is Au.",
		wrong:    []string{"The chemical symbol for gold is Ag.", "Gold does not have a chemical symbol."},
	},
	{
		question: "Which planet is closest to the Sun?",
		answer:   "Mercury is the closest planet to the Sun.",
		wrong:    []string{"Venus is the closest planet to the Sun.", "The closest planet to the Sun is Mars."},
	},
	{
		question: "What is the boiling point of water at sea level in Celsius?",
		answer:   "Water boils at 100 degrees Celsius at sea level.",
		wrong:    []string{"Water boils at 90 degrees Celsius at sea level.", "Water boils at 212 degrees Celsius at sea level."},
	},
	{
		question: "How many continents are there on Earth?",
		answer:   "There are seven continents on Earth.",
		wrong:    []string{"There are five continents on Earth.", "There are six continents on Earth."},
	},
}

// GenerateDataset creates a synthetic pairwise-evaluation dataset with
// size scenarios. The seed controls randomization; use a fixed value for
// reproducible output. Generators with higher Accuracy reproduce the
// reference answer more often, so a reference-based judge should rank
// them above less accurate ones.
func GenerateDataset(size int, profiles []GeneratorProfile, seed int64) *SyntheticDataset {
	rng := rand.New(rand.NewSource(seed))

	dataset := &SyntheticDataset{
		Profiles:  profiles,
		Scenarios: make([]SyntheticScenario, 0, size),
	}

	for i := range size {
		var (
			question  string
			reference string
			wrong     []string
		)
		if rng.Intn(2) == 0 {
			question, reference, wrong = generateArithmeticScenario(rng, i)
		} else {
			question, reference, wrong = generateFactScenario(rng, i)
		}

		scenario := SyntheticScenario{
			Key:       question,
			Reference: reference,
			Responses: make(map[string]string, len(profiles)),
		}
		for _, p := range profiles {
			if rng.Float64() < p.Accuracy {
				scenario.Responses[p.Name] = reference
			} else {
				scenario.Responses[p.Name] = wrong[rng.Intn(len(wrong))]
			}
		}
		dataset.Scenarios = append(dataset.Scenarios, scenario)
	}

	return dataset
}

func generateArithmeticScenario(rng *rand.Rand, index int) (question, reference string, wrong []string) {
	a := rng.Intn(90) + 10
	b := rng.Intn(90) + 10
	correct := a + b

	question = fmt.Sprintf("[%d] What is %d + %d?", index, a, b)
	reference = fmt.Sprintf("The answer is %d.", correct)
	wrong = []string{
		fmt.Sprintf("The answer is %d.", correct+rng.Intn(5)+1),
		fmt.Sprintf("The answer is %d.", correct-rng.Intn(5)-1),
	}
	return question, reference, wrong
}

func generateFactScenario(rng *rand.Rand, index int) (question, reference string, wrong []string) {
	t := factTemplates[rng.Intn(len(factTemplates))]
	return fmt.Sprintf("[%d] %s", index, t.question), t.answer, t.wrong
}

// WriteJSONL materializes the dataset on disk in the layout the response
// loader expects: one <generator>.jsonl file per profile under
// responsesDir, and the reference answers at referencePath. Existing
// files are overwritten.
func (d *SyntheticDataset) WriteJSONL(responsesDir, referencePath string) error {
	if err := os.MkdirAll(responsesDir, 0o755); err != nil {
		return fmt.Errorf("create responses dir: %w", err)
	}

	for _, p := range d.Profiles {
		records := make([]domain.ResponseRecord, 0, len(d.Scenarios))
		for _, s := range d.Scenarios {
			records = append(records, domain.ResponseRecord{
				ScenarioKey: s.Key,
				Text:        s.Responses[p.Name],
			})
		}
		path := filepath.Join(responsesDir, p.Name+".jsonl")
		if err := writeRecords(path, records); err != nil {
			return err
		}
	}

	references := make([]domain.ResponseRecord, 0, len(d.Scenarios))
	for _, s := range d.Scenarios {
		references = append(references, domain.ResponseRecord{
			ScenarioKey: s.Key,
			Text:        s.Reference,
		})
	}
	return writeRecords(referencePath, references)
}

func writeRecords(path string, records []domain.ResponseRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode record for %s: %w", path, err)
		}
	}
	return nil
}
