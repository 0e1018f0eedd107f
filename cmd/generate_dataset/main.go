// Command generate_dataset emits a synthetic pairwise-evaluation dataset:
// one JSONL response file per simulated generator plus a reference answer
// file. The output is loadable by the arena command and is meant for
// demos and pipeline testing, not for benchmarking real models.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ahrav/go-arena/internal/testutils"
)

func main() {
	var (
		size      = flag.Int("size", 100, "Number of scenarios to generate")
		outputDir = flag.String("out", "testdata/synthetic", "Output directory")
		seed      = flag.Int64("seed", 0, "Random seed (0 uses the current time)")
		profiles  = flag.String("generators", "strong:0.9,medium:0.6,weak:0.3",
			"Comma-separated name:accuracy pairs")
	)
	flag.Parse()

	parsed, err := parseProfiles(*profiles)
	if err != nil {
		log.Fatalf("Invalid -generators value: %v", err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	dataset := testutils.GenerateDataset(*size, parsed, *seed)

	responsesDir := filepath.Join(*outputDir, "responses")
	referencePath := filepath.Join(*outputDir, "reference.jsonl")
	if err := dataset.WriteJSONL(responsesDir, referencePath); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}

	fmt.Printf("Generated synthetic dataset:\n")
	fmt.Printf("- Responses: %s\n", responsesDir)
	fmt.Printf("- Reference: %s\n", referencePath)
	fmt.Printf("- Scenarios: %d\n", len(dataset.Scenarios))
	fmt.Printf("- Seed: %d\n", *seed)
	for _, p := range parsed {
		fmt.Printf("- Generator %s: accuracy %.2f\n", p.Name, p.Accuracy)
	}
	fmt.Printf("\nRun the evaluation with:\n")
	fmt.Printf("  arena -judge lexical -reference %s %s\n", referencePath, responsesDir)
}

func parseProfiles(s string) ([]testutils.GeneratorProfile, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return nil, fmt.Errorf("need at least two generators, got %d", len(parts))
	}

	profiles := make([]testutils.GeneratorProfile, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		name, acc, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed entry %q, want name:accuracy", part)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate generator %q", name)
		}
		seen[name] = true

		accuracy, err := strconv.ParseFloat(acc, 64)
		if err != nil || accuracy < 0 || accuracy > 1 {
			return nil, fmt.Errorf("accuracy for %q must be in [0,1], got %q", name, acc)
		}
		profiles = append(profiles, testutils.GeneratorProfile{Name: name, Accuracy: accuracy})
	}
	return profiles, nil
}
