// Package storage reads generator output files and writes run reports.
// Inputs are newline-delimited JSON records; reports are the leaderboard,
// the pairwise verdict log, and the rating history.
package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/ahrav/go-arena/internal/domain"
)

// maxLineBytes bounds a single JSONL record. Responses are short texts;
// anything past this is a corrupt file, not data.
const maxLineBytes = 1 << 20

// GeneratorSet holds the loaded responses of all generators in a run,
// keyed by generator, then by scenario key.
type GeneratorSet struct {
	// Order lists generators in load order, which fixes the aligner's
	// first-seen scenario ordering.
	Order []domain.GeneratorID

	// Records maps each generator to its response records in file order.
	Records map[domain.GeneratorID][]domain.ResponseRecord
}

// LoadResponses reads one JSONL response file. Blank lines are skipped;
// lines missing the input field are skipped with a warning; lines that are
// not valid JSON are logged and skipped. A missing file is an error.
func LoadResponses(ctx context.Context, path string) ([]domain.ResponseRecord, error) {
	log := clog.FromContext(ctx).With("file", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open response file: %w", err)
	}
	defer f.Close()

	var records []domain.ResponseRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record domain.ResponseRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			log.Errorf("invalid JSON on line %d: %v", lineNum, err)
			continue
		}
		if record.ScenarioKey == "" {
			log.Warnf("line %d missing 'input', skipping", lineNum)
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return records, nil
}

// LoadGeneratorDir loads every *.jsonl file in dir as one generator's
// response set. Generator identity derives from the file name stem, and
// generators are ordered by file name for reproducible runs. At least two
// files are required; fewer cannot produce a single comparison.
func LoadGeneratorDir(ctx context.Context, dir string) (*GeneratorSet, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(paths) < 2 {
		return nil, fmt.Errorf("directory %s must contain at least two .jsonl files, found %d", dir, len(paths))
	}
	sort.Strings(paths)

	clog.FromContext(ctx).Infof("found %d generator files in %s", len(paths), dir)

	set := &GeneratorSet{Records: make(map[domain.GeneratorID][]domain.ResponseRecord, len(paths))}
	for _, path := range paths {
		id := domain.GeneratorID(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if _, ok := set.Records[id]; ok {
			return nil, fmt.Errorf("duplicate generator %q in %s", id, dir)
		}

		records, err := LoadResponses(ctx, path)
		if err != nil {
			return nil, err
		}
		set.Order = append(set.Order, id)
		set.Records[id] = records
	}

	return set, nil
}

// LoadReference reads the optional reference file, which shares the
// response record shape, into a scenario key to reference text mapping.
// Later records win on duplicate keys, matching generator load semantics.
func LoadReference(ctx context.Context, path string) (map[string]string, error) {
	records, err := LoadResponses(ctx, path)
	if err != nil {
		return nil, err
	}

	reference := make(map[string]string, len(records))
	for _, r := range records {
		reference[r.ScenarioKey] = r.Text
	}
	return reference, nil
}
