package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"

	"github.com/ahrav/go-arena/internal/domain"
)

// Report file names inside the report directory.
const (
	LeaderboardFile     = "leaderboard.json"
	PairwiseResultsFile = "pairwise_results.jsonl"
	RatingHistoryFile   = "elo_history.jsonl"
)

// ReportWriter serializes the three run artifacts into a report directory.
// The directory is recreated on each run so stale artifacts from a prior
// run cannot survive.
type ReportWriter struct {
	dir string
}

// NewReportWriter prepares the report directory, removing any previous
// contents.
func NewReportWriter(ctx context.Context, dir string) (*ReportWriter, error) {
	if dir == "" {
		return nil, fmt.Errorf("report directory cannot be empty")
	}
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to clear report directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	clog.FromContext(ctx).Infof("reports will be saved to %s", dir)
	return &ReportWriter{dir: dir}, nil
}

// pairwiseResult is the verdict log record shape, one line per comparison
// including failed ones.
type pairwiseResult struct {
	Seq              int    `json:"seq"`
	Input            string `json:"input"`
	ModelA           string `json:"model_a"`
	ModelB           string `json:"model_b"`
	ResponseA        string `json:"response_a"`
	ResponseB        string `json:"response_b"`
	JudgeDecision    string `json:"judge_decision"`
	JudgeExplanation string `json:"judge_explanation"`
}

// WriteLeaderboard writes the final ranking as indented JSON.
func (w *ReportWriter) WriteLeaderboard(ctx context.Context, entries []domain.LeaderboardEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	path := filepath.Join(w.dir, LeaderboardFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write leaderboard: %w", err)
	}
	clog.FromContext(ctx).Infof("final leaderboard saved to %s", path)
	return nil
}

// WritePairwiseResults writes the full verdict log, one JSON record per
// line in schedule order, including failed comparisons.
func (w *ReportWriter) WritePairwiseResults(ctx context.Context, verdicts []domain.Verdict) error {
	path := filepath.Join(w.dir, PairwiseResultsFile)
	write := func(enc *json.Encoder) error {
		for _, v := range verdicts {
			record := pairwiseResult{
				Seq:              v.Comparison.Seq,
				Input:            v.Comparison.ScenarioKey,
				ModelA:           string(v.Comparison.GeneratorA),
				ModelB:           string(v.Comparison.GeneratorB),
				ResponseA:        v.Comparison.TextA,
				ResponseB:        v.Comparison.TextB,
				JudgeDecision:    string(v.Outcome),
				JudgeExplanation: v.Explanation,
			}
			if err := enc.Encode(record); err != nil {
				return err
			}
		}
		return nil
	}
	if err := w.writeJSONL(path, write); err != nil {
		return fmt.Errorf("failed to write pairwise results: %w", err)
	}
	clog.FromContext(ctx).Infof("pairwise results saved to %s", path)
	return nil
}

// WriteRatingHistory writes one record per applied rating update in
// application order.
func (w *ReportWriter) WriteRatingHistory(ctx context.Context, history []domain.RatingUpdate) error {
	path := filepath.Join(w.dir, RatingHistoryFile)
	write := func(enc *json.Encoder) error {
		for _, update := range history {
			if err := enc.Encode(update); err != nil {
				return err
			}
		}
		return nil
	}
	if err := w.writeJSONL(path, write); err != nil {
		return fmt.Errorf("failed to write rating history: %w", err)
	}
	clog.FromContext(ctx).Infof("rating history saved to %s", path)
	return nil
}

// WriteAll writes all three artifacts.
func (w *ReportWriter) WriteAll(
	ctx context.Context,
	entries []domain.LeaderboardEntry,
	verdicts []domain.Verdict,
	history []domain.RatingUpdate,
) error {
	if err := w.WriteLeaderboard(ctx, entries); err != nil {
		return err
	}
	if err := w.WritePairwiseResults(ctx, verdicts); err != nil {
		return err
	}
	return w.WriteRatingHistory(ctx, history)
}

func (w *ReportWriter) writeJSONL(path string, write func(*json.Encoder) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := write(enc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
