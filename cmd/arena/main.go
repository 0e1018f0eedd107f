// Command arena ranks competing response generators by pairwise LLM
// judging. It reads one JSONL file per generator from a directory, runs
// every scheduled comparison through the selected judge, folds the
// verdicts into ELO ratings, and writes the leaderboard and transcripts
// into a report directory.
//
// Usage:
//
//	arena [flags] <input-dir>
//
// Each <input-dir>/*.jsonl file holds one generator's outputs as lines of
// {"input": "<scenario>", "response": "<text>"}; the file stem becomes the
// generator's identity.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-arena/infrastructure/judge"
	"github.com/ahrav/go-arena/infrastructure/llm"
	"github.com/ahrav/go-arena/infrastructure/middleware"
	"github.com/ahrav/go-arena/infrastructure/storage"
	"github.com/ahrav/go-arena/internal/application"
	"github.com/ahrav/go-arena/internal/ports"
)

func main() {
	var (
		reportDir    = flag.String("report-dir", "report", "Directory to save report files")
		referenceSrc = flag.String("reference", "", "Optional JSONL file with reference answers")
		configPath   = flag.String("config", "", "Optional YAML run configuration")
		judgeName    = flag.String("judge", "openai", "Judge backend: openai, anthropic, google, or lexical")
		model        = flag.String("model", "", "Judging model override for LLM judges")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: arena [flags] <input-dir>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Arg(0), *reportDir, *referenceSrc, *configPath, *judgeName, *model); err != nil {
		clog.FromContext(ctx).Errorf("run failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, inputDir, reportDir, referenceSrc, configPath, judgeName, model string) error {
	config := application.DefaultConfig()
	if configPath != "" {
		loaded, err := application.LoadConfig(configPath)
		if err != nil {
			return err
		}
		config = loaded
	}

	set, err := storage.LoadGeneratorDir(ctx, inputDir)
	if err != nil {
		return err
	}

	var reference map[string]string
	if referenceSrc != "" {
		if reference, err = storage.LoadReference(ctx, referenceSrc); err != nil {
			return err
		}
	}

	metrics := middleware.NewPrometheusMetrics()

	pairwiseJudge, err := buildJudge(judgeName, model, metrics)
	if err != nil {
		return err
	}
	if config.PositionSwap {
		if pairwiseJudge, err = judge.NewPositionSwap(pairwiseJudge); err != nil {
			return err
		}
	}

	pipeline, err := application.NewPipeline(config, pairwiseJudge, metrics)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, application.RunInput{
		Order:     set.Order,
		Records:   set.Records,
		Reference: reference,
	})
	if err != nil {
		return err
	}

	fmt.Println("\n=== Final ELO Rankings ===")
	for _, entry := range result.Leaderboard {
		fmt.Printf("%d. %s: %.2f\n", entry.Rank, entry.Model, entry.Rating)
	}

	writer, err := storage.NewReportWriter(ctx, reportDir)
	if err != nil {
		return err
	}
	return writer.WriteAll(ctx, result.Leaderboard, result.Verdicts, result.History)
}

// buildJudge constructs the selected judge backend. LLM judges read their
// API key from the provider's conventional environment variable and get a
// rate-limited, time-bounded, metered transport.
func buildJudge(name, model string, metrics ports.MetricsCollector) (ports.PairwiseJudge, error) {
	if name == "lexical" {
		return judge.NewLexical(judge.DefaultTieMargin)
	}

	envKeys := map[string]string{
		"openai":    "OPENAI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
		"google":    "GEMINI_API_KEY",
	}
	envKey, ok := envKeys[name]
	if !ok {
		return nil, fmt.Errorf("unknown judge backend %q", name)
	}

	client, err := llm.NewClient(name, llm.ClientConfig{
		APIKey: os.Getenv(envKey),
		Model:  model,
		Middleware: []llm.Middleware{
			llm.RateLimitMiddleware(rate.Limit(2), 4),
			llm.TimeoutMiddleware(60 * time.Second),
			llm.MetricsMiddleware(metrics),
		},
	})
	if err != nil {
		return nil, err
	}

	return judge.NewPairwise(name, client, judge.DefaultPairwiseConfig())
}
