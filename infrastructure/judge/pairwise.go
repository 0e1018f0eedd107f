// Package judge provides PairwiseJudge implementations: an LLM-backed judge
// that asks a stronger model to compare two responses, a deterministic
// lexical judge that scores responses against a reference by edit distance,
// and a position-swap decorator that cancels ordering bias.
package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-arena/infrastructure/llm"
	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// Default request parameters for LLM judging. Temperature zero keeps
// verdicts as reproducible as the provider allows.
const (
	DefaultJudgeTemperature = 0.0
	DefaultJudgeMaxTokens   = 1024
)

var _ ports.PairwiseJudge = (*Pairwise)(nil)

// PairwiseConfig defines the request parameters for the LLM-backed judge.
type PairwiseConfig struct {
	// Temperature controls randomness in the judge's output (0.0-1.0).
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0.0,max=1.0"`

	// MaxTokens limits the length of the judge's reasoning.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens" validate:"required,min=50,max=8000"`
}

// DefaultPairwiseConfig returns the parameters used when none are supplied.
func DefaultPairwiseConfig() PairwiseConfig {
	return PairwiseConfig{
		Temperature: DefaultJudgeTemperature,
		MaxTokens:   DefaultJudgeMaxTokens,
	}
}

// Pairwise is an LLM-backed PairwiseJudge. It renders the comparison into a
// judging prompt, sends it through the configured transport, and parses the
// model's decision. The judge is stateless and safe for concurrent use.
type Pairwise struct {
	name   string
	client ports.LLMClient
	config PairwiseConfig
}

// NewPairwise creates an LLM-backed judge over the given transport.
func NewPairwise(name string, client ports.LLMClient, config PairwiseConfig) (*Pairwise, error) {
	if name == "" {
		return nil, fmt.Errorf("judge name cannot be empty")
	}
	if client == nil {
		return nil, fmt.Errorf("LLM client cannot be nil")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Pairwise{name: name, client: client, config: config}, nil
}

// Name identifies the judge backend for logging and verdict records.
func (p *Pairwise) Name() string { return p.name }

// Judge evaluates one comparison by prompting the judging model and parsing
// its decision. Transport and parse failures are wrapped in a JudgeError so
// the caller's retry policy can classify them.
func (p *Pairwise) Judge(ctx context.Context, c domain.Comparison) (domain.Decision, error) {
	prompt := userPrompt(c) + jsonFormatInstruction

	options := map[string]any{
		"system":      systemPrompt(c),
		"temperature": p.config.Temperature,
		"max_tokens":  p.config.MaxTokens,
	}
	if supportsJSONMode(p.client) {
		options["response_format"] = "json_object"
	}

	response, err := p.client.Complete(ctx, prompt, options)
	if err != nil {
		return domain.Decision{}, ports.NewJudgeError(p.name, c.ScenarioKey, classifyTransportError(err))
	}

	decision, err := parseDecision(response)
	if err != nil {
		return domain.Decision{}, ports.NewJudgeError(p.name, c.ScenarioKey, err)
	}
	return decision, nil
}

// supportsJSONMode reports whether the judging model understands the
// response_format option. A heuristic on the model name is good enough for
// the providers wired today.
func supportsJSONMode(client ports.LLMClient) bool {
	model := strings.ToLower(client.GetModel())
	return strings.Contains(model, "gpt") || strings.Contains(model, "o1") || strings.Contains(model, "o3")
}

// classifyTransportError maps provider failures onto the transport
// sentinels the retry policy understands. Errors that are not classified as
// retryable pass through unchanged.
func classifyTransportError(err error) error {
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		switch perr.Type {
		case llm.ErrorTypeRateLimit:
			return fmt.Errorf("%w: %v", ports.ErrRateLimited, err)
		case llm.ErrorTypeServerError, llm.ErrorTypeNetwork:
			return fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)
		case llm.ErrorTypeTimeout:
			return fmt.Errorf("%w: %v", ports.ErrTimeout, err)
		}
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ports.ErrTimeout, err)
	}
	return err
}

// llmDecision is the JSON shape the judge is instructed to emit.
type llmDecision struct {
	Winner      string `json:"winner"`
	Explanation string `json:"explanation"`
}

// parseDecision extracts the judge's decision from the raw model output.
// It first tries the structured JSON form, then falls back to scanning for
// the bracketed verdict tag. Output matching neither form is a malformed
// verdict, which the retry policy treats as transient.
func parseDecision(response string) (domain.Decision, error) {
	if jsonStr := extractJSON(response); jsonStr != "" {
		var parsed llmDecision
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err == nil {
			if outcome, ok := outcomeFromWinner(parsed.Winner); ok {
				return domain.Decision{Outcome: outcome, Explanation: parsed.Explanation}, nil
			}
		}
	}

	if outcome, ok := outcomeFromTag(response); ok {
		return domain.Decision{Outcome: outcome, Explanation: strings.TrimSpace(response)}, nil
	}

	return domain.Decision{}, fmt.Errorf("%w: no verdict found in response (%d chars)",
		ports.ErrMalformedVerdict, len(response))
}

// outcomeFromWinner maps the JSON winner field onto an outcome.
func outcomeFromWinner(winner string) (domain.Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(winner)) {
	case "a":
		return domain.OutcomeAWins, true
	case "b":
		return domain.OutcomeBWins, true
	case "tie", "c":
		return domain.OutcomeTie, true
	}
	return "", false
}

// outcomeFromTag scans for the bracketed verdict tags the prompt instructs
// the judge to emit. The last tag wins: judges sometimes quote the format
// instructions before stating their actual verdict.
func outcomeFromTag(response string) (domain.Outcome, bool) {
	tags := []struct {
		tag     string
		outcome domain.Outcome
	}{
		{"[[A]]", domain.OutcomeAWins},
		{"[[B]]", domain.OutcomeBWins},
		{"[[C]]", domain.OutcomeTie},
	}

	bestIdx := -1
	var best domain.Outcome
	for _, t := range tags {
		if idx := strings.LastIndex(response, t.tag); idx > bestIdx {
			bestIdx = idx
			best = t.outcome
		}
	}
	if bestIdx == -1 {
		return "", false
	}
	return best, true
}

// extractJSON pulls a JSON object out of a response that may wrap it in
// markdown fences or surrounding prose. Returns "" when no balanced object
// is found.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if start := strings.Index(response, "```json"); start != -1 {
		start += len("```json")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	braceCount := 0
	inString := false
	escapeNext := false
	for i := start; i < len(response); i++ {
		char := response[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		if char == '\\' {
			escapeNext = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch char {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}
