package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-arena/infrastructure/llm"
	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// mockLLMClient is a scriptable ports.LLMClient for judge tests.
type mockLLMClient struct {
	response   string
	err        error
	model      string
	sawPrompt  string
	sawOptions map[string]any
}

func (m *mockLLMClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	m.sawPrompt = prompt
	m.sawOptions = options
	return m.response, m.err
}

func (m *mockLLMClient) GetModel() string {
	if m.model == "" {
		return "gpt-4o"
	}
	return m.model
}

func testComparison() domain.Comparison {
	return domain.Comparison{
		Seq:         0,
		ScenarioKey: "S1_P001: person reaches for a cup",
		GeneratorA:  "model_a",
		GeneratorB:  "model_b",
		TextA:       "drink water",
		TextB:       "hand waving",
		Reference:   "drink water",
	}
}

func TestNewPairwiseValidation(t *testing.T) {
	client := &mockLLMClient{}

	_, err := NewPairwise("", client, DefaultPairwiseConfig())
	require.Error(t, err)

	_, err = NewPairwise("judge", nil, DefaultPairwiseConfig())
	require.Error(t, err)

	_, err = NewPairwise("judge", client, PairwiseConfig{Temperature: 3.0, MaxTokens: 1024})
	require.Error(t, err)

	j, err := NewPairwise("judge", client, DefaultPairwiseConfig())
	require.NoError(t, err)
	assert.Equal(t, "judge", j.Name())
}

func TestPairwiseJudgeParsesJSONDecision(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     domain.Outcome
	}{
		{
			name:     "plain json winner A",
			response: `{"winner": "A", "explanation": "A matches the reference"}`,
			want:     domain.OutcomeAWins,
		},
		{
			name:     "plain json winner B",
			response: `{"winner": "B", "explanation": "B is more appropriate"}`,
			want:     domain.OutcomeBWins,
		},
		{
			name:     "json tie",
			response: `{"winner": "Tie", "explanation": "both equally plausible"}`,
			want:     domain.OutcomeTie,
		},
		{
			name:     "json in markdown fences",
			response: "Here is my verdict:\n```json\n{\"winner\": \"A\", \"explanation\": \"closer match\"}\n```",
			want:     domain.OutcomeAWins,
		},
		{
			name:     "json with surrounding prose",
			response: "After careful comparison. {\"winner\": \"B\", \"explanation\": \"safer action\"} Done.",
			want:     domain.OutcomeBWins,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockLLMClient{response: tt.response}
			j, err := NewPairwise("judge", client, DefaultPairwiseConfig())
			require.NoError(t, err)

			decision, err := j.Judge(context.Background(), testComparison())
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.Outcome)
			assert.NotEmpty(t, decision.Explanation)
		})
	}
}

func TestPairwiseJudgeParsesVerdictTags(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     domain.Outcome
	}{
		{"tag A", "Response A is closer to the reference.\n\n[[A]]", domain.OutcomeAWins},
		{"tag B", "B handles the scenario better. Final verdict: [[B]]", domain.OutcomeBWins},
		{"tag C", "Both are reasonable. [[C]]", domain.OutcomeTie},
		{
			name:     "last tag wins over quoted instructions",
			response: `I will answer "[[A]]" or "[[B]]" or "[[C]]". My verdict: [[B]]`,
			want:     domain.OutcomeBWins,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockLLMClient{response: tt.response}
			j, err := NewPairwise("judge", client, DefaultPairwiseConfig())
			require.NoError(t, err)

			decision, err := j.Judge(context.Background(), testComparison())
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.Outcome)
		})
	}
}

func TestPairwiseJudgeMalformedResponse(t *testing.T) {
	client := &mockLLMClient{response: "I cannot decide between these two."}
	j, err := NewPairwise("judge", client, DefaultPairwiseConfig())
	require.NoError(t, err)

	_, err = j.Judge(context.Background(), testComparison())
	require.Error(t, err)
	require.ErrorIs(t, err, ports.ErrMalformedVerdict)

	var jerr *ports.JudgeError
	require.ErrorAs(t, err, &jerr)
	assert.True(t, jerr.IsRetryable())
	assert.Equal(t, "judge", jerr.Judge)
}

func TestPairwiseJudgeTransportErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		sentinel  error
		retryable bool
	}{
		{
			name:      "rate limit maps to ErrRateLimited",
			err:       llm.NewProviderError("openai", llm.ErrorTypeRateLimit, 429, "slow down", nil),
			sentinel:  ports.ErrRateLimited,
			retryable: true,
		},
		{
			name:      "server error maps to ErrServiceUnavailable",
			err:       llm.NewProviderError("openai", llm.ErrorTypeServerError, 503, "overloaded", nil),
			sentinel:  ports.ErrServiceUnavailable,
			retryable: true,
		},
		{
			name:      "timeout maps to ErrTimeout",
			err:       llm.NewProviderError("openai", llm.ErrorTypeTimeout, 0, "deadline", context.DeadlineExceeded),
			sentinel:  ports.ErrTimeout,
			retryable: true,
		},
		{
			name:      "auth error stays non-retryable",
			err:       llm.NewProviderError("openai", llm.ErrorTypeAuthentication, 401, "bad key", nil),
			sentinel:  nil,
			retryable: false,
		},
		{
			name:      "bare deadline maps to ErrTimeout",
			err:       context.DeadlineExceeded,
			sentinel:  ports.ErrTimeout,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockLLMClient{err: tt.err}
			j, err := NewPairwise("judge", client, DefaultPairwiseConfig())
			require.NoError(t, err)

			_, err = j.Judge(context.Background(), testComparison())
			require.Error(t, err)

			var jerr *ports.JudgeError
			require.ErrorAs(t, err, &jerr)
			assert.Equal(t, tt.retryable, jerr.IsRetryable())
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestPairwisePromptSelection(t *testing.T) {
	client := &mockLLMClient{response: `{"winner": "A", "explanation": "ok"}`}
	j, err := NewPairwise("judge", client, DefaultPairwiseConfig())
	require.NoError(t, err)

	withRef := testComparison()
	_, err = j.Judge(context.Background(), withRef)
	require.NoError(t, err)
	assert.Contains(t, client.sawPrompt, "Reference Response")
	assert.Contains(t, client.sawOptions["system"], "reference")
	assert.Contains(t, client.sawPrompt, withRef.TextA)
	assert.Contains(t, client.sawPrompt, withRef.TextB)

	noRef := testComparison()
	noRef.Reference = ""
	_, err = j.Judge(context.Background(), noRef)
	require.NoError(t, err)
	assert.NotContains(t, client.sawPrompt, "Reference Response")
}

func TestPairwiseRequestOptions(t *testing.T) {
	client := &mockLLMClient{response: `{"winner": "A", "explanation": "ok"}`, model: "gpt-4o"}
	j, err := NewPairwise("judge", client, PairwiseConfig{Temperature: 0.0, MaxTokens: 512})
	require.NoError(t, err)

	_, err = j.Judge(context.Background(), testComparison())
	require.NoError(t, err)
	assert.Equal(t, 0.0, client.sawOptions["temperature"])
	assert.Equal(t, 512, client.sawOptions["max_tokens"])
	assert.NotNil(t, client.sawOptions["response_format"])
}

func TestClassifyTransportErrorPassthrough(t *testing.T) {
	plain := errors.New("something odd")
	assert.Equal(t, plain, classifyTransportError(plain))
}
