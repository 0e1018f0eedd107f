package llm

import "fmt"

// Valid ranges for common request parameters, shared across providers.
const (
	// MinTemperature and MaxTemperature bound the sampling temperature.
	// The upper bound is 2.0 to accommodate providers like Gemini.
	MinTemperature = 0.0
	MaxTemperature = 2.0

	// DefaultMaxTokens bounds judge reasoning length when the caller does
	// not specify one.
	DefaultMaxTokens = 1024
)

// RequestOptions is the standardized parameter set for one completion
// request, extracted from the generic options map.
type RequestOptions struct {
	// MaxTokens limits the number of generated tokens.
	MaxTokens int
	// Model selects the model for this request, defaulting to the
	// provider's configured model.
	Model string
	// Temperature controls sampling randomness; nil uses the provider
	// default.
	Temperature *float64
	// System carries the system prompt, if any.
	System string
	// Extra holds provider-specific options outside the standard set.
	Extra map[string]any
}

// ParseRequestOptions extracts standardized parameters from an options map,
// applying validated defaults for missing or out-of-range entries.
// Unrecognized keys are collected into Extra.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		MaxTokens: extractInt(opts, "max_tokens", DefaultMaxTokens, func(v int) bool { return v > 0 }),
		Model:     extractString(opts, "model", defaultModel),
		System:    extractString(opts, "system", ""),
		Extra:     make(map[string]any),
	}

	if temp, ok := extractFloat64(opts, "temperature"); ok && temp >= MinTemperature && temp <= MaxTemperature {
		options.Temperature = &temp
	}

	for k, v := range opts {
		switch k {
		case "max_tokens", "model", "system", "temperature":
			// Standard options, already handled.
		default:
			options.Extra[k] = v
		}
	}

	return options
}

func extractInt(opts map[string]any, key string, def int, valid func(int) bool) int {
	if opts == nil {
		return def
	}
	if v, ok := opts[key].(int); ok && (valid == nil || valid(v)) {
		return v
	}
	return def
}

func extractString(opts map[string]any, key, def string) string {
	if opts == nil {
		return def
	}
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return def
}

func extractFloat64(opts map[string]any, key string) (float64, bool) {
	if opts == nil {
		return 0, false
	}
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// clamp restricts v to the closed interval [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ValidateClientConfig checks the minimum settings required to build a
// provider. An empty model is allowed; providers fall back to their
// default model.
func ValidateClientConfig(config ClientConfig) error {
	if config.APIKey == "" {
		return ErrEmptyAPIKey
	}
	if config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
