// Package llm provides the completion transport used by LLM-backed judges.
// It abstracts multiple providers (OpenAI, Anthropic, Google) behind a
// common interface and layers cross-cutting concerns such as rate limiting,
// timeouts, and metrics through a middleware chain.
//
// Basic usage:
//
//	client, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o",
//	})
//	response, err := client.Complete(ctx, prompt, nil)
//
// With middleware:
//
//	client, err := llm.NewClient("anthropic", llm.ClientConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:  "claude-sonnet-4-20250514",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(4, 8),
//	        llm.TimeoutMiddleware(60 * time.Second),
//	    },
//	})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/go-arena/internal/ports"
)

// CoreLLM is the minimal surface a provider must implement. The middleware
// system wraps any conforming implementation.
type CoreLLM interface {
	// DoRequest sends a prompt to the provider and returns the generated
	// text. The opts map carries provider-tunable parameters such as
	// temperature or max tokens.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error)

	// GetModel returns the currently configured model name.
	GetModel() string
}

// Middleware wraps a CoreLLM to add cross-cutting behavior. Middleware are
// applied so that the first entry in the configuration is the outermost
// wrapper.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds the settings for creating a transport client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model selects the provider model used for judging.
	Model string

	// BaseURL overrides the provider's default endpoint. Leave empty to
	// use the default.
	BaseURL string

	// Timeout bounds individual requests. Zero means no client-side
	// timeout.
	Timeout time.Duration

	// Middleware is applied around the provider in the order given.
	Middleware []Middleware
}

// ProviderFactory creates a CoreLLM from configuration. Providers register
// themselves so that NewClient can construct them by name.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under the given name.
// Registration from init makes providers available without explicit wiring.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}

var _ ports.LLMClient = (*Client)(nil)

// Client implements ports.LLMClient by delegating to a middleware-wrapped
// provider.
type Client struct {
	core CoreLLM
}

// NewClient creates a transport client for the named provider, assembling
// the middleware chain from the configuration.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if err := ValidateClientConfig(config); err != nil {
		return nil, err
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", providerType, err)
	}

	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// Complete sends a prompt through the middleware chain to the provider.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// GetModel returns the model name of the underlying provider.
func (c *Client) GetModel() string { return c.core.GetModel() }
