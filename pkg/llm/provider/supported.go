package provider

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/relay/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/relay/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	OpenRouter = "openrouter"
	OpenAI     = "openai"
	Anthropic  = "anthropic"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{OpenRouter, OpenAI, Anthropic}
}

// Options configures the provider constructed by New.
type Options struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// New creates a new Provider instance for the given provider type.
// Returns an error if the provider type is not recognized.
func New(providerType string, opts Options) (Provider, error) {
	switch providerType {
	case OpenRouter, OpenAI:
		return openai.New(openai.Config{
			Name:     providerType,
			APIKey:   opts.APIKey,
			Endpoint: opts.Endpoint,
			Timeout:  opts.Timeout,
			Logger:   opts.Logger,
		})
	case Anthropic:
		baseURL := opts.Endpoint
		// The OpenRouter default is never a valid Messages API base.
		if baseURL == openai.DefaultEndpoint {
			baseURL = ""
		}
		return anthropic.New(anthropic.Config{
			APIKey:  opts.APIKey,
			BaseURL: baseURL,
			Timeout: opts.Timeout,
			Logger:  opts.Logger,
		})
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", providerType, SupportedProviders())
	}
}
