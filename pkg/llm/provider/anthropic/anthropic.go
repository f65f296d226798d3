// Package anthropic implements a chat completion provider for Anthropic's
// Messages API using the official SDK.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/utils"
)

const (
	// Name is the provider name.
	Name = "anthropic"

	// DefaultMaxTokens is used when a request leaves MaxTokens unset; the
	// Messages API requires it.
	DefaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic provider.
type Config struct {
	APIKey string

	// BaseURL overrides the SDK's default API base when set.
	BaseURL string

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration

	Logger *slog.Logger
}

// provider implements chat completions over the Messages API.
type provider struct {
	client sdk.Client
	logger *slog.Logger
}

// New creates an Anthropic provider. The SDK's automatic retries are
// disabled: every upstream call is a single attempt.
func New(cfg Config) (*provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithHeader("User-Agent", utils.UserAgent()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &provider{
		client: sdk.NewClient(opts...),
		logger: logger,
	}, nil
}

func (p *provider) Name() string {
	return Name
}

func (p *provider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(req.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: sdk.Float(req.Temperature),
		Messages:    toMessageParams(req.Messages),
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, toUpstreamError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	result := &llm.ChatResponse{
		Model:      string(msg.Model),
		Message:    llm.NewTextMessage("assistant", text.String()),
		StopReason: string(msg.StopReason),
		Usage: &llm.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
	if raw := msg.RawJSON(); raw != "" {
		result.RawResponse = []byte(raw)
	}

	p.logger.Debug("completion received",
		"provider", Name,
		"model", result.Model,
		"stop_reason", result.StopReason,
		"duration", time.Since(start),
	)

	return result, nil
}

func toMessageParams(messages []llm.Message) []sdk.MessageParam {
	params := make([]sdk.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := sdk.NewTextBlock(m.GetText())
		if m.Role == "assistant" {
			params = append(params, sdk.NewAssistantMessage(block))
			continue
		}
		params = append(params, sdk.NewUserMessage(block))
	}
	return params
}

func toUpstreamError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return &llm.UpstreamError{
			Provider:   Name,
			StatusCode: apiErr.StatusCode,
			Body:       apiErr.RawJSON(),
			Err:        err,
		}
	}
	return &llm.UpstreamError{Provider: Name, Err: fmt.Errorf("messages request: %w", err)}
}
