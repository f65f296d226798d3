// Package openai implements a chat completion provider for OpenAI-compatible
// APIs. OpenRouter is the default endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/utils"
)

const (
	// DefaultEndpoint is OpenRouter's chat completions URL.
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

	// DefaultName is the provider name reported when Config.Name is empty.
	DefaultName = "openrouter"

	// maxErrorBody bounds how much of a failed response is kept.
	maxErrorBody = 8192
)

// Config holds configuration for the chat completions provider.
type Config struct {
	APIKey string

	// Endpoint defaults to DefaultEndpoint if empty.
	Endpoint string

	// Name is reported by Name() and in errors. Defaults to DefaultName.
	Name string

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration

	Logger *slog.Logger
}

// provider implements a chat completions client.
type provider struct {
	name       string
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a chat completions provider.
func New(cfg Config) (*provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}

	p := &provider{
		name:       cfg.Name,
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
	}
	if p.name == "" {
		p.name = DefaultName
	}
	if p.endpoint == "" {
		p.endpoint = DefaultEndpoint
	}
	if p.httpClient.Timeout <= 0 {
		p.httpClient.Timeout = 30 * time.Second
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p, nil
}

func (p *provider) Name() string {
	return p.name
}

func (p *provider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	body, err := json.Marshal(toOpenAIRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &llm.UpstreamError{Provider: p.name, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", utils.UserAgent())
	httpReq.Header.Set("X-Title", "relay")

	start := time.Now()
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &llm.UpstreamError{Provider: p.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &llm.UpstreamError{Provider: p.name, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.UpstreamError{Provider: p.name, Err: err}
	}

	var parsed openaiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &llm.UpstreamError{Provider: p.name, Body: string(raw), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &llm.UpstreamError{Provider: p.name, Body: string(raw), Err: errors.New("response contained no choices")}
	}

	choice := parsed.Choices[0]
	result := &llm.ChatResponse{
		Model:       parsed.Model,
		Message:     llm.NewTextMessage(choice.Message.Role, choice.Message.Content),
		StopReason:  choice.FinishReason,
		RawResponse: raw,
	}
	if parsed.Created > 0 {
		result.CreatedAt = time.Unix(parsed.Created, 0)
	}
	if parsed.Usage != nil {
		result.Usage = &llm.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}

	p.logger.Debug("completion received",
		"provider", p.name,
		"model", result.Model,
		"stop_reason", result.StopReason,
		"duration", time.Since(start),
	)

	return result, nil
}

func toOpenAIRequest(req *llm.ChatRequest) openaiRequest {
	messages := make([]openaiMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, openaiMessage{Role: m.Role, Content: m.GetText()})
	}

	return openaiRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
}
