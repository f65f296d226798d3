// Package provider binds chat completion backends to the relay's reasoning
// step. Each backend translates an llm.ChatRequest into its own wire format.
package provider

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/papercomputeco/relay/pkg/llm"
)

// ErrEmptyCompletion is returned when the upstream answered successfully but
// without any assistant text.
var ErrEmptyCompletion = errors.New("completion contained no text")

// Provider is a chat completion backend.
type Provider interface {
	// Name returns the canonical provider name (e.g., "openrouter", "anthropic")
	Name() string

	// Complete sends a single non-streaming completion request.
	// Failures reaching the upstream or non-success statuses are returned
	// as *llm.UpstreamError.
	Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

// Params are the sampling parameters applied to every request.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client binds a Provider to the current Params. Params may be swapped at
// runtime (config reload) while requests are in flight.
type Client struct {
	provider Provider
	params   atomic.Pointer[Params]
}

// NewClient creates a Client for p with the initial params.
func NewClient(p Provider, params Params) *Client {
	c := &Client{provider: p}
	c.SetParams(params)
	return c
}

// Name returns the bound provider's name.
func (c *Client) Name() string {
	return c.provider.Name()
}

// Params returns a copy of the current params.
func (c *Client) Params() Params {
	return *c.params.Load()
}

// SetParams replaces the params used by subsequent requests.
func (c *Client) SetParams(p Params) {
	c.params.Store(&p)
}

// Chat sends systemPrompt and a single user message and returns the full
// response. A response without assistant text is an upstream error.
func (c *Client) Chat(ctx context.Context, systemPrompt, userPayload string) (*llm.ChatResponse, error) {
	p := c.Params()
	resp, err := c.provider.Complete(ctx, &llm.ChatRequest{
		Model:       p.Model,
		System:      systemPrompt,
		Messages:    []llm.Message{llm.NewTextMessage("user", userPayload)},
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})
	if err != nil {
		return nil, err
	}

	if resp.Message.GetText() == "" {
		return nil, &llm.UpstreamError{Provider: c.provider.Name(), Err: ErrEmptyCompletion}
	}
	return resp, nil
}

// Complete is Chat returning only the assistant text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	resp, err := c.Chat(ctx, systemPrompt, userPayload)
	if err != nil {
		return "", err
	}
	return resp.Message.GetText(), nil
}
