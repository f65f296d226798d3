package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/relay/pkg/llm"
)

// MockProvider is a chat completion provider with a canned reply.
type MockProvider struct {
	mu sync.Mutex

	// Reply is the assistant text returned on success.
	Reply string

	// Usage is attached to successful responses.
	Usage *llm.Usage

	// Err causes Complete to fail.
	Err error

	// Requests accumulates every request passed to Complete.
	Requests []*llm.ChatRequest
}

func NewMockProvider(reply string) *MockProvider {
	return &MockProvider{Reply: reply}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Complete(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return &llm.ChatResponse{
		Model:      req.Model,
		Message:    llm.NewTextMessage("assistant", m.Reply),
		StopReason: "stop",
		Usage:      m.Usage,
	}, nil
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Requests) == 0 {
		return nil
	}
	return m.Requests[len(m.Requests)-1]
}
