package testutils

import (
	"context"
	"sync"
)

// SentMessage is one message captured by MockSender.
type SentMessage struct {
	ChatID int64
	Text   string
}

// MockSender captures outbound chat messages.
type MockSender struct {
	mu   sync.Mutex
	sent []SentMessage

	// Err causes SendMessage to fail after capturing the message.
	Err error
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) SendMessage(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, SentMessage{ChatID: chatID, Text: text})
	return m.Err
}

// Sent returns a snapshot of the captured messages.
func (m *MockSender) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}
