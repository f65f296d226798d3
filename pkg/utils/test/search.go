package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/relay/pkg/search"
)

// MockSearcher returns canned results and records queries.
type MockSearcher struct {
	mu sync.Mutex

	// Results is returned by Search when Err is nil.
	Results []search.Result

	// Err causes Search to fail.
	Err error

	// Queries accumulates every query passed to Search.
	Queries []string
}

func NewMockSearcher(results ...search.Result) *MockSearcher {
	return &MockSearcher{Results: results}
}

func (m *MockSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results, nil
}
