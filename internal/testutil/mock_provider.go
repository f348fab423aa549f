// Package testutil provides test doubles for the engine's external
// collaborators.
package testutil

import (
	"context"
	"sync"

	"github.com/goksnair/careerframe/textgen"
)

// MockProvider is a configurable textgen.Provider for tests.
type MockProvider struct {
	mu sync.Mutex

	// Reply returned when OnGenerate is nil.
	Reply *textgen.Reply

	// Err is returned instead of a reply when set.
	Err error

	// OnGenerate overrides default behavior entirely.
	OnGenerate func(ctx context.Context, req textgen.Request) (*textgen.Reply, error)

	// Calls records every request in order.
	Calls []textgen.Request
}

// NewMockProvider creates a MockProvider with a canned reply.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Reply: &textgen.Reply{
			Text:               "mock coaching reply",
			SuggestedFollowUps: []string{"mock follow-up"},
		},
	}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, req textgen.Request) (*textgen.Reply, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	handler := m.OnGenerate
	reply := m.Reply
	err := m.Err
	m.mu.Unlock()

	if handler != nil {
		return handler(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	out := *reply
	return &out, nil
}

// CallCount returns the number of Generate invocations so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
