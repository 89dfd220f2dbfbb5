package llm

import (
	"context"
	"sync"
)

// MockClient returns a fixed answer and records every prompt. It never calls the network.
type MockClient struct {
	answer string
	err    error

	mu      sync.Mutex
	prompts []string
}

// NewMockClient returns a client that always answers with answer ("mock answer" when empty).
func NewMockClient(answer string) *MockClient {
	if answer == "" {
		answer = "mock answer"
	}
	return &MockClient{answer: answer}
}

// NewFailingMockClient returns a client whose Generate always fails with err.
func NewFailingMockClient(err error) *MockClient {
	return &MockClient{err: err}
}

// Generate records prompt and returns the configured answer or error.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

// Prompts returns a copy of the recorded prompts.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
