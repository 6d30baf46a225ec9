package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted backend for tests. Responses are consumed in
// order; once exhausted the last entry repeats. An entry with a non-nil
// error returns that error.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []MockCall
	model     string
}

// MockResponse is one scripted reply.
type MockResponse struct {
	Content string
	Err     error
}

// MockCall records the arguments of one GenerateResponse invocation.
type MockCall struct {
	Prompt        string
	SystemMessage string
	Temperature   float64
}

// NewMockClient creates a mock that replays the given responses.
func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses, model: "mock-model"}
}

// GenerateResponse returns the next scripted response.
func (m *MockClient) GenerateResponse(_ context.Context, prompt, systemMessage string, temperature float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{
		Prompt:        prompt,
		SystemMessage: systemMessage,
		Temperature:   temperature,
	})

	if len(m.responses) == 0 {
		return "", nil
	}

	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	resp := m.responses[idx]
	return resp.Content, resp.Err
}

// Model returns the mock model name.
func (m *MockClient) Model() string { return m.model }

// Calls returns a copy of the recorded invocations.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times GenerateResponse was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
