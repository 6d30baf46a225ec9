package datasource

import (
	"context"
	"sync"

	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

// MockConnector is a scripted connector for tests. It records every
// executed query and replays the configured result.
type MockConnector struct {
	mu       sync.Mutex
	Result   *models.ExecutionResult
	Err      error
	Schema   string
	executed []string
}

// NewMockConnector creates a mock returning the given result.
func NewMockConnector(result *models.ExecutionResult) *MockConnector {
	return &MockConnector{Result: result}
}

// Execute records the query and returns the scripted result.
func (m *MockConnector) Execute(_ context.Context, query string) (*models.ExecutionResult, error) {
	m.mu.Lock()
	m.executed = append(m.executed, query)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &models.ExecutionResult{Columns: []string{}, Rows: [][]any{}}, nil
}

// TestConnection always succeeds unless Err is set.
func (m *MockConnector) TestConnection(context.Context) error { return m.Err }

// SchemaDescription returns the scripted schema text.
func (m *MockConnector) SchemaDescription(context.Context) (string, error) {
	return m.Schema, nil
}

// Dialect returns "mock".
func (m *MockConnector) Dialect() string { return "mock" }

// Close is a no-op.
func (m *MockConnector) Close() error { return nil }

// Executed returns a copy of the queries run so far.
func (m *MockConnector) Executed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.executed))
	copy(out, m.executed)
	return out
}

// ExecutedCount returns how many queries were run.
func (m *MockConnector) ExecutedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.executed)
}

var _ Connector = (*MockConnector)(nil)
