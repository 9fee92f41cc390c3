package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/market-basket/internal/model"
)

// MockWriter is a service.ReportWriter that records calls for tests.
type MockWriter struct {
	WriteFunc func(ctx context.Context, result *model.RunResult) error
	Calls     []*model.RunResult
	mu        sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteRun records result and returns WriteFunc's error, if set.
func (m *MockWriter) WriteRun(ctx context.Context, result *model.RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, result)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, result)
	}
	return nil
}

// CallCount returns the number of WriteRun calls so far.
func (m *MockWriter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// SetWriteError configures the mock to fail every call with err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(context.Context, *model.RunResult) error {
		return err
	}
}
