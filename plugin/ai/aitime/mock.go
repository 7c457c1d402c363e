package aitime

import (
	"context"
	"sync"
	"time"
)

// MockGrammar is a mock implementation of Grammar for testing.
type MockGrammar struct {
	mu sync.Mutex

	// Results are returned by every Parse call.
	Results []ParsedResult
	// Err, when set, is returned instead of Results.
	Err error
	// PanicWith, when non-nil, makes Parse panic with this value.
	PanicWith any

	calls int
}

// NewMockGrammar creates a new MockGrammar returning results.
func NewMockGrammar(results ...ParsedResult) *MockGrammar {
	return &MockGrammar{Results: results}
}

// Parse returns the programmed results.
func (m *MockGrammar) Parse(_ string, _ time.Time, _ ParseOptions) ([]ParsedResult, error) {
	m.mu.Lock()
	m.calls++
	panicWith, err := m.PanicWith, m.Err
	results := append([]ParsedResult(nil), m.Results...)
	m.mu.Unlock()

	if panicWith != nil {
		panic(panicWith)
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Calls returns how many times Parse was invoked.
func (m *MockGrammar) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Loader returns a Loader that yields m.
func (m *MockGrammar) Loader() Loader {
	return func(context.Context) (Grammar, error) {
		return m, nil
	}
}

// Ensure implementations satisfy Grammar
var (
	_ Grammar = (*MockGrammar)(nil)
	_ Grammar = (*FrenchGrammar)(nil)
)
