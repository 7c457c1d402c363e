package metrics

import (
	"context"
	"sync"
	"time"
)

// MockMetricsService is a mock implementation of MetricsService for testing.
type MockMetricsService struct {
	mu              sync.RWMutex
	parses          []ParseRecord
	grammarFailures int
	validations     int
	invalid         int
}

// ParseRecord is one recorded interpreter call.
type ParseRecord struct {
	Locale   string
	Type     string
	Latency  time.Duration
	CacheHit bool
}

// NewMockMetricsService creates a new MockMetricsService.
func NewMockMetricsService() *MockMetricsService {
	return &MockMetricsService{}
}

// RecordParse records one interpreter call.
func (m *MockMetricsService) RecordParse(_ context.Context, locale, requestType string, latency time.Duration, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parses = append(m.parses, ParseRecord{Locale: locale, Type: requestType, Latency: latency, CacheHit: cacheHit})
}

// RecordGrammarFailure records a grammar failure.
func (m *MockMetricsService) RecordGrammarFailure(_ context.Context, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grammarFailures++
}

// RecordValidation records a validation pass.
func (m *MockMetricsService) RecordValidation(_ context.Context, valid bool, _, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validations++
	if !valid {
		m.invalid++
	}
}

// Parses returns a copy of the recorded parse calls.
func (m *MockMetricsService) Parses() []ParseRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ParseRecord(nil), m.parses...)
}

// GrammarFailures returns the number of recorded grammar failures.
func (m *MockMetricsService) GrammarFailures() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.grammarFailures
}

// Validations returns total and invalid validation counts.
func (m *MockMetricsService) Validations() (total, invalid int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.validations, m.invalid
}

// Clear clears all recorded data.
func (m *MockMetricsService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parses = nil
	m.grammarFailures = 0
	m.validations = 0
	m.invalid = 0
}

// Ensure MockMetricsService implements MetricsService
var _ MetricsService = (*MockMetricsService)(nil)
