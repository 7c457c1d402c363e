// Package metrics provides instrumentation for the temporal interpreter.
package metrics

import (
	"context"
	"time"
)

// MetricsService defines the interpreter metrics interface.
type MetricsService interface {
	// RecordParse records one interpreter call.
	RecordParse(ctx context.Context, locale, requestType string, latency time.Duration, cacheHit bool)

	// RecordGrammarFailure records a grammar error, panic or failed load.
	RecordGrammarFailure(ctx context.Context, locale string)

	// RecordValidation records the outcome of a validation pass.
	RecordValidation(ctx context.Context, valid bool, errorCount, warningCount int)
}

// Nop is a MetricsService that records nothing.
type Nop struct{}

func (Nop) RecordParse(context.Context, string, string, time.Duration, bool) {}
func (Nop) RecordGrammarFailure(context.Context, string)                    {}
func (Nop) RecordValidation(context.Context, bool, int, int)                 {}

var _ MetricsService = Nop{}
