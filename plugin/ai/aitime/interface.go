// Package aitime provides the date-phrase grammar consumed by the temporal interpreter.
// A grammar resolves free-form relative phrases ("demain", "la semaine prochaine")
// into concrete dates; it knows nothing about windows, polls or expectations.
package aitime

import (
	"context"
	"time"
)

// Grammar defines the date-phrase grammar interface.
type Grammar interface {
	// Parse finds every date phrase in text and resolves it against ref.
	// Results are ordered by their position in text and never overlap.
	Parse(text string, ref time.Time, opts ParseOptions) ([]ParsedResult, error)
}

// ParseOptions tunes how ambiguous phrases are resolved.
type ParseOptions struct {
	// ForwardDate resolves ambiguous phrases ("lundi", "23 mars") to the next
	// occurrence instead of the current week/year.
	ForwardDate bool
}

// ParsedResult is a single resolved phrase.
type ParsedResult struct {
	Text  string    `json:"text"`
	Index int       `json:"index"`
	Start time.Time `json:"start"`
}

// Loader builds a grammar. Loading may be expensive and is expected to run once.
type Loader func(ctx context.Context) (Grammar, error)
