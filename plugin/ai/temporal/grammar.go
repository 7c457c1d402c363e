package temporal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hrygo/quand/internal/errors"
	"github.com/hrygo/quand/plugin/ai/aitime"
)

// GrammarMatch is the first phrase a grammar resolved in an input.
type GrammarMatch struct {
	Found bool
	Date  time.Time // local midnight of the resolved day
	Text  string

	// Failure records a grammar error or panic that was absorbed.
	Failure error
}

// GrammarAdapter loads a locale grammar once and resolves phrases with it,
// absorbing grammar failures so they never abort a parse.
type GrammarAdapter struct {
	locale string
	loader aitime.Loader

	mu      sync.Mutex
	grammar aitime.Grammar
}

// NewGrammarAdapter creates an adapter. Nothing is loaded until Load.
func NewGrammarAdapter(locale string, loader aitime.Loader) *GrammarAdapter {
	return &GrammarAdapter{locale: locale, loader: loader}
}

// Load builds the grammar on first call. A successful load is kept for the
// lifetime of the adapter; a failed one is retried on the next call.
func (a *GrammarAdapter) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.grammar != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errors.GrammarUnavailable(err).WithContext("locale", a.locale)
	}
	g, err := a.loader(ctx)
	if err != nil {
		return errors.GrammarUnavailable(err).WithContext("locale", a.locale)
	}
	if g == nil {
		return errors.GrammarUnavailable(fmt.Errorf("loader returned no grammar")).WithContext("locale", a.locale)
	}
	a.grammar = g
	slog.Debug("date grammar loaded", slog.String("locale", a.locale))
	return nil
}

// Loaded reports whether Load has succeeded.
func (a *GrammarAdapter) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.grammar != nil
}

// Resolve returns the first phrase of text resolved against ref, preferring
// future readings. The only error is a precondition failure when Load has
// not succeeded yet; grammar failures come back in GrammarMatch.Failure.
func (a *GrammarAdapter) Resolve(text string, ref time.Time) (match GrammarMatch, err error) {
	a.mu.Lock()
	g := a.grammar
	a.mu.Unlock()
	if g == nil {
		return GrammarMatch{}, errors.Precondition("date grammar is not loaded").WithContext("locale", a.locale)
	}

	defer func() {
		if r := recover(); r != nil {
			match = GrammarMatch{Failure: fmt.Errorf("grammar panic: %v", r)}
		}
	}()

	results, perr := g.Parse(text, ref, aitime.ParseOptions{ForwardDate: true})
	if perr != nil {
		return GrammarMatch{Failure: perr}, nil
	}
	if len(results) == 0 {
		return GrammarMatch{}, nil
	}
	first := results[0]
	return GrammarMatch{
		Found: true,
		Date:  dayOf(first.Start.In(ref.Location())),
		Text:  first.Text,
	}, nil
}
