package temporal

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/quand/internal/errors"
	"github.com/hrygo/quand/plugin/ai/metrics"
)

// Service interprets temporal expressions.
type Service struct {
	registry       *Registry
	cache          ResultCache
	metricsService metrics.MetricsService
	logger         *slog.Logger
	now            func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache replaces the default five-minute result cache.
func WithCache(c ResultCache) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.MetricsService) ServiceOption {
	return func(s *Service) {
		s.metricsService = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock sets the source of the reference date.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service over the given locales.
func NewService(registry *Registry, opts ...ServiceOption) *Service {
	s := &Service{
		registry:       registry,
		metricsService: metrics.Nop{},
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = NewDefaultResultCache()
	}
	return s
}

// Locales lists the configured locale keys.
func (s *Service) Locales() []string {
	return s.registry.Keys()
}

// Parse interprets input against the current day. The only error is an
// unknown locale: grammar trouble degrades the result instead of failing it,
// and input without cues yields TypeUnknown.
func (s *Service) Parse(ctx context.Context, input, locale string) (*ParsedTemporalInput, error) {
	start := time.Now()
	loc, ok := s.registry.Get(locale)
	if !ok {
		return nil, errors.LocaleNotFound(locale)
	}

	key := CacheKey{Locale: loc.Key, Input: input}
	if cached, ok := s.cache.Get(key); ok {
		s.metricsService.RecordParse(ctx, loc.Key, string(cached.Type), time.Since(start), true)
		return cached, nil
	}

	now := s.now()
	today := dayOf(now)

	if err := loc.Grammar.Load(ctx); err != nil {
		s.logger.Warn("date grammar unavailable, continuing without it",
			slog.String("locale", loc.Key),
			slog.Any("error", err),
		)
		s.metricsService.RecordGrammarFailure(ctx, loc.Key)
	}

	var (
		sig Signals
		gm  GrammarMatch
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		sig = Detect(loc, input, today)
		return nil
	})
	if loc.Grammar.Loaded() {
		g.Go(func() error {
			m, err := loc.Grammar.Resolve(input, now)
			if err != nil {
				return err
			}
			gm = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Resolve only fails before a successful Load, which was checked above.
		return nil, err
	}
	if gm.Failure != nil {
		s.logger.Debug("date grammar failed on input",
			slog.String("locale", loc.Key),
			slog.String("input", input),
			slog.Any("error", gm.Failure),
		)
		s.metricsService.RecordGrammarFailure(ctx, loc.Key)
	}

	result := s.build(loc, &sig, gm, today)
	s.cache.Put(key, result)

	s.logger.Debug("temporal input parsed",
		slog.String("locale", loc.Key),
		slog.String("type", string(result.Type)),
		slog.Int("allowed", len(result.AllowedDates)),
		slog.Duration("latency", time.Since(start)),
	)
	s.metricsService.RecordParse(ctx, loc.Key, string(result.Type), time.Since(start), false)
	return result, nil
}

// ClearCache drops every memoized result.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

func (s *Service) build(loc *Locale, sig *Signals, gm GrammarMatch, today time.Time) *ParsedTemporalInput {
	targets, allowed := computeWindow(windowInput{
		sig:      sig,
		grammar:  gm,
		nextWeek: gm.Found && loc.IsNextWeek(gm.Text),
		today:    today,
	})
	t := classify(loc, sig, gm)
	dates, slots := estimate(t, sig)

	return &ParsedTemporalInput{
		Type:                  t,
		TargetDates:           targets,
		AllowedDates:          allowed,
		DayOfWeek:             sig.Weekdays,
		Month:                 sig.Month,
		Period:                sig.Period,
		RelativeDays:          sig.RelativeDays,
		RelativeWeeks:         sig.RelativeWeeks,
		WeekOfDay:             sig.WeekOfDay,
		DateNumeric:           sig.NumericDates,
		IsMealContext:         sig.Meal,
		IsProfessionalContext: sig.Professional,
		ExpectedDatesCount:    dates,
		ExpectedSlotsCount:    slots,
		GrammarText:           strings.TrimSpace(gm.Text),
		DetectedKeywords:      sig.Keywords,
		Locale:                loc.Key,
		ReferenceDate:         formatDate(today),
	}
}
