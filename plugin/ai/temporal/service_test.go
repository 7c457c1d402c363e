package temporal

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/quand/internal/errors"
	"github.com/hrygo/quand/plugin/ai/aitime"
	"github.com/hrygo/quand/plugin/ai/cache"
	"github.com/hrygo/quand/plugin/ai/metrics"
)

// Wednesday 2026-10-21 10:00 in Paris.
func fixedNow(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	return time.Date(2026, 10, 21, 10, 0, 0, 0, loc)
}

func fixedToday(t *testing.T) time.Time {
	t.Helper()
	return dayOf(fixedNow(t))
}

// frenchLocale compiles the embedded French locale with loader, or the
// real grammar when loader is nil.
func frenchLocale(t *testing.T, loader aitime.Loader) *Locale {
	t.Helper()
	if loader == nil {
		loader = aitime.LoadFrench
	}
	data, err := localeFS.ReadFile("locales/fr.yaml")
	require.NoError(t, err)
	l, err := ParseLocale(data, map[string]aitime.Loader{"french": loader})
	require.NoError(t, err)
	return l
}

func newTestService(t *testing.T, loader aitime.Loader, opts ...ServiceOption) (*Service, *metrics.MockMetricsService) {
	t.Helper()
	now := fixedNow(t)
	m := metrics.NewMockMetricsService()
	opts = append([]ServiceOption{
		WithClock(func() time.Time { return now }),
		WithMetrics(m),
	}, opts...)
	return NewService(NewRegistry(frenchLocale(t, loader)), opts...), m
}

func TestService_Scenarios(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	t.Run("réunion lundi", func(t *testing.T) {
		got, err := svc.Parse(ctx, "réunion lundi", "fr")
		require.NoError(t, err)
		assert.Equal(t, TypeDayOfWeek, got.Type)
		assert.Equal(t, []time.Weekday{time.Monday}, got.DayOfWeek)
		require.Len(t, got.TargetDates, 1)
		target, err := time.Parse(DateLayout, got.TargetDates[0])
		require.NoError(t, err)
		assert.Equal(t, time.Monday, target.Weekday())
		assert.True(t, got.IsProfessionalContext)
		assert.Equal(t, Exact(1), got.ExpectedDatesCount)
	})

	t.Run("dans 5 jours", func(t *testing.T) {
		got, err := svc.Parse(ctx, "dans 5 jours", "fr")
		require.NoError(t, err)
		assert.Equal(t, TypeRelative, got.Type)
		require.NotNil(t, got.RelativeDays)
		assert.Equal(t, 5, *got.RelativeDays)
		assert.Equal(t, "3-5", got.ExpectedDatesCount.String())
		require.NotEmpty(t, got.AllowedDates)
		for _, d := range got.AllowedDates {
			assert.GreaterOrEqual(t, d, "2026-10-23")
			assert.LessOrEqual(t, d, "2026-10-29")
		}
	})

	t.Run("déjeuner demain midi", func(t *testing.T) {
		got, err := svc.Parse(ctx, "déjeuner demain midi", "fr")
		require.NoError(t, err)
		assert.True(t, got.IsMealContext)
		assert.Equal(t, TypeSpecificDate, got.Type)
		assert.Equal(t, Exact(1), got.ExpectedDatesCount)
		assert.Equal(t, "2-3", got.ExpectedSlotsCount.String())
		assert.Equal(t, []string{"2026-10-22"}, got.TargetDates)
		assert.Equal(t, "demain", got.GrammarText)
	})

	t.Run("escape game fin mars", func(t *testing.T) {
		got, err := svc.Parse(ctx, "escape game fin mars", "fr")
		require.NoError(t, err)
		assert.Equal(t, TypeMonth, got.Type)
		require.NotNil(t, got.Month)
		assert.Equal(t, time.March, *got.Month)
		assert.Equal(t, PeriodEnd, got.Period)
		require.NotEmpty(t, got.AllowedDates)
		for _, s := range got.AllowedDates {
			d, err := time.Parse(DateLayout, s)
			require.NoError(t, err)
			assert.Equal(t, time.March, d.Month())
			assert.GreaterOrEqual(t, d.Day(), 15)
		}
	})

	for _, input := range []string{"", "bonjour à tous"} {
		t.Run("unknown "+input, func(t *testing.T) {
			got, err := svc.Parse(ctx, input, "fr")
			require.NoError(t, err)
			assert.Equal(t, TypeUnknown, got.Type)
			assert.Equal(t, []string{}, got.AllowedDates)
			assert.Equal(t, []string{}, got.TargetDates)
		})
	}
}

func TestService_DisjunctionCardinality(t *testing.T) {
	svc, _ := newTestService(t, nil)

	got, err := svc.Parse(context.Background(), "samedi 23 ou dimanche 24", "fr")
	require.NoError(t, err)
	assert.Equal(t, TypeSpecificDate, got.Type)
	assert.Equal(t, []string{"2026-10-24", "2026-10-25"}, got.TargetDates)
	assert.Equal(t, Exact(2), got.ExpectedDatesCount)
}

func TestService_ProfessionalExcludesWeekends(t *testing.T) {
	svc, _ := newTestService(t, nil)

	got, err := svc.Parse(context.Background(), "réunion équipe semaine prochaine", "fr")
	require.NoError(t, err)
	assert.Equal(t, TypePeriod, got.Type)
	assert.Equal(t, []string{"2026-10-26", "2026-10-27", "2026-10-28", "2026-10-29", "2026-10-30"}, got.AllowedDates)
	for _, s := range got.AllowedDates {
		d, err := time.Parse(DateLayout, s)
		require.NoError(t, err)
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
}

func TestService_Properties(t *testing.T) {
	svc, _ := newTestService(t, nil)
	v := NewValidator(func() time.Time { return fixedNow(t) })
	ctx := context.Background()

	inputs := []string{
		"réunion lundi",
		"vendredi ou samedi",
		"lundi dans 2 semaines",
		"dimanche matin en décembre",
		"samedi 23 ou dimanche 24",
		"dans 5 jours",
		"dans deux semaines",
		"semaine du 12",
		"le 23 mars",
		"début avril",
		"fin du mois",
		"ce week-end",
		"hier",
		"réunion client mardi prochain",
		"apéro jeudi ou vendredi soir",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := svc.Parse(ctx, input, "fr")
			require.NoError(t, err)
			corrected := v.AutoCorrect(got)

			for _, s := range corrected.AllowedDates {
				assert.GreaterOrEqual(t, s, "2026-10-21", "no past date survives correction")
				if len(corrected.DayOfWeek) > 0 {
					d, err := time.Parse(DateLayout, s)
					require.NoError(t, err)
					assert.Contains(t, corrected.DayOfWeek, d.Weekday())
				}
			}
			assert.IsIncreasing(t, got.AllowedDates)
		})
	}
}

func TestService_Determinism(t *testing.T) {
	svc, m := newTestService(t, nil)
	ctx := context.Background()

	first, err := svc.Parse(ctx, "lundi dans 2 semaines", "fr")
	require.NoError(t, err)
	second, err := svc.Parse(ctx, "lundi dans 2 semaines", "fr")
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	parses := m.Parses()
	require.Len(t, parses, 2)
	assert.False(t, parses[0].CacheHit)
	assert.True(t, parses[1].CacheHit)
	assert.Equal(t, string(TypeDayOfWeek), parses[1].Type)
}

func TestService_CachedResultIsolation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	first, err := svc.Parse(ctx, "vendredi ou samedi", "fr")
	require.NoError(t, err)
	first.AllowedDates[0] = "1999-01-01"
	first.DayOfWeek[0] = time.Monday

	second, err := svc.Parse(ctx, "vendredi ou samedi", "fr")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-23", "2026-10-24"}, second.AllowedDates)
	assert.Equal(t, []time.Weekday{time.Friday, time.Saturday}, second.DayOfWeek)
}

func TestService_CacheExpiryAndClear(t *testing.T) {
	clock := fixedNow(t)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(d)
	}
	store := cache.NewLRUCache[*ParsedTemporalInput](cache.DefaultCapacity, cache.DefaultTTL).WithClock(now)
	svc, m := newTestService(t, nil, WithCache(NewResultCache(store)))
	ctx := context.Background()

	_, err := svc.Parse(ctx, "demain", "fr")
	require.NoError(t, err)
	advance(5 * time.Minute)
	_, err = svc.Parse(ctx, "demain", "fr")
	require.NoError(t, err)
	advance(time.Second)
	_, err = svc.Parse(ctx, "demain", "fr")
	require.NoError(t, err)

	svc.ClearCache()
	_, err = svc.Parse(ctx, "demain", "fr")
	require.NoError(t, err)

	var hits []bool
	for _, p := range m.Parses() {
		hits = append(hits, p.CacheHit)
	}
	assert.Equal(t, []bool{false, true, false, false}, hits)
}

func TestService_Locales(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Parse(ctx, "demain", "de")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLocaleNotFound))

	got, err := svc.Parse(ctx, "demain", "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "fr", got.Locale)
	assert.Equal(t, "2026-10-21", got.ReferenceDate)

	got, err = svc.Parse(ctx, "demain", "")
	require.NoError(t, err)
	assert.Equal(t, "fr", got.Locale)
	assert.Equal(t, []string{"fr"}, svc.Locales())
}

func TestService_GrammarLoadFailure(t *testing.T) {
	calls := 0
	loader := func(context.Context) (aitime.Grammar, error) {
		calls++
		if calls == 1 {
			return nil, stderrors.New("grammar data missing")
		}
		return aitime.NewFrenchGrammar(), nil
	}
	svc, m := newTestService(t, loader)
	ctx := context.Background()

	got, err := svc.Parse(ctx, "réunion lundi", "fr")
	require.NoError(t, err)
	assert.Equal(t, TypeDayOfWeek, got.Type)
	assert.Equal(t, []string{"2026-10-26"}, got.TargetDates)
	assert.Empty(t, got.GrammarText)
	assert.Equal(t, 1, m.GrammarFailures())

	svc.ClearCache()
	got, err = svc.Parse(ctx, "réunion lundi", "fr")
	require.NoError(t, err)
	assert.Equal(t, "lundi", got.GrammarText)
	assert.Equal(t, 2, calls)

	got, err = svc.Parse(ctx, "demain", "fr")
	require.NoError(t, err)
	assert.Equal(t, TypeSpecificDate, got.Type)
	assert.Equal(t, 2, calls, "grammar is loaded once")
}

func TestService_GrammarPanicIsAbsorbed(t *testing.T) {
	mock := &aitime.MockGrammar{PanicWith: "boom"}
	svc, m := newTestService(t, mock.Loader())

	got, err := svc.Parse(context.Background(), "dans 5 jours", "fr")
	require.NoError(t, err)
	assert.Equal(t, TypeRelative, got.Type)
	assert.Len(t, got.AllowedDates, 7)
	assert.Equal(t, 1, m.GrammarFailures())
	assert.Equal(t, 1, mock.Calls())
}

func TestService_ConcurrentParse(t *testing.T) {
	svc, m := newTestService(t, nil)
	ctx := context.Background()
	inputs := []string{"demain", "réunion lundi", "dans 5 jours", "fin mars", "samedi 23 ou dimanche 24"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(input string) {
			defer wg.Done()
			_, err := svc.Parse(ctx, input, "fr")
			assert.NoError(t, err)
		}(inputs[i%len(inputs)])
	}
	wg.Wait()
	assert.Len(t, m.Parses(), 50)
}

func TestService_GrammarAnchorWithRelativeDays(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	t.Run("dans 2 jours", func(t *testing.T) {
		got, err := svc.Parse(ctx, "dans 2 jours", "fr")
		require.NoError(t, err)
		assert.Equal(t, TypeRelative, got.Type)
		assert.Equal(t, []string{"2026-10-23"}, got.TargetDates)
		assert.Equal(t, []string{
			"2026-10-21", "2026-10-22", "2026-10-23", "2026-10-24", "2026-10-25", "2026-10-26",
		}, got.AllowedDates)
	})

	t.Run("lundi dans 5 jours", func(t *testing.T) {
		got, err := svc.Parse(ctx, "lundi dans 5 jours", "fr")
		require.NoError(t, err)
		assert.Equal(t, TypeDayOfWeek, got.Type)
		assert.Equal(t, []time.Weekday{time.Monday}, got.DayOfWeek)
		assert.Equal(t, []string{"2026-10-26"}, got.TargetDates)
		assert.Equal(t, []string{"2026-10-26"}, got.AllowedDates)
	})
}

func TestService_DisjunctionValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	v := NewValidator(func() time.Time { return fixedNow(t) })

	// The weekday pins day 23 onto Saturday the 24th, so day 23 itself is
	// never allowed and auto-correction keeps only the dates on a named day.
	got, err := svc.Parse(context.Background(), "samedi 23 ou dimanche 24", "fr")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-24", "2026-10-25"}, got.AllowedDates)

	res := v.Validate(got)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeNumericDayMissing, res.Errors[0].Code)
	assert.Contains(t, res.Errors[0].Message, "23")

	corrected := v.AutoCorrect(got)
	assert.Equal(t, []string{"2026-10-24"}, corrected.AllowedDates)
	assert.Equal(t, got.TargetDates, corrected.TargetDates)
}

func TestService_WeekdayDisjunctionBeyondWindow(t *testing.T) {
	svc, _ := newTestService(t, nil)
	v := NewValidator(func() time.Time { return fixedNow(t) })

	// The ±3 window around Thursday the 22nd ends before the next Monday.
	got, err := svc.Parse(context.Background(), "jeudi ou lundi", "fr")
	require.NoError(t, err)
	assert.Equal(t, TypeDayOfWeek, got.Type)
	assert.Equal(t, []string{"2026-10-22"}, got.AllowedDates)
	assert.Equal(t, Exact(2), got.ExpectedDatesCount)

	res := v.Validate(got)
	assert.True(t, res.IsValid)
	codes := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, CodeExpectedCountExceeds)
}
