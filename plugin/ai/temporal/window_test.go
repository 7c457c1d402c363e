package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveNumeric(t *testing.T) {
	today := fixedToday(t)
	mon, sat := time.Monday, time.Saturday
	feb, march := time.February, time.March

	tests := []struct {
		name string
		date NumericDate
		want string
	}{
		{"later this month", NumericDate{Day: 31}, "2026-10-31"},
		{"today", NumericDate{Day: 21}, "2026-10-21"},
		{"past rolls to next month", NumericDate{Day: 20}, "2026-11-20"},
		{"weekday shifts forward", NumericDate{Day: 23, DayOfWeek: &sat}, "2026-10-24"},
		{"weekday shifts back then a week on", NumericDate{Day: 22, DayOfWeek: &mon}, "2026-10-26"},
		{"pinned month next year", NumericDate{Day: 23, Month: &march}, "2027-03-23"},
		{"leap day", NumericDate{Day: 29, Month: &feb}, "2028-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveNumeric(tt.date, today)
			assert.True(t, ok)
			assert.Equal(t, tt.want, formatDate(got))
		})
	}

	t.Run("skips months without the day", func(t *testing.T) {
		nov20 := time.Date(2026, 11, 20, 0, 0, 0, 0, today.Location())
		got, ok := resolveNumeric(NumericDate{Day: 31}, nov20)
		assert.True(t, ok)
		assert.Equal(t, "2026-12-31", formatDate(got))
	})

	t.Run("impossible date", func(t *testing.T) {
		_, ok := resolveNumeric(NumericDate{Day: 31, Month: &feb}, today)
		assert.False(t, ok)
	})
}

func TestComputeWindow(t *testing.T) {
	today := fixedToday(t)
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	}
	sat, sun := time.Saturday, time.Sunday
	feb, nov := time.February, time.November

	tests := []struct {
		name        string
		in          windowInput
		wantTargets []string
		wantAllowed []string
	}{
		{
			name: "numeric disjunction",
			in: windowInput{sig: &Signals{NumericDates: []NumericDate{
				{Day: 23, DayOfWeek: &sat},
				{Day: 24, DayOfWeek: &sun},
			}}},
			wantTargets: []string{"2026-10-24", "2026-10-25"},
			wantAllowed: []string{"2026-10-24", "2026-10-25"},
		},
		{
			name:        "week of, professional",
			in:          windowInput{sig: &Signals{WeekOfDay: ptr(12), Professional: true}},
			wantTargets: []string{"2026-11-12"},
			wantAllowed: []string{"2026-11-09", "2026-11-10", "2026-11-11", "2026-11-12", "2026-11-13"},
		},
		{
			name:        "week of current week drops past days",
			in:          windowInput{sig: &Signals{WeekOfDay: ptr(22)}},
			wantTargets: []string{"2026-10-22"},
			wantAllowed: []string{"2026-10-21", "2026-10-22", "2026-10-23", "2026-10-24", "2026-10-25"},
		},
		{
			name:        "month start, professional",
			in:          windowInput{sig: &Signals{Month: &nov, Period: PeriodStart, Professional: true}},
			wantTargets: []string{"2026-11-02"},
			wantAllowed: []string{
				"2026-11-02", "2026-11-03", "2026-11-04", "2026-11-05", "2026-11-06",
				"2026-11-09", "2026-11-10", "2026-11-11", "2026-11-12", "2026-11-13",
			},
		},
		{
			name:        "month with weekday",
			in:          windowInput{sig: &Signals{Month: ptr(time.December), Weekdays: []time.Weekday{time.Sunday}}},
			wantTargets: []string{"2026-12-06"},
			wantAllowed: []string{"2026-12-06", "2026-12-13", "2026-12-20", "2026-12-27"},
		},
		{
			name:        "current month end keeps future days",
			in:          windowInput{sig: &Signals{Month: ptr(time.October), Period: PeriodEnd}},
			wantTargets: []string{"2026-10-21"},
			wantAllowed: []string{
				"2026-10-21", "2026-10-22", "2026-10-23", "2026-10-24", "2026-10-25", "2026-10-26",
				"2026-10-27", "2026-10-28", "2026-10-29", "2026-10-30", "2026-10-31",
			},
		},
		{
			name:        "relative weeks, professional",
			in:          windowInput{sig: &Signals{RelativeWeeks: ptr(2), Professional: true}},
			wantTargets: []string{"2026-11-04"},
			wantAllowed: []string{
				"2026-10-30", "2026-11-02", "2026-11-03", "2026-11-04",
				"2026-11-05", "2026-11-06", "2026-11-09",
			},
		},
		{
			name:        "weekday in relative weeks",
			in:          windowInput{sig: &Signals{RelativeWeeks: ptr(2), Weekdays: []time.Weekday{time.Monday}}},
			wantTargets: []string{"2026-11-02"},
			wantAllowed: []string{"2026-11-02", "2026-11-09"},
		},
		{
			name: "past grammar anchor re-projected to weekday",
			in: windowInput{
				sig:     &Signals{Weekdays: []time.Weekday{time.Monday}},
				grammar: GrammarMatch{Found: true, Date: day(2026, 10, 19), Text: "lundi"},
			},
			wantTargets: []string{"2026-10-26"},
			wantAllowed: []string{"2026-10-26"},
		},
		{
			name:        "weekday without grammar",
			in:          windowInput{sig: &Signals{Weekdays: []time.Weekday{time.Friday}}},
			wantTargets: []string{"2026-10-23"},
			wantAllowed: []string{"2026-10-23"},
		},
		{
			name: "grammar anchor window",
			in: windowInput{
				sig:     &Signals{},
				grammar: GrammarMatch{Found: true, Date: day(2026, 10, 22), Text: "demain"},
			},
			wantTargets: []string{"2026-10-22"},
			wantAllowed: []string{"2026-10-21", "2026-10-22", "2026-10-23", "2026-10-24", "2026-10-25"},
		},
		{
			name: "next week",
			in: windowInput{
				sig:      &Signals{},
				grammar:  GrammarMatch{Found: true, Date: day(2026, 10, 26), Text: "semaine prochaine"},
				nextWeek: true,
			},
			wantTargets: []string{"2026-10-26"},
			wantAllowed: []string{
				"2026-10-26", "2026-10-27", "2026-10-28", "2026-10-29",
				"2026-10-30", "2026-10-31", "2026-11-01",
			},
		},
		{
			name: "professional weekend named explicitly",
			in: windowInput{
				sig:     &Signals{Professional: true, Weekdays: []time.Weekday{time.Saturday}},
				grammar: GrammarMatch{Found: true, Date: day(2026, 10, 24), Text: "samedi"},
			},
			wantTargets: []string{"2026-10-24"},
			wantAllowed: []string{"2026-10-24"},
		},
		{
			name:        "relative days",
			in:          windowInput{sig: &Signals{RelativeDays: ptr(2)}},
			wantTargets: []string{"2026-10-23"},
			wantAllowed: []string{"2026-10-21", "2026-10-22", "2026-10-23", "2026-10-24", "2026-10-25"},
		},
		{
			name: "grammar anchor over relative days",
			in: windowInput{
				sig:     &Signals{RelativeDays: ptr(2)},
				grammar: GrammarMatch{Found: true, Date: day(2026, 10, 23), Text: "dans 2 jours"},
			},
			wantTargets: []string{"2026-10-23"},
			wantAllowed: []string{
				"2026-10-21", "2026-10-22", "2026-10-23", "2026-10-24", "2026-10-25", "2026-10-26",
			},
		},
		{
			name: "grammar anchor with weekday and relative days",
			in: windowInput{
				sig:     &Signals{RelativeDays: ptr(5), Weekdays: []time.Weekday{time.Monday}},
				grammar: GrammarMatch{Found: true, Date: day(2026, 10, 26), Text: "lundi"},
			},
			wantTargets: []string{"2026-10-26"},
			wantAllowed: []string{"2026-10-26"},
		},
		{
			name:        "relative days without grammar ignore the weekday anchor",
			in:          windowInput{sig: &Signals{RelativeDays: ptr(5), Weekdays: []time.Weekday{time.Monday}}},
			wantTargets: []string{"2026-10-26"},
			wantAllowed: []string{
				"2026-10-23", "2026-10-24", "2026-10-25", "2026-10-26",
				"2026-10-27", "2026-10-28", "2026-10-29",
			},
		},
		{
			name: "unresolvable numeric falls through to month",
			in: windowInput{sig: &Signals{
				NumericDates: []NumericDate{{Day: 31, Month: &feb}},
				Month:        &feb,
				Period:       PeriodEnd,
			}},
			wantTargets: []string{"2027-02-15"},
			wantAllowed: []string{
				"2027-02-15", "2027-02-16", "2027-02-17", "2027-02-18", "2027-02-19", "2027-02-20", "2027-02-21",
				"2027-02-22", "2027-02-23", "2027-02-24", "2027-02-25", "2027-02-26", "2027-02-27", "2027-02-28",
			},
		},
		{
			name:        "nothing",
			in:          windowInput{sig: &Signals{}},
			wantTargets: []string{},
			wantAllowed: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.today = today
			targets, allowed := computeWindow(tt.in)
			assert.Equal(t, tt.wantTargets, targets)
			assert.Equal(t, tt.wantAllowed, allowed)
		})
	}
}

func TestComputeWindow_AcrossDST(t *testing.T) {
	// Paris leaves summer time on 2026-10-25.
	today := fixedToday(t)
	targets, allowed := computeWindow(windowInput{
		sig:   &Signals{RelativeDays: ptr(4)},
		today: today,
	})
	assert.Equal(t, []string{"2026-10-25"}, targets)
	assert.Equal(t, []string{
		"2026-10-22", "2026-10-23", "2026-10-24", "2026-10-25",
		"2026-10-26", "2026-10-27", "2026-10-28",
	}, allowed)
}
