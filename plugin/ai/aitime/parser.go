package aitime

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// frenchWeekdays maps French weekday names to time.Weekday.
var frenchWeekdays = map[string]time.Weekday{
	"dimanche": time.Sunday,
	"lundi":    time.Monday,
	"mardi":    time.Tuesday,
	"mercredi": time.Wednesday,
	"jeudi":    time.Thursday,
	"vendredi": time.Friday,
	"samedi":   time.Saturday,
}

// frenchMonths maps French month names (with and without accents) to time.Month.
var frenchMonths = map[string]time.Month{
	"janvier":   time.January,
	"février":   time.February,
	"fevrier":   time.February,
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juin":      time.June,
	"juillet":   time.July,
	"août":      time.August,
	"aout":      time.August,
	"septembre": time.September,
	"octobre":   time.October,
	"novembre":  time.November,
	"décembre":  time.December,
	"decembre":  time.December,
}

// frenchNumbers maps the number words used in relative phrases.
var frenchNumbers = map[string]int{
	"un": 1, "une": 1, "deux": 2, "trois": 3, "quatre": 4, "cinq": 5,
	"six": 6, "sept": 7, "huit": 8, "neuf": 9, "dix": 10, "quinze": 15,
}

const (
	weekdayAlt = `lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche`
	monthAlt   = `janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre`
	numberAlt  = `\d+|une|un|deux|trois|quatre|cinq|six|sept|huit|neuf|dix|quinze`
)

// rule is one phrase family of the grammar.
type rule struct {
	name    string
	pattern *regexp.Regexp
	resolve func(text string, m []int, ref time.Time, opts ParseOptions) (time.Time, bool)
}

// FrenchGrammar is a rule-based French date-phrase grammar.
type FrenchGrammar struct {
	rules []rule
}

// NewFrenchGrammar compiles the French rule set.
func NewFrenchGrammar() *FrenchGrammar {
	return &FrenchGrammar{rules: frenchRules()}
}

// LoadFrench is a Loader for the French grammar.
func LoadFrench(_ context.Context) (Grammar, error) {
	return NewFrenchGrammar(), nil
}

// Parse finds and resolves every French date phrase in text.
func (g *FrenchGrammar) Parse(text string, ref time.Time, opts ParseOptions) ([]ParsedResult, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("reference time is required")
	}
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil, nil
	}
	today := startOfDay(ref)

	var found []ParsedResult
	for _, r := range g.rules {
		for _, m := range FindAllWords(r.pattern, lower) {
			t, ok := r.resolve(lower, m, today, opts)
			if !ok {
				continue
			}
			found = append(found, ParsedResult{
				Text:  lower[m[2]:m[3]],
				Index: m[2],
				Start: t,
			})
		}
	}

	// Earliest first, longest first on ties, then drop overlaps.
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Index != found[j].Index {
			return found[i].Index < found[j].Index
		}
		return len(found[i].Text) > len(found[j].Text)
	})
	results := make([]ParsedResult, 0, len(found))
	end := -1
	for _, r := range found {
		if r.Index < end {
			continue
		}
		results = append(results, r)
		end = r.Index + len(r.Text)
	}
	return results, nil
}

func frenchRules() []rule {
	offset := func(days int) func(string, []int, time.Time, ParseOptions) (time.Time, bool) {
		return func(_ string, _ []int, ref time.Time, _ ParseOptions) (time.Time, bool) {
			return ref.AddDate(0, 0, days), true
		}
	}

	return []rule{
		{
			name:    "today",
			pattern: WordPattern(`aujourd'hui|aujourd’hui|ce soir|ce midi|ce matin|cet après-midi|cet apres-midi`),
			resolve: offset(0),
		},
		{
			name:    "day_after_tomorrow",
			pattern: WordPattern(`après-demain|apres-demain|après demain|apres demain`),
			resolve: offset(2),
		},
		{
			name:    "day_before_yesterday",
			pattern: WordPattern(`avant-hier|avant hier`),
			resolve: offset(-2),
		},
		{name: "tomorrow", pattern: WordPattern(`demain`), resolve: offset(1)},
		{name: "yesterday", pattern: WordPattern(`hier`), resolve: offset(-1)},
		{
			name:    "in_duration",
			pattern: WordPattern(`(?:dans|d'ici|d’ici)\s+(` + numberAlt + `)\s+(jours?|semaines?|mois)`),
			resolve: func(text string, m []int, ref time.Time, _ ParseOptions) (time.Time, bool) {
				n, ok := parseNumber(Group(text, m, 2))
				if !ok {
					return time.Time{}, false
				}
				switch unit := Group(text, m, 3); {
				case strings.HasPrefix(unit, "jour"):
					return ref.AddDate(0, 0, n), true
				case strings.HasPrefix(unit, "semaine"):
					return ref.AddDate(0, 0, 7*n), true
				default:
					return ref.AddDate(0, n, 0), true
				}
			},
		},
		{
			name:    "next_week",
			pattern: WordPattern(`(?:la\s+)?semaine\s+prochaine|(?:la\s+)?semaine\s+d'après|(?:la\s+)?semaine\s+d’après`),
			resolve: func(_ string, _ []int, ref time.Time, _ ParseOptions) (time.Time, bool) {
				return mondayOf(ref).AddDate(0, 0, 7), true
			},
		},
		{
			name:    "next_month",
			pattern: WordPattern(`(?:le\s+)?mois\s+prochain`),
			resolve: func(_ string, _ []int, ref time.Time, _ ParseOptions) (time.Time, bool) {
				return time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, ref.Location()), true
			},
		},
		{
			name:    "weekend",
			pattern: WordPattern(`(?:ce\s+)?week-end|(?:ce\s+)?weekend`),
			resolve: func(_ string, _ []int, ref time.Time, _ ParseOptions) (time.Time, bool) {
				if ref.Weekday() == time.Sunday {
					return ref, true
				}
				return nextOrSame(ref, time.Saturday), true
			},
		},
		{
			name:    "next_weekday",
			pattern: WordPattern(`(` + weekdayAlt + `)\s+prochain`),
			resolve: func(text string, m []int, ref time.Time, _ ParseOptions) (time.Time, bool) {
				wd := frenchWeekdays[Group(text, m, 2)]
				return nextOrSame(ref.AddDate(0, 0, 1), wd), true
			},
		},
		{
			name:    "day_month",
			pattern: WordPattern(`(?:le\s+)?(\d{1,2})(?:er)?\s+(` + monthAlt + `)(?:\s+(\d{4}))?`),
			resolve: func(text string, m []int, ref time.Time, opts ParseOptions) (time.Time, bool) {
				day, _ := strconv.Atoi(Group(text, m, 2))
				month := frenchMonths[Group(text, m, 3)]
				year := ref.Year()
				explicitYear := Group(text, m, 4) != ""
				if explicitYear {
					year, _ = strconv.Atoi(Group(text, m, 4))
				}
				t, ok := calendarDate(year, month, day, ref.Location())
				if !ok {
					return time.Time{}, false
				}
				if opts.ForwardDate && !explicitYear && t.Before(ref) {
					return calendarDate(year+1, month, day, ref.Location())
				}
				return t, true
			},
		},
		{
			name:    "slash_date",
			pattern: WordPattern(`(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?`),
			resolve: func(text string, m []int, ref time.Time, opts ParseOptions) (time.Time, bool) {
				day, _ := strconv.Atoi(Group(text, m, 2))
				month, _ := strconv.Atoi(Group(text, m, 3))
				year := ref.Year()
				explicitYear := Group(text, m, 4) != ""
				if explicitYear {
					year, _ = strconv.Atoi(Group(text, m, 4))
					if year < 100 {
						year += 2000
					}
				}
				if month < 1 || month > 12 {
					return time.Time{}, false
				}
				t, ok := calendarDate(year, time.Month(month), day, ref.Location())
				if !ok {
					return time.Time{}, false
				}
				if opts.ForwardDate && !explicitYear && t.Before(ref) {
					return calendarDate(year+1, time.Month(month), day, ref.Location())
				}
				return t, true
			},
		},
		{
			name:    "iso_date",
			pattern: WordPattern(`(\d{4})-(\d{2})-(\d{2})`),
			resolve: func(text string, m []int, ref time.Time, _ ParseOptions) (time.Time, bool) {
				t, err := time.ParseInLocation("2006-01-02", Group(text, m, 1), ref.Location())
				if err != nil {
					return time.Time{}, false
				}
				return t, true
			},
		},
		{
			name:    "weekday",
			pattern: WordPattern(`(` + weekdayAlt + `)`),
			resolve: func(text string, m []int, ref time.Time, opts ParseOptions) (time.Time, bool) {
				wd := frenchWeekdays[Group(text, m, 2)]
				if opts.ForwardDate {
					return nextOrSame(ref, wd), true
				}
				// Same calendar week, Monday first.
				return mondayOf(ref).AddDate(0, 0, (int(wd)+6)%7), true
			},
		},
	}
}

// parseNumber parses digits or a French number word.
func parseNumber(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	n, ok := frenchNumbers[s]
	return n, ok
}

// calendarDate builds a local date and rejects overflowing days such as 31/02.
func calendarDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// startOfDay returns local midnight of t.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayOf returns the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
	return t.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
}

// nextOrSame returns the first date on or after t falling on wd.
func nextOrSame(t time.Time, wd time.Weekday) time.Time {
	return t.AddDate(0, 0, (int(wd)-int(t.Weekday())+7)%7)
}
