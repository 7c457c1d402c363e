package temporal

import (
	"regexp"
	"strings"
	"time"

	"github.com/hrygo/quand/plugin/ai/aitime"
)

// Signals are the lexical cues found in an input.
type Signals struct {
	Weekdays      []time.Weekday
	Month         *time.Month
	Period        Period
	NumericDates  []NumericDate
	WeekOfDay     *int
	RelativeDays  *int
	RelativeWeeks *int

	Meal         bool
	Professional bool
	Keywords     []string
}

// HasWeekend reports whether an explicit weekday falls on a weekend.
func (s *Signals) HasWeekend() bool {
	for _, wd := range s.Weekdays {
		if wd == time.Saturday || wd == time.Sunday {
			return true
		}
	}
	return false
}

type span struct{ start, end int }

func (s span) contains(i int) bool { return i >= s.start && i < s.end }

// numericCandidate is a day number before context filtering.
type numericCandidate struct {
	date    NumericDate
	start   int // start of the whole match, prefix included
	end     int
	flagged bool // has a weekday, article or month next to it
}

// Detect extracts Signals from text. ref supplies the current month for
// phrases such as "fin du mois".
func Detect(l *Locale, text string, ref time.Time) Signals {
	var sig Signals
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return sig
	}

	seen := make(map[time.Weekday]bool)
	for _, m := range aitime.FindAllWords(l.weekday, lower) {
		wd := l.Weekdays[aitime.Group(lower, m, 1)]
		if !seen[wd] {
			seen[wd] = true
			sig.Weekdays = append(sig.Weekdays, wd)
		}
	}

	if ms := aitime.FindAllWords(l.month, lower); len(ms) > 0 {
		sig.Month = ptr(l.Months[aitime.Group(lower, ms[0], 1)])
	}
	detectPeriod(l, lower, ref, &sig)

	var excluded []span
	if l.weekOf != nil {
		if ms := aitime.FindAllWords(l.weekOf, lower); len(ms) > 0 {
			if n, ok := l.Number(aitime.Group(lower, ms[0], 2)); ok && n >= 1 && n <= 31 {
				sig.WeekOfDay = ptr(n)
			}
			excluded = append(excluded, span{ms[0][2], ms[0][3]})
		}
	}
	if n, sp, ok := firstNumber(l, l.relativeWeeks, lower); ok {
		sig.RelativeWeeks = ptr(n)
		excluded = append(excluded, sp)
	}
	if n, sp, ok := firstNumber(l, l.relativeDays, lower); ok {
		sig.RelativeDays = ptr(n)
		excluded = append(excluded, sp)
	}

	sig.NumericDates = detectNumeric(l, lower, excluded)

	sig.Meal = collectKeywords(l.meal, lower, &sig.Keywords)
	sig.Professional = collectKeywords(l.professional, lower, &sig.Keywords)
	return sig
}

func detectPeriod(l *Locale, lower string, ref time.Time, sig *Signals) {
	for _, p := range []struct {
		re      *regexp.Regexp
		period  Period
		current bool
	}{
		{l.periodEnd, PeriodEnd, false},
		{l.periodStart, PeriodStart, false},
		{l.periodEndCurrent, PeriodEnd, true},
		{l.periodStartCurrent, PeriodStart, true},
	} {
		if p.re == nil {
			continue
		}
		ms := aitime.FindAllWords(p.re, lower)
		if len(ms) == 0 {
			continue
		}
		month := ref.Month()
		if !p.current {
			month = l.Months[aitime.Group(lower, ms[0], 2)]
		}
		sig.Period = p.period
		sig.Month = ptr(month)
		return
	}
}

func firstNumber(l *Locale, re *regexp.Regexp, lower string) (int, span, bool) {
	if re == nil {
		return 0, span{}, false
	}
	for _, m := range aitime.FindAllWords(re, lower) {
		if n, ok := l.Number(aitime.Group(lower, m, 2)); ok && n > 0 {
			return n, span{m[2], m[3]}, true
		}
	}
	return 0, span{}, false
}

// detectNumeric keeps day numbers that read as dates: next to a weekday,
// an article or a month, or joined to another candidate by a disjunction
// ("23 ou 24"). Quantities, times and the week-of/relative phrases are
// skipped.
func detectNumeric(l *Locale, lower string, excluded []span) []NumericDate {
	var cands []numericCandidate
	for _, m := range aitime.FindAllWords(l.numericDate, lower) {
		if inAny(excluded, m[8]) {
			continue
		}
		day, ok := l.Number(aitime.Group(lower, m, 4))
		if !ok || day < 1 || day > 31 {
			continue
		}
		if l.numericStop != nil && l.numericStop.MatchString(lower[m[3]:]) {
			continue
		}
		c := numericCandidate{
			date:  NumericDate{Day: day},
			start: m[2],
			end:   m[3],
		}
		if wd := aitime.Group(lower, m, 2); wd != "" {
			c.date.DayOfWeek = ptr(l.Weekdays[wd])
			c.flagged = true
		}
		if aitime.Group(lower, m, 3) != "" {
			c.flagged = true
		}
		if mo := aitime.Group(lower, m, 5); mo != "" {
			c.date.Month = ptr(l.Months[mo])
			c.flagged = true
		}
		cands = append(cands, c)
	}

	// Group candidates chained by disjunctions; a month given once applies
	// to the whole chain ("samedi 23 ou dimanche 24 mars").
	var out []NumericDate
	for i := 0; i < len(cands); {
		j := i + 1
		for j < len(cands) && joined(l, lower, cands[j-1], cands[j]) {
			j++
		}
		chain := cands[i:j]
		var month *time.Month
		for _, c := range chain {
			if c.date.Month != nil {
				month = c.date.Month
			}
		}
		for _, c := range chain {
			if !c.flagged && len(chain) == 1 {
				continue
			}
			if c.date.Month == nil && month != nil {
				c.date.Month = ptr(*month)
			}
			out = append(out, c.date)
		}
		i = j
	}
	return out
}

func joined(l *Locale, lower string, a, b numericCandidate) bool {
	if l.disjunction == nil || b.start < a.end {
		return false
	}
	return l.disjunction.MatchString(lower[a.end:b.start])
}

func inAny(spans []span, i int) bool {
	for _, s := range spans {
		if s.contains(i) {
			return true
		}
	}
	return false
}

func collectKeywords(re *regexp.Regexp, lower string, out *[]string) bool {
	if re == nil {
		return false
	}
	found := false
	for _, m := range aitime.FindAllWords(re, lower) {
		kw := aitime.Group(lower, m, 1)
		found = true
		dup := false
		for _, k := range *out {
			if k == kw {
				dup = true
				break
			}
		}
		if !dup {
			*out = append(*out, kw)
		}
	}
	return found
}
