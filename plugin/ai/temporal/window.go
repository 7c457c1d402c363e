package temporal

import (
	"time"
)

type windowInput struct {
	sig     *Signals
	grammar GrammarMatch
	// nextWeek is set when the grammar span denotes the whole following week.
	nextWeek bool
	today    time.Time
}

// workday drops weekends in a professional context, unless the input
// explicitly names a weekend day.
func (in windowInput) workday(d time.Time) bool {
	if !in.sig.Professional || in.sig.HasWeekend() {
		return true
	}
	return !isWeekend(d)
}

type window struct {
	targets []time.Time
	allowed []time.Time
}

// windowCases run in priority order. A case reports false when its cues
// are absent; a case that applies but leaves no allowed date yields to the
// next one.
var windowCases = []func(windowInput) (window, bool){
	numericWindow,
	weekOfWindow,
	monthWindow,
	relativeWeeksWindow,
	weekdayInWeeksWindow,
	grammarWindow,
	relativeDaysWindow,
}

// computeWindow returns the target dates in discovery order and the sorted
// allowed set. Both are empty, never nil, when no case applies.
func computeWindow(in windowInput) (targets, allowed []string) {
	for _, c := range windowCases {
		w, ok := c(in)
		if !ok || len(w.allowed) == 0 {
			continue
		}
		return formatList(w.targets), formatSet(w.allowed)
	}
	return []string{}, []string{}
}

// resolveNumeric places a day number on the calendar: in the pinned month
// (next year once past) or in the current month, rolling forward past
// months that are over or lack the day. A weekday that disagrees shifts the
// date to the nearest such weekday, then a week later if that is past.
func resolveNumeric(nd NumericDate, today time.Time) (time.Time, bool) {
	loc := today.Location()
	var (
		d  time.Time
		ok bool
	)
	if nd.Month != nil {
		for year := today.Year(); year <= today.Year()+4 && !ok; year++ {
			d, ok = calendarDate(year, *nd.Month, nd.Day, loc)
			ok = ok && !d.Before(today)
		}
	} else {
		for i := 0; i < 12 && !ok; i++ {
			first := time.Date(today.Year(), today.Month()+time.Month(i), 1, 0, 0, 0, 0, loc)
			d, ok = calendarDate(first.Year(), first.Month(), nd.Day, loc)
			ok = ok && !d.Before(today)
		}
	}
	if !ok {
		return time.Time{}, false
	}

	if nd.DayOfWeek != nil && d.Weekday() != *nd.DayOfWeek {
		diff := (int(*nd.DayOfWeek) - int(d.Weekday()) + 7) % 7
		if diff > 3 {
			diff -= 7
		}
		d = addDays(d, diff)
		if d.Before(today) {
			d = addDays(d, 7)
		}
	}
	return d, true
}

func numericWindow(in windowInput) (window, bool) {
	if len(in.sig.NumericDates) == 0 {
		return window{}, false
	}
	var w window
	for _, nd := range in.sig.NumericDates {
		if d, ok := resolveNumeric(nd, in.today); ok {
			w.targets = append(w.targets, d)
		}
	}
	w.allowed = w.targets
	return w, true
}

func weekOfWindow(in windowInput) (window, bool) {
	if in.sig.WeekOfDay == nil {
		return window{}, false
	}
	anchor, ok := resolveNumeric(NumericDate{Day: *in.sig.WeekOfDay}, in.today)
	if !ok {
		return window{}, true
	}
	length := 7
	if in.sig.Professional {
		length = 5
	}
	return window{
		targets: []time.Time{anchor},
		allowed: filterDates(daysFrom(mondayOf(anchor), length), notBefore(in.today)),
	}, true
}

func monthWindow(in windowInput) (window, bool) {
	if in.sig.Month == nil {
		return window{}, false
	}
	month := *in.sig.Month
	year := in.today.Year()
	if month < in.today.Month() {
		year++
	}

	var w window
	for d := time.Date(year, month, 1, 0, 0, 0, 0, in.today.Location()); d.Month() == month; d = addDays(d, 1) {
		if d.Before(in.today) || !in.workday(d) {
			continue
		}
		switch in.sig.Period {
		case PeriodEnd:
			if d.Day() < 15 {
				continue
			}
		case PeriodStart:
			if d.Day() > 15 {
				continue
			}
		}
		if len(in.sig.Weekdays) > 0 && !onWeekdays(in.sig.Weekdays)(d) {
			continue
		}
		w.allowed = append(w.allowed, d)
	}
	w.targets = firstPerWeekday(w.allowed, in.sig.Weekdays)
	return w, true
}

func relativeWeeksWindow(in windowInput) (window, bool) {
	if in.sig.RelativeWeeks == nil || len(in.sig.Weekdays) > 0 {
		return window{}, false
	}
	anchor := addDays(in.today, *in.sig.RelativeWeeks*7)
	allowed := filterDates(around(anchor, 5), func(d time.Time) bool {
		return !d.Before(in.today) && in.workday(d)
	})
	return window{targets: []time.Time{anchor}, allowed: allowed}, true
}

func weekdayInWeeksWindow(in windowInput) (window, bool) {
	if in.sig.RelativeWeeks == nil || len(in.sig.Weekdays) == 0 {
		return window{}, false
	}
	monday := mondayOf(addDays(in.today, *in.sig.RelativeWeeks*7))
	var w window
	for _, wd := range in.sig.Weekdays {
		d := weekdayIn(monday, wd)
		if !d.Before(in.today) {
			w.targets = append(w.targets, d)
			w.allowed = append(w.allowed, d)
		}
		w.allowed = append(w.allowed, addDays(d, 7))
	}
	return w, true
}

func grammarWindow(in windowInput) (window, bool) {
	if in.sig.RelativeWeeks != nil {
		return window{}, false
	}
	var anchor time.Time
	switch {
	case in.grammar.Found:
		anchor = in.grammar.Date
		// A past anchor next to an explicit weekday is a mis-resolution.
		if anchor.Before(in.today) && len(in.sig.Weekdays) > 0 {
			anchor = nextOrSame(in.today, in.sig.Weekdays[0])
		}
	case len(in.sig.Weekdays) > 0 && in.sig.RelativeDays == nil:
		// Without a grammar, an explicit day count anchors better than a
		// bare weekday.
		anchor = nextOrSame(in.today, in.sig.Weekdays[0])
	default:
		return window{}, false
	}

	if in.nextWeek && len(in.sig.Weekdays) == 0 {
		monday := addDays(mondayOf(in.today), 7)
		length := 7
		if in.sig.Professional {
			length = 5
		}
		return window{
			targets: []time.Time{monday},
			allowed: daysFrom(monday, length),
		}, true
	}

	allowed := filterDates(around(anchor, 3), func(d time.Time) bool {
		return !d.Before(in.today) && in.workday(d)
	})
	if len(in.sig.Weekdays) > 0 {
		allowed = filterDates(allowed, onWeekdays(in.sig.Weekdays))
		return window{targets: firstPerWeekday(allowed, in.sig.Weekdays), allowed: allowed}, true
	}
	var targets []time.Time
	if !anchor.Before(in.today) {
		targets = []time.Time{anchor}
	}
	return window{targets: targets, allowed: allowed}, true
}

func relativeDaysWindow(in windowInput) (window, bool) {
	if in.sig.RelativeDays == nil {
		return window{}, false
	}
	days := *in.sig.RelativeDays
	anchor := addDays(in.today, days)
	radius := 2
	if days > 3 {
		radius = 3
	}
	allowed := filterDates(around(anchor, radius), func(d time.Time) bool {
		return !d.Before(in.today) && in.workday(d)
	})
	return window{targets: []time.Time{anchor}, allowed: allowed}, true
}

// firstPerWeekday picks, from ascending dates, the earliest date of each
// weekday in wds, or the earliest date overall when wds is empty.
func firstPerWeekday(dates []time.Time, wds []time.Weekday) []time.Time {
	if len(dates) == 0 {
		return nil
	}
	if len(wds) == 0 {
		return []time.Time{dates[0]}
	}
	var out []time.Time
	taken := make(map[time.Weekday]bool, len(wds))
	want := onWeekdays(wds)
	for _, d := range dates {
		if want(d) && !taken[d.Weekday()] {
			taken[d.Weekday()] = true
			out = append(out, d)
		}
	}
	return out
}
