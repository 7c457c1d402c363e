package temporal

import (
	"sort"
	"time"
)

// All arithmetic below works on local calendar days; AddDate keeps
// midnight stable across DST changes where adding 24h would not.

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func addDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// calendarDate builds a date, rejecting days the month does not have.
func calendarDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// mondayOf returns the Monday that opens t's week.
func mondayOf(t time.Time) time.Time {
	return addDays(t, -((int(t.Weekday()) + 6) % 7))
}

// nextOrSame returns the first day on or after t falling on wd.
func nextOrSame(t time.Time, wd time.Weekday) time.Time {
	return addDays(t, (int(wd)-int(t.Weekday())+7)%7)
}

// weekdayIn returns the day of the Monday-based week starting at monday
// that falls on wd.
func weekdayIn(monday time.Time, wd time.Weekday) time.Time {
	return addDays(monday, (int(wd)+6)%7)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// around returns every day within radius days of anchor.
func around(anchor time.Time, radius int) []time.Time {
	out := make([]time.Time, 0, 2*radius+1)
	for i := -radius; i <= radius; i++ {
		out = append(out, addDays(anchor, i))
	}
	return out
}

func daysFrom(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, addDays(start, i))
	}
	return out
}

func filterDates(dates []time.Time, keep func(time.Time) bool) []time.Time {
	out := dates[:0:0]
	for _, d := range dates {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func notBefore(today time.Time) func(time.Time) bool {
	return func(d time.Time) bool { return !d.Before(today) }
}

func onWeekdays(wds []time.Weekday) func(time.Time) bool {
	return func(d time.Time) bool {
		for _, wd := range wds {
			if d.Weekday() == wd {
				return true
			}
		}
		return false
	}
}

// formatSet renders dates sorted ascending without duplicates. The result
// is never nil.
func formatSet(dates []time.Time) []string {
	seen := make(map[string]bool, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		s := formatDate(d)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// formatList renders dates in order without duplicates. The result is
// never nil.
func formatList(dates []time.Time) []string {
	seen := make(map[string]bool, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		s := formatDate(d)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
