// Package timezone resolves the time zone that decides which calendar day
// "today" is for the interpreter.
package timezone

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format accepted by PinnedClock.
const DateLayout = "2006-01-02"

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Paris").
// An empty identifier means the process local zone.
func ParseTimezone(tz string) (*time.Location, error) {
	switch tz {
	case "":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", tz, err)
	}
	return loc, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// Clock returns the wall clock read in tz.
func Clock(tz *time.Location) func() time.Time {
	return func() time.Time {
		return time.Now().In(tz)
	}
}

// PinnedClock returns a clock stopped at noon of date in tz. Noon keeps the
// calendar day stable across daylight saving shifts.
func PinnedClock(date string, tz *time.Location) (func() time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, tz)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", date, err)
	}
	noon := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, tz)
	return func() time.Time { return noon }, nil
}
