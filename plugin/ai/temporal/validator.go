package temporal

import (
	"fmt"
	"strings"
	"time"
)

// Validation codes.
const (
	CodeNoDatesDetected        = "NO_DATES_DETECTED"
	CodeInvalidDate            = "INVALID_DATE"
	CodeMonthMismatch          = "MONTH_MISMATCH"
	CodeMonthPartialMismatch   = "MONTH_PARTIAL_MISMATCH"
	CodeWeekdayMismatch        = "WEEKDAY_MISMATCH"
	CodeWeekdayPartialMismatch = "WEEKDAY_PARTIAL_MISMATCH"
	CodePeriodMismatch         = "PERIOD_MISMATCH"
	CodeNumericDayMissing      = "NUMERIC_DAY_MISSING"
	CodePastDates              = "PAST_DATES"
	CodeExpectedCountExceeds   = "EXPECTED_COUNT_EXCEEDS_AVAILABLE"
	CodeMealSlotMismatch       = "MEAL_SLOT_MISMATCH"
)

// Validator checks a result against its own cues. It never mutates its
// input.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a validator. A nil clock means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

type findings struct {
	errors   []ValidationError
	warnings []ValidationWarning
}

func (f *findings) fail(code, format string, args ...any) {
	f.errors = append(f.errors, ValidationError{Code: code, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (f *findings) warn(code, format string, args ...any) {
	f.warnings = append(f.warnings, ValidationWarning{Code: code, Message: fmt.Sprintf(format, args...)})
}

// Validate runs every check. IsValid is false only when an error-severity
// finding exists.
func (v *Validator) Validate(p *ParsedTemporalInput) ValidationResult {
	var f findings
	if p == nil {
		f.fail(CodeNoDatesDetected, "no interpretation to validate")
		return f.result()
	}

	if p.Type != TypeUnknown && len(p.AllowedDates) == 0 {
		f.fail(CodeNoDatesDetected, "type %s but no allowed dates", p.Type)
	}

	dates, bad := parseDates(p.AllowedDates)
	if len(bad) > 0 {
		f.fail(CodeInvalidDate, "malformed dates: %s", strings.Join(bad, ", "))
	}

	if len(dates) > 0 {
		v.checkMonth(p, dates, &f)
		v.checkWeekdays(p, dates, &f)
		v.checkNumeric(p, dates, &f)
	}

	today := formatDate(dayOf(v.now()))
	var past []string
	for _, s := range p.AllowedDates {
		if s < today {
			past = append(past, s)
		}
	}
	if len(past) > 0 {
		f.warn(CodePastDates, "%d allowed dates are before %s", len(past), today)
	}

	if c := p.ExpectedDatesCount; c.IsExact() && !c.IsZero() && c.Min > len(p.AllowedDates) {
		f.warn(CodeExpectedCountExceeds, "expected %d dates but only %d are allowed", c.Min, len(p.AllowedDates))
	}

	if p.IsMealContext && p.Type == TypeSpecificDate {
		if s := p.ExpectedSlotsCount; s != Exact(1) && s != Range(2, 3) {
			f.warn(CodeMealSlotMismatch, "meal expects 1 or 2-3 slots, got %s", s)
		}
	}
	return f.result()
}

func (v *Validator) checkMonth(p *ParsedTemporalInput, dates []time.Time, f *findings) {
	if p.Month == nil {
		return
	}
	in := 0
	periodMiss := 0
	for _, d := range dates {
		if d.Month() != *p.Month {
			continue
		}
		in++
		if (p.Period == PeriodEnd && d.Day() < 15) || (p.Period == PeriodStart && d.Day() > 15) {
			periodMiss++
		}
	}
	switch {
	case in == 0:
		f.fail(CodeMonthMismatch, "no allowed date falls in %s", *p.Month)
	case in < len(dates):
		f.warn(CodeMonthPartialMismatch, "%d of %d allowed dates fall outside %s", len(dates)-in, len(dates), *p.Month)
	}
	if periodMiss > 0 {
		f.warn(CodePeriodMismatch, "%d allowed dates fall outside the %s of %s", periodMiss, p.Period, *p.Month)
	}
}

func (v *Validator) checkWeekdays(p *ParsedTemporalInput, dates []time.Time, f *findings) {
	if len(p.DayOfWeek) == 0 {
		return
	}
	match := onWeekdays(p.DayOfWeek)
	in := 0
	for _, d := range dates {
		if match(d) {
			in++
		}
	}
	switch {
	case in == 0:
		f.fail(CodeWeekdayMismatch, "no allowed date falls on %s", weekdayNames(p.DayOfWeek))
	case in < len(dates):
		f.warn(CodeWeekdayPartialMismatch, "%d of %d allowed dates fall on other weekdays than %s", len(dates)-in, len(dates), weekdayNames(p.DayOfWeek))
	}
}

func (v *Validator) checkNumeric(p *ParsedTemporalInput, dates []time.Time, f *findings) {
	for _, nd := range p.DateNumeric {
		found := false
		for _, d := range dates {
			if d.Day() == nd.Day {
				found = true
				break
			}
		}
		if !found {
			f.fail(CodeNumericDayMissing, "no allowed date is day %d of a month", nd.Day)
		}
	}
}

func (f *findings) result() ValidationResult {
	r := ValidationResult{
		IsValid:  len(f.errors) == 0,
		Errors:   f.errors,
		Warnings: f.warnings,
	}
	if r.Errors == nil {
		r.Errors = []ValidationError{}
	}
	if r.Warnings == nil {
		r.Warnings = []ValidationWarning{}
	}
	return r
}

// AutoCorrect returns a copy of p with past dates removed and the allowed
// set narrowed to the detected month, weekdays and numeric days. Each
// narrowing is applied only when it leaves at least one date.
func (v *Validator) AutoCorrect(p *ParsedTemporalInput) *ParsedTemporalInput {
	if p == nil {
		return nil
	}
	out := p.Clone()
	today := formatDate(dayOf(v.now()))

	allowed := make([]string, 0, len(out.AllowedDates))
	for _, s := range out.AllowedDates {
		if s >= today {
			allowed = append(allowed, s)
		}
	}

	if out.Month != nil {
		month := *out.Month
		allowed = narrow(allowed, func(d time.Time) bool { return d.Month() == month })
	}
	if len(out.DayOfWeek) > 0 {
		allowed = narrow(allowed, onWeekdays(out.DayOfWeek))
	}
	if len(out.DateNumeric) > 0 {
		days := make(map[int]bool, len(out.DateNumeric))
		for _, nd := range out.DateNumeric {
			days[nd.Day] = true
		}
		allowed = narrow(allowed, func(d time.Time) bool { return days[d.Day()] })
	}
	out.AllowedDates = allowed
	return out
}

// narrow keeps the dates satisfying keep, unless none would remain.
// Malformed entries never satisfy keep.
func narrow(dates []string, keep func(time.Time) bool) []string {
	kept := make([]string, 0, len(dates))
	for _, s := range dates {
		if d, err := time.Parse(DateLayout, s); err == nil && keep(d) {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return dates
	}
	return kept
}

func parseDates(ss []string) (dates []time.Time, bad []string) {
	for _, s := range ss {
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			bad = append(bad, s)
			continue
		}
		dates = append(dates, d)
	}
	return dates, bad
}

func weekdayNames(wds []time.Weekday) string {
	names := make([]string, len(wds))
	for i, wd := range wds {
		names[i] = wd.String()
	}
	return strings.Join(names, "/")
}
