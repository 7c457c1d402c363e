// Package temporal interprets free-text "when" expressions for poll generation.
//
// A call to Service.Parse detects lexical cues (weekdays, months, numeric days,
// half-month qualifiers, relative offsets), resolves relative phrases through a
// date grammar, computes the window of dates a downstream generator may pick
// from, classifies the request and estimates how many dates and time slots to
// produce. Validator re-checks a result and can narrow it safely.
package temporal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of every date string in a result.
const DateLayout = "2006-01-02"

// RequestType is the interpretation category of an input.
type RequestType string

const (
	TypeSpecificDate RequestType = "specific_date"
	TypePeriod       RequestType = "period"
	TypeDayOfWeek    RequestType = "day_of_week"
	TypeMonth        RequestType = "month"
	TypeRelative     RequestType = "relative"
	TypeUnknown      RequestType = "unknown"
)

// Period refines a month into a half-month.
type Period string

const (
	PeriodStart Period = "start"
	PeriodEnd   Period = "end"
)

// NumericDate is an explicit day-of-month, optionally pinned to a weekday
// ("samedi 23") or a month ("23 mars").
type NumericDate struct {
	Day       int           `json:"day"`
	DayOfWeek *time.Weekday `json:"dayOfWeek,omitempty"`
	Month     *time.Month   `json:"month,omitempty"`
}

// Count is an exact count (Min == Max) or an inclusive range.
type Count struct {
	Min int
	Max int
}

// Exact returns an exact count.
func Exact(n int) Count { return Count{Min: n, Max: n} }

// Range returns a low-high range.
func Range(lo, hi int) Count { return Count{Min: lo, Max: hi} }

// IsExact reports whether c is a single number.
func (c Count) IsExact() bool { return c.Min == c.Max }

// IsZero reports whether c was never set.
func (c Count) IsZero() bool { return c.Min == 0 && c.Max == 0 }

// String formats c as "3" or "3-5".
func (c Count) String() string {
	if c.IsExact() {
		return strconv.Itoa(c.Min)
	}
	return fmt.Sprintf("%d-%d", c.Min, c.Max)
}

// MarshalJSON encodes an exact count as a number and a range as "lo-hi".
func (c Count) MarshalJSON() ([]byte, error) {
	if c.IsExact() {
		return []byte(strconv.Itoa(c.Min)), nil
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a number, a numeric string or a "lo-hi" string.
func (c *Count) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Exact(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("count must be a number or a range string: %w", err)
	}
	parsed, err := ParseCount(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCount parses "3" or "3-5".
func ParseCount(s string) (Count, error) {
	loText, hiText, isRange := strings.Cut(strings.TrimSpace(s), "-")
	lo, err := strconv.Atoi(strings.TrimSpace(loText))
	if err != nil {
		return Count{}, fmt.Errorf("invalid count %q", s)
	}
	if !isRange {
		return Exact(lo), nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(hiText))
	if err != nil || hi < lo {
		return Count{}, fmt.Errorf("invalid count range %q", s)
	}
	return Range(lo, hi), nil
}

// ParsedTemporalInput is the interpretation of one input.
type ParsedTemporalInput struct {
	Type RequestType `json:"type"`

	// TargetDates are the most likely dates before windowing.
	TargetDates []string `json:"targetDates"`
	// AllowedDates is the sorted, deduplicated candidate set.
	AllowedDates []string `json:"allowedDates"`

	DayOfWeek     []time.Weekday `json:"dayOfWeek,omitempty"`
	Month         *time.Month    `json:"month,omitempty"`
	Period        Period         `json:"period,omitempty"`
	RelativeDays  *int           `json:"relativeDays,omitempty"`
	RelativeWeeks *int           `json:"relativeWeeks,omitempty"`
	WeekOfDay     *int           `json:"weekOfDay,omitempty"`
	DateNumeric   []NumericDate  `json:"dateNumeric,omitempty"`

	IsMealContext         bool `json:"isMealContext"`
	IsProfessionalContext bool `json:"isProfessionalContext"`

	ExpectedDatesCount Count `json:"expectedDatesCount"`
	ExpectedSlotsCount Count `json:"expectedSlotsCount"`

	// Diagnostics.
	GrammarText      string   `json:"grammarText,omitempty"`
	DetectedKeywords []string `json:"detectedKeywords,omitempty"`
	Locale           string   `json:"locale,omitempty"`
	ReferenceDate    string   `json:"referenceDate,omitempty"`
}

// Clone returns a deep copy of p.
func (p *ParsedTemporalInput) Clone() *ParsedTemporalInput {
	if p == nil {
		return nil
	}
	c := *p
	c.TargetDates = cloneSlice(p.TargetDates)
	c.AllowedDates = cloneSlice(p.AllowedDates)
	c.DayOfWeek = cloneSlice(p.DayOfWeek)
	c.DetectedKeywords = cloneSlice(p.DetectedKeywords)
	c.Month = clonePtr(p.Month)
	c.RelativeDays = clonePtr(p.RelativeDays)
	c.RelativeWeeks = clonePtr(p.RelativeWeeks)
	c.WeekOfDay = clonePtr(p.WeekOfDay)
	if p.DateNumeric != nil {
		c.DateNumeric = make([]NumericDate, len(p.DateNumeric))
		for i, nd := range p.DateNumeric {
			c.DateNumeric[i] = NumericDate{
				Day:       nd.Day,
				DayOfWeek: clonePtr(nd.DayOfWeek),
				Month:     clonePtr(nd.Month),
			}
		}
	}
	return &c
}

// Severity of a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is a finding that makes AllowedDates untrustworthy.
type ValidationError struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationWarning is a finding that leaves the result usable.
type ValidationWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult is computed on demand and never persisted.
type ValidationResult struct {
	IsValid  bool                `json:"isValid"`
	Errors   []ValidationError   `json:"errors"`
	Warnings []ValidationWarning `json:"warnings"`
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptr[T any](v T) *T { return &v }
