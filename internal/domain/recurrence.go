package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MaxScanDays bounds every day-by-day calendar walk.
const MaxScanDays = 10000

// Frequency is the unit of a recurrence interval.
type Frequency string

// Frequency values.
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// IsValid reports whether f is a known frequency.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// ParseFrequency parses a frequency name (case-insensitive).
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

// Count caps the number of occurrences of a recurring task.
// CountInfinite (the zero value) means no cap. On the wire it is a
// positive integer or the string "infinite".
type Count int

// CountInfinite means the recurrence never runs out.
const CountInfinite Count = 0

// IsInfinite reports whether the count is unbounded.
func (c Count) IsInfinite() bool { return c <= 0 }

// Allows reports whether the n-th occurrence (1-based) is within the cap.
func (c Count) Allows(n int) bool {
	return c.IsInfinite() || n <= int(c)
}

func (c Count) String() string {
	if c.IsInfinite() {
		return "infinite"
	}
	return strconv.Itoa(int(c))
}

// ParseCount parses "infinite" or a positive integer.
func ParseCount(s string) (Count, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "infinite") {
		return CountInfinite, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, s)
	}
	return Count(n), nil
}

// MarshalJSON encodes the count as a number or "infinite".
func (c Count) MarshalJSON() ([]byte, error) {
	if c.IsInfinite() {
		return []byte(`"infinite"`), nil
	}
	return []byte(strconv.Itoa(int(c))), nil
}

// UnmarshalJSON accepts a number, a numeric string, "infinite" or null.
func (c *Count) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = CountInfinite
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode count: %w", err)
		}
		parsed, err := ParseCount(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode count: %w", err)
	}
	if f < 1 {
		*c = CountInfinite
		return nil
	}
	*c = Count(int(f))
	return nil
}

// MarshalYAML encodes the count like the JSON form.
func (c Count) MarshalYAML() (any, error) {
	if c.IsInfinite() {
		return "infinite", nil
	}
	return int(c), nil
}

// UnmarshalYAML accepts a number or "infinite".
func (c *Count) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("decode count: %w", err)
	}
	parsed, err := ParseCount(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// RecurrencePattern describes how a recurring task repeats.
// Fields are ordered to minimize memory padding.
type RecurrencePattern struct {
	Frequency  Frequency `json:"frequency" yaml:"frequency"`                         // daily, weekly, monthly, yearly
	DaysOfWeek []int     `json:"daysOfWeek,omitempty" yaml:"days_of_week,omitempty"` // 0=Sunday..6=Saturday (weekly only)
	Interval   int       `json:"interval" yaml:"interval"`                           // Every N units (>= 1)
	Count      Count     `json:"count" yaml:"count"`                                 // Occurrence cap, 0 = infinite
}

// Normalize returns a copy with the interval clamped to at least 1.
func (p RecurrencePattern) Normalize() RecurrencePattern {
	if p.Interval < 1 {
		p.Interval = 1
	}
	return p
}

// Validate checks the pattern for write-time errors.
func (p RecurrencePattern) Validate() error {
	if !p.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, p.Frequency)
	}
	if p.Interval < 1 {
		return fmt.Errorf("%w: interval must be at least 1", ErrInvalidPattern)
	}
	if p.Frequency == FrequencyWeekly && len(p.DaysOfWeek) == 0 {
		return fmt.Errorf("%w: weekly pattern needs at least one weekday", ErrInvalidPattern)
	}
	for _, d := range p.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidPattern, d)
		}
	}
	return nil
}

// Label renders the interval for display, e.g. "2 WEEKS".
func (p RecurrencePattern) Label() string {
	var unit string
	switch p.Frequency {
	case FrequencyDaily:
		unit = "DAY"
	case FrequencyWeekly:
		unit = "WEEK"
	case FrequencyMonthly:
		unit = "MONTH"
	case FrequencyYearly:
		unit = "YEAR"
	default:
		return ""
	}
	if p.Interval != 1 {
		unit += "S"
	}
	return fmt.Sprintf("%d %s", p.Interval, unit)
}

// ShouldIncludeDate reports whether check is an occurrence of a pattern
// anchored at start. Nothing before start qualifies. Weekly intervals
// count whole weeks from start, so the anchor floats with the start date.
// Monthly and yearly anchors on a day the target month lacks never match.
func ShouldIncludeDate(start, check Date, p RecurrencePattern) bool {
	if check.Before(start) {
		return false
	}
	p = p.Normalize()
	days := check.DaysSince(start)

	switch p.Frequency {
	case FrequencyDaily:
		return days%p.Interval == 0
	case FrequencyWeekly:
		return slices.Contains(p.DaysOfWeek, int(check.Weekday())) && (days/7)%p.Interval == 0
	case FrequencyMonthly:
		months := (check.Year()-start.Year())*12 + int(check.Month()) - int(start.Month())
		return check.Day() == start.Day() && months%p.Interval == 0
	case FrequencyYearly:
		years := check.Year() - start.Year()
		return check.Month() == start.Month() && check.Day() == start.Day() && years%p.Interval == 0
	default:
		return false
	}
}

// IsOccurrence reports whether check is a live occurrence of a pattern
// running from start through end (zero end = open): it qualifies, lies in
// range and, for a bounded count, within the cap and the scan bound.
func IsOccurrence(start, end, check Date, p RecurrencePattern) bool {
	if start.IsZero() || check.Before(start) || (!end.IsZero() && check.After(end)) {
		return false
	}
	if !ShouldIncludeDate(start, check, p) {
		return false
	}
	if p.Count.IsInfinite() {
		return true
	}
	n, ok := p.OrdinalOf(start, check)
	return ok && p.Count.Allows(n)
}

// Occurrences returns the qualifying dates from start through until
// (inclusive), honoring the count cap. The walk stops after MaxScanDays days.
func (p RecurrencePattern) Occurrences(start, until Date) []Date {
	var out []Date
	d := start
	for i := 0; i < MaxScanDays && !d.After(until); i++ {
		if ShouldIncludeDate(start, d, p) {
			if !p.Count.Allows(len(out) + 1) {
				break
			}
			out = append(out, d)
		}
		d = d.AddDays(1)
	}
	return out
}

// OrdinalOf returns the 1-based index of check among the occurrences
// starting at start. The second result is false when check is not an
// occurrence or lies beyond the scan bound. Counting stops early once
// the count cap is exceeded; the returned ordinal is then cap+1.
func (p RecurrencePattern) OrdinalOf(start, check Date) (int, bool) {
	if !ShouldIncludeDate(start, check, p) {
		return 0, false
	}
	n := 0
	d := start
	for i := 0; i < MaxScanDays && !d.After(check); i++ {
		if ShouldIncludeDate(start, d, p) {
			n++
			if !p.Count.Allows(n) {
				return n, true
			}
		}
		d = d.AddDays(1)
	}
	if d.After(check) {
		return n, true
	}
	return 0, false
}

// CountMatches counts the occurrences between start and end, capped at
// MaxScanDays days. It backs the automatic count of a bounded recurrence.
func (p RecurrencePattern) CountMatches(start, end Date) int {
	n := 0
	d := start
	for i := 0; i < MaxScanDays && !d.After(end); i++ {
		if ShouldIncludeDate(start, d, p) {
			n++
		}
		d = d.AddDays(1)
	}
	return n
}

// EndDateForCount returns the date of the count-th occurrence, or the
// zero date when the count is infinite or not reachable within the scan bound.
func (p RecurrencePattern) EndDateForCount(start Date) Date {
	if p.Count.IsInfinite() {
		return Date{}
	}
	n := 0
	d := start
	for i := 0; i < MaxScanDays; i++ {
		if ShouldIncludeDate(start, d, p) {
			n++
			if n == int(p.Count) {
				return d
			}
		}
		d = d.AddDays(1)
	}
	return Date{}
}
