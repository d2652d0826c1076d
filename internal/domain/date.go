package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without time zone.
// The zero value means "unset".
type Date struct {
	t time.Time // midnight UTC of the date
}

// NewDate returns the date for the given year, month and day.
// Out-of-range values are normalized the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the local wall-clock date of t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// MustParseDate is like ParseDate but panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// String returns the YYYY-MM-DD form, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) Year() int { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// AddDays returns the date n calendar days later (earlier if n < 0).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths returns the date n months later, normalized like time.AddDate.
func (d Date) AddMonths(n int) Date {
	return Date{t: d.t.AddDate(0, n, 0)}
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// DaysSince returns the number of calendar days from o to d.
// Both dates are anchored at UTC midnight so DST never skews the count.
func (d Date) DaysSince(o Date) int {
	return int((d.t.Unix() - o.t.Unix()) / 86400)
}

// At returns the local time at hour:minute on this date.
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
}

// MarshalJSON encodes the date as "YYYY-MM-DD" and the zero date as "".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", "" and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler so dates work as map keys and in YAML.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthGrid returns the cells of a calendar month view.
// Leading zero dates pad the first week so that index 0 is a Sunday.
func MonthGrid(year int, month time.Month) []Date {
	first := NewDate(year, month, 1)
	last := first.AddMonths(1).AddDays(-1)
	cells := make([]Date, int(first.Weekday()), int(first.Weekday())+last.Day())
	for day := 1; day <= last.Day(); day++ {
		cells = append(cells, NewDate(year, month, day))
	}
	return cells
}

// DateSet is an unordered set of dates, encoded as a JSON array of date strings.
type DateSet []Date

// MarshalJSON encodes a nil set as [].
func (s DateSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Date(s))
}

// Contains reports whether d is in the set.
func (s DateSet) Contains(d Date) bool {
	for _, x := range s {
		if x.Equal(d) {
			return true
		}
	}
	return false
}

// With returns the set with d added. It is a no-op if d is present.
func (s DateSet) With(d Date) DateSet {
	if s.Contains(d) {
		return s
	}
	return append(s, d)
}

// Without returns the set with d removed.
func (s DateSet) Without(d Date) DateSet {
	out := s[:0:0]
	for _, x := range s {
		if !x.Equal(d) {
			out = append(out, x)
		}
	}
	return out
}

// Toggle adds d if absent, removes it otherwise.
func (s DateSet) Toggle(d Date) DateSet {
	if s.Contains(d) {
		return s.Without(d)
	}
	return s.With(d)
}
