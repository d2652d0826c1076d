package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) Date { return MustParseDate(s) }

func TestShouldIncludeDate_StartIsAlwaysFirstOccurrence(t *testing.T) {
	starts := []string{"2026-01-31", "2024-02-29", "2026-03-01", "2026-10-17"}
	for _, s := range starts {
		start := d(s)
		for _, freq := range []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly} {
			for interval := 1; interval <= 4; interval++ {
				p := RecurrencePattern{
					Frequency:  freq,
					Interval:   interval,
					DaysOfWeek: []int{int(start.Weekday())},
				}
				assert.True(t, ShouldIncludeDate(start, start, p), "%s %s every %d", s, freq, interval)
			}
		}
	}
}

func TestShouldIncludeDate(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		check   string
		pattern RecurrencePattern
		want    bool
	}{
		{"before start", "2026-03-10", "2026-03-09", RecurrencePattern{Frequency: FrequencyDaily, Interval: 1}, false},
		{"daily every 3 hit", "2026-03-01", "2026-03-07", RecurrencePattern{Frequency: FrequencyDaily, Interval: 3}, true},
		{"daily every 3 miss", "2026-03-01", "2026-03-08", RecurrencePattern{Frequency: FrequencyDaily, Interval: 3}, false},
		{"daily across DST", "2026-03-01", "2026-03-31", RecurrencePattern{Frequency: FrequencyDaily, Interval: 10}, true},
		{"weekly day match", "2026-03-01", "2026-03-04", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{0, 3}}, true},
		{"weekly day mismatch", "2026-03-01", "2026-03-05", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{0, 3}}, false},
		{"biweekly off week", "2026-03-01", "2026-03-08", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 2, DaysOfWeek: []int{0}}, false},
		{"biweekly on week", "2026-03-01", "2026-03-15", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 2, DaysOfWeek: []int{0}}, true},
		// Weeks count from the start date, so a Wednesday start puts the
		// following Monday in week 0.
		{"floating week anchor", "2026-03-04", "2026-03-09", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 2, DaysOfWeek: []int{1}}, true},
		{"monthly same day", "2026-01-15", "2026-04-15", RecurrencePattern{Frequency: FrequencyMonthly, Interval: 1}, true},
		{"monthly every 2 miss", "2026-01-15", "2026-04-15", RecurrencePattern{Frequency: FrequencyMonthly, Interval: 2}, false},
		{"monthly 31st skips short month", "2026-01-31", "2026-02-28", RecurrencePattern{Frequency: FrequencyMonthly, Interval: 1}, false},
		{"monthly 31st hits March", "2026-01-31", "2026-03-31", RecurrencePattern{Frequency: FrequencyMonthly, Interval: 1}, true},
		{"yearly leap day skips", "2024-02-29", "2025-02-28", RecurrencePattern{Frequency: FrequencyYearly, Interval: 1}, false},
		{"yearly leap day hits", "2024-02-29", "2028-02-29", RecurrencePattern{Frequency: FrequencyYearly, Interval: 1}, true},
		{"zero interval clamps", "2026-03-01", "2026-03-02", RecurrencePattern{Frequency: FrequencyDaily, Interval: 0}, true},
		{"negative interval clamps", "2026-03-01", "2026-03-02", RecurrencePattern{Frequency: FrequencyDaily, Interval: -5}, true},
		{"unknown frequency", "2026-03-01", "2026-03-01", RecurrencePattern{Frequency: "hourly", Interval: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldIncludeDate(d(tt.start), d(tt.check), tt.pattern)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecurrencePattern_Occurrences_RespectsCount(t *testing.T) {
	p := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{0, 3}, Count: 4}

	got := p.Occurrences(d("2026-03-01"), d("2027-01-01"))

	assert.Equal(t, []Date{d("2026-03-01"), d("2026-03-04"), d("2026-03-08"), d("2026-03-11")}, got)
}

func TestRecurrencePattern_CountMatches(t *testing.T) {
	p := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{1, 3, 5}}

	assert.Equal(t, 6, p.CountMatches(d("2026-03-02"), d("2026-03-13")))
	assert.Equal(t, 0, p.CountMatches(d("2026-03-02"), d("2026-03-01")))
}

func TestRecurrencePattern_EndDateForCount(t *testing.T) {
	p := RecurrencePattern{Frequency: FrequencyDaily, Interval: 2, Count: 3}
	assert.Equal(t, d("2026-03-05"), p.EndDateForCount(d("2026-03-01")))

	p.Count = CountInfinite
	assert.True(t, p.EndDateForCount(d("2026-03-01")).IsZero())
}

func TestRecurrencePattern_Validate(t *testing.T) {
	assert.NoError(t, RecurrencePattern{Frequency: FrequencyDaily, Interval: 1}.Validate())
	assert.ErrorIs(t, RecurrencePattern{Frequency: "hourly", Interval: 1}.Validate(), ErrInvalidFrequency)
	assert.ErrorIs(t, RecurrencePattern{Frequency: FrequencyDaily}.Validate(), ErrInvalidPattern)
	assert.ErrorIs(t, RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1}.Validate(), ErrInvalidPattern)
	assert.ErrorIs(t, RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{7}}.Validate(), ErrInvalidPattern)
}

func TestRecurrencePattern_Label(t *testing.T) {
	assert.Equal(t, "1 DAY", RecurrencePattern{Frequency: FrequencyDaily, Interval: 1}.Label())
	assert.Equal(t, "2 WEEKS", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 2}.Label())
	assert.Equal(t, "", RecurrencePattern{Frequency: "x", Interval: 2}.Label())
}

func TestCount_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want Count
	}{
		{`"infinite"`, CountInfinite},
		{`5`, 5},
		{`"7"`, 7},
		{`null`, CountInfinite},
		{`0`, CountInfinite},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var c Count
			require.NoError(t, json.Unmarshal([]byte(tt.in), &c))
			assert.Equal(t, tt.want, c)
		})
	}

	var c Count
	assert.ErrorIs(t, json.Unmarshal([]byte(`"lots"`), &c), ErrInvalidCount)

	out, err := json.Marshal(RecurrencePattern{Frequency: FrequencyDaily, Interval: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"frequency":"daily","interval":1,"count":"infinite"}`, string(out))
}
