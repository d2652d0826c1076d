package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedToday(s string) Materializer {
	today := d(s)
	return Materializer{Today: func() Date { return today }}
}

func dates(occs []Occurrence) []Date {
	out := make([]Date, len(occs))
	for i, o := range occs {
		out[i] = o.Date
	}
	return out
}

func recurringTask(id int64, start string, p RecurrencePattern) *Task {
	return &Task{
		ID:                id,
		Name:              "recurring",
		Date:              d(start),
		Recurring:         true,
		IsRecurringRoot:   true,
		RecurrencePattern: &p,
	}
}

func TestMaterializer_WeeklySunWedCountFour(t *testing.T) {
	// Setup
	m := fixedToday("2026-03-01")
	task := recurringTask(1, "2026-03-01", RecurrencePattern{
		Frequency:  FrequencyWeekly,
		Interval:   1,
		DaysOfWeek: []int{0, 3},
		Count:      4,
	})

	// Execute
	got := m.InstancesForRange(task, d("2026-02-01"), d("2026-06-30"))

	// Assert
	assert.Equal(t, []Date{d("2026-03-01"), d("2026-03-04"), d("2026-03-08"), d("2026-03-11")}, dates(got))
	for _, o := range got {
		assert.True(t, o.IsInstance())
		assert.Equal(t, int64(1), o.Ref.Resolve())
		require.NotNil(t, o.Task.RecurringRootID)
		assert.Equal(t, int64(1), *o.Task.RecurringRootID)
		assert.False(t, o.Task.IsRecurringRoot)
		assert.Equal(t, o.Date, o.Task.Date)
	}
	assert.Equal(t, "1-2026-03-04", got[1].ID())
}

func TestMaterializer_CarryOverUrgentOnlyOnEndDate(t *testing.T) {
	// Setup
	m := fixedToday("2026-01-01")
	task := &Task{
		ID:        2,
		Name:      "B",
		Date:      d("2026-01-01"),
		EndDate:   d("2026-01-05"),
		CarryOver: true,
		Urgent:    true,
	}

	// Execute & Assert
	for day := 1; day <= 4; day++ {
		date := NewDate(2026, 1, day)
		occs := m.ForDate([]*Task{task}, date)
		require.Len(t, occs, 1, date.String())
		assert.False(t, occs[0].Task.Urgent, date.String())
		assert.False(t, occs[0].IsInstance())
	}
	occs := m.ForDate([]*Task{task}, d("2026-01-05"))
	require.Len(t, occs, 1)
	assert.True(t, occs[0].Task.Urgent)

	assert.Empty(t, m.ForDate([]*Task{task}, d("2026-01-06")))
	assert.Empty(t, m.ForDate([]*Task{task}, d("2025-12-31")))
	assert.True(t, task.Urgent, "stored task must not be modified")
}

func TestMaterializer_CarryOverCompletedStaysOnStartDate(t *testing.T) {
	m := fixedToday("2026-01-03")
	task := &Task{ID: 3, Name: "C", Date: d("2026-01-01"), CarryOver: true, Completed: true}

	assert.Len(t, m.InstancesForDate(task, d("2026-01-01")), 1)
	assert.Empty(t, m.InstancesForDate(task, d("2026-01-02")))
	assert.Empty(t, m.InstancesForDate(task, d("2026-01-03")))
}

func TestMaterializer_CarryOverOpenEnded(t *testing.T) {
	m := fixedToday("2026-01-01")
	task := &Task{ID: 4, Name: "D", Date: d("2026-01-01"), CarryOver: true, Urgent: true}

	occs := m.InstancesForDate(task, d("2030-05-05"))
	require.Len(t, occs, 1)
	assert.False(t, occs[0].Task.Urgent)
}

func TestMaterializer_PlainTask(t *testing.T) {
	m := fixedToday("2026-01-01")
	task := &Task{ID: 5, Name: "E", Date: d("2026-01-02"), Urgent: true}

	assert.Empty(t, m.InstancesForDate(task, d("2026-01-01")))
	occs := m.InstancesForDate(task, d("2026-01-02"))
	require.Len(t, occs, 1)
	assert.True(t, occs[0].Task.Urgent)
	assert.Equal(t, "5", occs[0].ID())

	undated := &Task{ID: 6, Name: "F"}
	assert.Empty(t, m.InstancesForRange(undated, d("2026-01-01"), d("2026-12-31")))
}

func TestMaterializer_RecurringRootWithoutPatternIsInvisible(t *testing.T) {
	m := fixedToday("2026-01-01")
	task := &Task{ID: 7, Name: "G", Date: d("2026-01-01"), Recurring: true, IsRecurringRoot: true}

	assert.Empty(t, m.InstancesForRange(task, d("2026-01-01"), d("2026-01-31")))
}

func TestMaterializer_CountFiveYieldsFiveIncreasingDates(t *testing.T) {
	patterns := []RecurrencePattern{
		{Frequency: FrequencyDaily, Interval: 3, Count: 5},
		{Frequency: FrequencyWeekly, Interval: 2, DaysOfWeek: []int{1, 4}, Count: 5},
		{Frequency: FrequencyMonthly, Interval: 1, Count: 5},
		{Frequency: FrequencyYearly, Interval: 1, Count: 5},
	}
	m := fixedToday("2026-01-01")
	for _, p := range patterns {
		t.Run(string(p.Frequency), func(t *testing.T) {
			task := recurringTask(8, "2026-01-01", p)
			got := dates(m.InstancesForRange(task, d("2026-01-01"), d("2031-12-31")))

			require.Len(t, got, 5)
			for i, date := range got {
				assert.True(t, ShouldIncludeDate(task.Date, date, p))
				if i > 0 {
					assert.True(t, got[i-1].Before(date))
				}
			}
		})
	}
}

func TestMaterializer_WeeklyOnlyOnSelectedDays(t *testing.T) {
	m := fixedToday("2026-01-01")
	task := recurringTask(9, "2026-01-04", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{0, 2, 6}})

	for _, o := range m.InstancesForRange(task, d("2026-01-01"), d("2026-04-01")) {
		assert.Contains(t, []int{0, 2, 6}, int(o.Date.Weekday()))
		assert.Equal(t, InstanceRef(9, o.Date), o.Ref)
	}
}

func TestMaterializer_ExcludedDateRemovesOnlyThatOccurrence(t *testing.T) {
	// Setup
	m := fixedToday("2026-01-01")
	p := RecurrencePattern{Frequency: FrequencyDaily, Interval: 2, Count: 6}
	task := recurringTask(10, "2026-01-01", p)
	before := dates(m.InstancesForRange(task, d("2026-01-01"), d("2026-02-28")))

	// Execute
	task.ExcludedDates = task.ExcludedDates.With(d("2026-01-05"))
	after := dates(m.InstancesForRange(task, d("2026-01-01"), d("2026-02-28")))

	// Assert
	require.Len(t, before, 6)
	assert.Len(t, after, 5)
	var expected []Date
	for _, date := range before {
		if !date.Equal(d("2026-01-05")) {
			expected = append(expected, date)
		}
	}
	assert.Equal(t, expected, after, "tombstones must not free up a slot")
}

func TestMaterializer_RecurringCompletionPerOccurrence(t *testing.T) {
	m := fixedToday("2026-01-01")
	task := recurringTask(11, "2026-01-01", RecurrencePattern{Frequency: FrequencyDaily, Interval: 1})
	task.CompletedDates = DateSet{d("2026-01-02")}

	occs := m.InstancesForRange(task, d("2026-01-01"), d("2026-01-03"))

	require.Len(t, occs, 3)
	assert.False(t, occs[0].Task.Completed)
	assert.True(t, occs[1].Task.Completed)
	assert.False(t, occs[2].Task.Completed)
}

func TestMaterializer_RecurringUrgentLastInstance(t *testing.T) {
	m := fixedToday("2026-01-01")

	t.Run("bounded by end date", func(t *testing.T) {
		task := recurringTask(12, "2026-01-01", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{4}})
		task.EndDate = d("2026-01-31")
		task.Urgent = true

		occs := m.InstancesForRange(task, d("2026-01-01"), d("2026-02-28"))

		require.Len(t, occs, 5)
		for _, o := range occs[:4] {
			assert.False(t, o.Task.Urgent, o.Date.String())
		}
		assert.True(t, occs[4].Task.Urgent)
		assert.Equal(t, d("2026-01-29"), occs[4].Date)
	})

	t.Run("bounded by count before end date", func(t *testing.T) {
		task := recurringTask(13, "2026-01-01", RecurrencePattern{Frequency: FrequencyDaily, Interval: 1, Count: 3})
		task.EndDate = d("2026-01-31")
		task.Urgent = true

		occs := m.InstancesForRange(task, d("2026-01-01"), d("2026-01-31"))

		require.Len(t, occs, 3)
		assert.True(t, occs[2].Task.Urgent)
		assert.False(t, occs[1].Task.Urgent)
	})

	t.Run("infinite without end date is never urgent", func(t *testing.T) {
		task := recurringTask(14, "2026-01-01", RecurrencePattern{Frequency: FrequencyDaily, Interval: 1})
		task.Urgent = true

		for _, o := range m.InstancesForRange(task, d("2026-01-01"), d("2026-03-01")) {
			assert.False(t, o.Task.Urgent)
		}
	})
}

func TestMaterializer_CarryRecurringResting(t *testing.T) {
	p := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{1}}
	newTask := func() *Task {
		task := recurringTask(15, "2026-01-05", p)
		task.CarryOver = true
		task.EndDate = d("2026-02-02")
		return task
	}

	t.Run("rests on first occurrence on or after today", func(t *testing.T) {
		m := fixedToday("2026-01-14")
		got := m.InstancesForRange(newTask(), d("2026-01-01"), d("2026-02-28"))

		require.Len(t, got, 1)
		assert.Equal(t, d("2026-01-19"), got[0].Date)
		assert.True(t, got[0].CarryRecurring)
		assert.False(t, got[0].Task.Completed)
	})

	t.Run("rests on last occurrence when all are past", func(t *testing.T) {
		m := fixedToday("2026-03-01")
		got := m.InstancesForRange(newTask(), d("2026-01-01"), d("2026-02-28"))

		require.Len(t, got, 1)
		assert.Equal(t, d("2026-02-02"), got[0].Date)
	})

	t.Run("excluded dates are skipped", func(t *testing.T) {
		m := fixedToday("2026-01-14")
		task := newTask()
		task.ExcludedDates = DateSet{d("2026-01-19")}

		got := m.InstancesForRange(task, d("2026-01-01"), d("2026-02-28"))

		require.Len(t, got, 1)
		assert.Equal(t, d("2026-01-26"), got[0].Date)
	})

	t.Run("urgent only on final occurrence", func(t *testing.T) {
		task := newTask()
		task.Urgent = true

		early := fixedToday("2026-01-14").InstancesForRange(task, d("2026-01-01"), d("2026-02-28"))
		late := fixedToday("2026-01-30").InstancesForRange(task, d("2026-01-01"), d("2026-02-28"))

		require.Len(t, early, 1)
		require.Len(t, late, 1)
		assert.False(t, early[0].Task.Urgent)
		assert.True(t, late[0].Task.Urgent)
	})
}

func TestMaterializer_CarryRecurringCompletionHidesElsewhere(t *testing.T) {
	// Setup
	m := fixedToday("2026-01-14")
	task := recurringTask(16, "2026-01-05", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{1}})
	task.CarryOver = true
	resting := m.InstancesForDate(task, d("2026-01-19"))
	require.Len(t, resting, 1)

	// Execute: complete on the resting date
	task.CompletedDates = task.CompletedDates.With(d("2026-01-19"))

	// Assert
	got := m.InstancesForRange(task, d("2026-01-01"), d("2026-12-31"))
	require.Len(t, got, 1)
	assert.Equal(t, d("2026-01-19"), got[0].Date)
	assert.True(t, got[0].Task.Completed)
	for _, o := range got {
		assert.True(t, o.Task.Completed, "task must not appear pending on %s", o.Date)
	}
}

func TestMaterializer_CarryRecurringRestsOnOneDateForEveryQuery(t *testing.T) {
	// Setup
	m := fixedToday("2026-10-17")
	task := recurringTask(18, "2014-06-01", RecurrencePattern{Frequency: FrequencyYearly, Interval: 3})
	task.CarryOver = true

	// Execute
	past := m.InstancesForDate(task, d("2020-06-01"))
	future := m.InstancesForDate(task, d("2029-06-01"))
	all := m.InstancesForRange(task, d("2014-01-01"), d("2035-12-31"))

	// Assert
	assert.Empty(t, past)
	require.Len(t, future, 1)
	assert.Equal(t, []Date{d("2029-06-01")}, dates(all))
}

func TestMaterializer_CarryRecurringIgnoresStrayCompletedDates(t *testing.T) {
	// Setup
	m := fixedToday("2026-01-14")
	task := recurringTask(19, "2026-01-05", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{1}})
	task.CarryOver = true
	task.CompletedDates = DateSet{d("2026-01-07")}

	// Execute
	got := m.InstancesForRange(task, d("2026-01-01"), d("2026-02-28"))

	// Assert
	require.Len(t, got, 1)
	assert.Equal(t, d("2026-01-19"), got[0].Date)
	assert.False(t, got[0].Task.Completed)
}

func TestMaterializer_ScanBound(t *testing.T) {
	// Setup: the count never runs out and the end date lies beyond the scan bound
	m := fixedToday("2100-01-01")
	p := RecurrencePattern{Frequency: FrequencyYearly, Interval: 1, Count: 1 << 40}
	newTask := func() *Task {
		task := recurringTask(20, "2026-01-01", p)
		task.EndDate = d("2199-12-31")
		return task
	}
	carry := newTask()
	carry.CarryOver = true

	// Execute
	inBound := m.InstancesForDate(newTask(), d("2053-01-01"))
	outOfBound := m.InstancesForDate(newTask(), d("2054-01-01"))
	ranged := m.InstancesForRange(newTask(), d("2026-01-01"), d("2199-12-31"))
	resting := m.InstancesForRange(carry, d("2026-01-01"), d("2199-12-31"))
	lastOrdinal, lastOK := p.OrdinalOf(d("2026-01-01"), d("2053-01-01"))
	_, beyondOK := p.OrdinalOf(d("2026-01-01"), d("2054-01-01"))

	// Assert
	assert.Len(t, inBound, 1)
	assert.Empty(t, outOfBound)
	require.Len(t, ranged, 28)
	assert.Equal(t, d("2053-01-01"), ranged[27].Date)
	assert.Equal(t, []Date{d("2053-01-01")}, dates(resting))
	assert.True(t, lastOK)
	assert.Equal(t, 28, lastOrdinal)
	assert.False(t, beyondOK)
	assert.True(t, p.EndDateForCount(d("2026-01-01")).IsZero())
}

func TestMaterializer_DaysOfWeekChangeKeepsPastIdentity(t *testing.T) {
	m := fixedToday("2026-03-01")
	task := recurringTask(17, "2026-03-01", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{0, 3}})
	before := m.InstancesForDate(task, d("2026-03-04"))

	task.RecurrencePattern.DaysOfWeek = []int{0, 3, 5}
	after := m.InstancesForDate(task, d("2026-03-04"))

	require.Len(t, before, 1)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID(), after[0].ID())
}

func TestMaterializer_ForRangeOrdersByDate(t *testing.T) {
	m := fixedToday("2026-01-01")
	tasks := []*Task{
		{ID: 1, Name: "late", Date: d("2026-01-03")},
		{ID: 2, Name: "early", Date: d("2026-01-01")},
	}

	got := m.ForRange(tasks, d("2026-01-01"), d("2026-01-05"))

	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].Task.Name)
}

func TestSortOccurrences(t *testing.T) {
	occs := []Occurrence{
		{Task: &Task{Name: "b"}},
		{Task: &Task{Name: "z", Time: "08:00"}},
		{Task: &Task{Name: "a"}},
		{Task: &Task{Name: "y", Time: "07:30"}},
	}

	SortOccurrences(occs)

	var names []string
	for _, o := range occs {
		names = append(names, o.Task.Name)
	}
	assert.Equal(t, []string{"y", "z", "a", "b"}, names)
}
