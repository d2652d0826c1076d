package usecase_test

import (
	"time"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/testutil"
)

// Monday.
const today = "2026-03-02"

func d(s string) domain.Date { return domain.MustParseDate(s) }

func plainTask(id int64, name, date string) *domain.Task {
	t := &domain.Task{ID: id, Name: name, LastModified: "2026-01-01T00:00:00Z"}
	if date != "" {
		t.Date = d(date)
	}
	t.Sanitize()
	return t
}

func dailyTask(id int64, name, start, end string) *domain.Task {
	t := plainTask(id, name, start)
	t.Recurring, t.IsRecurringRoot = true, true
	t.RecurrencePattern = &domain.RecurrencePattern{Frequency: domain.FrequencyDaily, Interval: 1}
	if end != "" {
		t.EndDate = d(end)
	}
	return t
}

type env struct {
	store     *testutil.MockSnapshotStore
	reminders *testutil.MockReminderScheduler
	clock     *testutil.MockClock
	logger    *testutil.MockLogger
}

func newEnv(tasks ...*domain.Task) *env {
	return &env{
		store:     testutil.NewMockSnapshotStoreWith(tasks...),
		reminders: testutil.NewMockReminderScheduler(),
		clock:     testutil.ClockAt(today),
		logger:    &testutil.MockLogger{},
	}
}

func (e *env) now() time.Time { return e.clock.Now() }

func ptr[T any](v T) *T { return &v }
