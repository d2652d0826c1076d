package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase"
)

func TestToggleTask_Execute_Plain(t *testing.T) {
	// Setup
	e := newEnv(plainTask(1, "Laundry", today))
	uc := usecase.NewToggleTask(e.store, e.reminders, e.clock, e.logger)

	// Execute
	done, err := uc.Execute(context.Background(), usecase.ToggleTaskInput{Ref: domain.RootRef(1)})
	require.NoError(t, err)
	stored := e.store.Current().Task(1)

	// Assert
	assert.True(t, done.Completed)
	assert.True(t, done.Date.IsZero())
	assert.True(t, stored.Completed)
	assert.NotEmpty(t, stored.TimeCompleted)
	assert.NotEqual(t, "2026-01-01T00:00:00Z", stored.LastModified)
	assert.False(t, e.reminders.Armed[1])

	// Execute again
	reopened, err := uc.Execute(context.Background(), usecase.ToggleTaskInput{Ref: domain.RootRef(1)})
	require.NoError(t, err)

	// Assert
	assert.False(t, reopened.Completed)
	assert.Empty(t, e.store.Current().Task(1).TimeCompleted)
	assert.True(t, e.reminders.Armed[1])
}

func TestToggleTask_Execute_Recurring(t *testing.T) {
	// Setup
	e := newEnv(dailyTask(1, "Meditate", "2026-03-01", ""))
	uc := usecase.NewToggleTask(e.store, e.reminders, e.clock, e.logger)

	// Execute
	bare, err := uc.Execute(context.Background(), usecase.ToggleTaskInput{Ref: domain.RootRef(1)})
	require.NoError(t, err)
	inst, err := uc.Execute(context.Background(), usecase.ToggleTaskInput{
		Ref: domain.InstanceRef(1, d("2026-03-05")),
	})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, d(today), bare.Date)
	assert.True(t, bare.Completed)
	assert.Equal(t, d("2026-03-05"), inst.Date)
	assert.True(t, inst.Completed)

	stored := e.store.Current().Task(1)
	assert.False(t, stored.Completed, "root completion is per date")
	assert.True(t, stored.CompletedDates.Contains(d(today)))
	assert.True(t, stored.CompletedDates.Contains(d("2026-03-05")))

	// Execute: toggling the same instance again reopens it
	again, err := uc.Execute(context.Background(), usecase.ToggleTaskInput{
		Ref: domain.InstanceRef(1, d("2026-03-05")),
	})
	require.NoError(t, err)

	// Assert
	assert.False(t, again.Completed)
	assert.False(t, e.store.Current().Task(1).CompletedDates.Contains(d("2026-03-05")))
}

func TestToggleTask_Execute_Errors(t *testing.T) {
	tests := []struct {
		wantErr error
		ref     domain.TaskRef
		name    string
	}{
		{domain.ErrTaskNotFound, domain.RootRef(99), "missing task"},
		{domain.ErrNotRecurring, domain.InstanceRef(1, d(today)), "instance of plain task"},
		{domain.ErrInvalidTaskRef, domain.RootRef(2), "recurring without occurrence today"},
		{domain.ErrInvalidTaskRef, domain.InstanceRef(2, d("2026-03-05")), "date before the recurrence starts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			e := newEnv(plainTask(1, "Plain", today), dailyTask(2, "Later", "2026-03-10", ""))
			uc := usecase.NewToggleTask(e.store, e.reminders, e.clock, e.logger)

			// Execute
			_, err := uc.Execute(context.Background(), usecase.ToggleTaskInput{Ref: tt.ref})

			// Assert
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, e.store.SaveCount)
		})
	}
}

func TestToggleTask_Execute_ClearsStrayCompletedDate(t *testing.T) {
	// Setup
	task := dailyTask(1, "Meditate", "2026-03-01", "")
	task.RecurrencePattern.Interval = 2
	task.CompletedDates = domain.DateSet{d("2026-03-02")}
	e := newEnv(task)
	uc := usecase.NewToggleTask(e.store, e.reminders, e.clock, e.logger)

	// Execute
	out, err := uc.Execute(context.Background(), usecase.ToggleTaskInput{Ref: domain.InstanceRef(1, d("2026-03-02"))})
	_, offPatternErr := uc.Execute(context.Background(), usecase.ToggleTaskInput{Ref: domain.InstanceRef(1, d("2026-03-06"))})

	// Assert
	require.NoError(t, err)
	assert.False(t, out.Completed)
	require.ErrorIs(t, offPatternErr, domain.ErrInvalidTaskRef)
	assert.Empty(t, e.store.Current().Task(1).CompletedDates)
}
