package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase"
)

func TestDeleteTask_Execute_Plain(t *testing.T) {
	// Setup
	a, b := plainTask(1, "A", today), plainTask(2, "B", today)
	domain.AddDependency([]*domain.Task{a, b}, domain.RootRef(2), domain.RootRef(1), domain.DependencyPredecessor)
	e := newEnv(a, b)
	e.reminders.Schedule(a)
	uc := usecase.NewDeleteTask(e.store, e.reminders, e.clock, e.logger)

	// Execute
	out, err := uc.Execute(context.Background(), usecase.DeleteTaskInput{Ref: domain.RootRef(1)})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, out.Removed)
	snap := e.store.Current()
	assert.Nil(t, snap.Task(1))
	assert.Equal(t, []int64{1}, snap.DeletedTaskIDs)
	assert.Empty(t, snap.Task(2).Predecessors)
	assert.Equal(t, []int64{1}, e.reminders.Cancelled)
	assert.False(t, e.reminders.Armed[1])
}

func TestDeleteTask_Execute_RecurringNeedsMode(t *testing.T) {
	// Setup
	e := newEnv(dailyTask(1, "Daily", "2026-03-01", ""))
	uc := usecase.NewDeleteTask(e.store, e.reminders, e.clock, e.logger)

	// Execute
	_, err := uc.Execute(context.Background(), usecase.DeleteTaskInput{Ref: domain.InstanceRef(1, d(today))})

	// Assert
	require.ErrorIs(t, err, domain.ErrRecurringChoiceRequired)
	assert.NotNil(t, e.store.Current().Task(1))
	assert.Zero(t, e.store.SaveCount)
}

func TestDeleteTask_Execute_Instance(t *testing.T) {
	// Setup
	e := newEnv(dailyTask(1, "Daily", "2026-03-01", ""))
	uc := usecase.NewDeleteTask(e.store, e.reminders, e.clock, e.logger)

	// Execute
	out, err := uc.Execute(context.Background(), usecase.DeleteTaskInput{
		Ref:  domain.InstanceRef(1, d(today)),
		Mode: usecase.DeleteInstance,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, d(today), out.Excluded)
	assert.Empty(t, out.Removed)
	root := e.store.Current().Task(1)
	require.NotNil(t, root)
	assert.True(t, root.ExcludedDates.Contains(d(today)))
	assert.Empty(t, e.store.Current().DeletedTaskIDs)

	m := domain.NewMaterializer(e.clock)
	assert.Empty(t, m.InstancesForDate(root, d(today)))
	assert.Len(t, m.InstancesForDate(root, d("2026-03-03")), 1)
}

func TestDeleteTask_Execute_InstanceNeedsDate(t *testing.T) {
	// Setup
	e := newEnv(dailyTask(1, "Daily", "2026-03-01", ""))
	uc := usecase.NewDeleteTask(e.store, e.reminders, e.clock, e.logger)

	// Execute
	_, err := uc.Execute(context.Background(), usecase.DeleteTaskInput{
		Ref:  domain.RootRef(1),
		Mode: usecase.DeleteInstance,
	})

	// Assert
	require.ErrorIs(t, err, domain.ErrInvalidTaskRef)
}

func TestDeleteTask_Execute_InstanceMustBeOccurrence(t *testing.T) {
	// Setup
	task := dailyTask(1, "Every other day", "2026-03-01", "2026-03-31")
	task.RecurrencePattern.Interval = 2
	e := newEnv(task)
	uc := usecase.NewDeleteTask(e.store, e.reminders, e.clock, e.logger)

	tests := []struct {
		name string
		date string
	}{
		{name: "off-pattern day", date: "2026-03-02"},
		{name: "before start", date: "2026-02-27"},
		{name: "after end", date: "2026-04-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Execute
			_, err := uc.Execute(context.Background(), usecase.DeleteTaskInput{
				Ref:  domain.InstanceRef(1, d(tt.date)),
				Mode: usecase.DeleteInstance,
			})

			// Assert
			require.ErrorIs(t, err, domain.ErrInvalidTaskRef)
			assert.Empty(t, e.store.Current().Task(1).ExcludedDates)
		})
	}
}

func TestDeleteTask_Execute_AllFuture(t *testing.T) {
	// Setup
	root := dailyTask(1, "Daily", "2026-03-01", "")
	rootID := int64(1)
	legacy := plainTask(5, "Daily", "2026-03-01")
	legacy.RecurringRootID = &rootID
	other := plainTask(9, "Other", today)
	e := newEnv(root, legacy, other)
	uc := usecase.NewDeleteTask(e.store, e.reminders, e.clock, e.logger)

	// Execute
	out, err := uc.Execute(context.Background(), usecase.DeleteTaskInput{
		Ref:  domain.InstanceRef(1, d(today)),
		Mode: usecase.DeleteAllFuture,
	})

	// Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 5}, out.Removed)
	snap := e.store.Current()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, int64(9), snap.Tasks[0].ID)
	assert.ElementsMatch(t, []int64{1, 5}, snap.DeletedTaskIDs)
}

func TestDeleteTask_Execute_NotFound(t *testing.T) {
	// Setup
	e := newEnv()
	uc := usecase.NewDeleteTask(e.store, e.reminders, e.clock, e.logger)

	// Execute
	_, err := uc.Execute(context.Background(), usecase.DeleteTaskInput{Ref: domain.RootRef(3)})

	// Assert
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}
