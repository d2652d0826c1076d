package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase/shared"
)

// ToggleTaskInput contains the parameters for toggling completion.
type ToggleTaskInput struct {
	Ref domain.TaskRef // Root or instance to toggle
}

// ToggleTaskOutput contains the result of toggling a task.
type ToggleTaskOutput struct {
	Task      *domain.Task // Root after the change
	Date      domain.Date  // Occurrence date for recurring roots
	Completed bool         // New completion state
}

// ToggleTask is the use case for marking a task or occurrence done or open.
type ToggleTask struct {
	store     domain.SnapshotStore
	reminders domain.ReminderScheduler
	clock     domain.Clock
	logger    domain.Logger
}

// NewToggleTask creates a new ToggleTask use case.
func NewToggleTask(
	store domain.SnapshotStore,
	reminders domain.ReminderScheduler,
	clock domain.Clock,
	logger domain.Logger,
) *ToggleTask {
	return &ToggleTask{
		store:     store,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// Execute flips completion. An instance ref toggles its date in the root's
// completed dates. A bare ref to a recurring root toggles today's occurrence.
func (uc *ToggleTask) Execute(_ context.Context, in ToggleTaskInput) (*ToggleTaskOutput, error) {
	now := uc.clock.Now()
	out := &ToggleTaskOutput{}

	err := uc.store.Update(func(snap *domain.Snapshot) error {
		task, err := shared.GetTask(snap, in.Ref)
		if err != nil {
			return err
		}

		if !task.IsRecurringRoot {
			if in.Ref.IsInstance() {
				return fmt.Errorf("%w: %s", domain.ErrNotRecurring, in.Ref)
			}
			task.Completed = !task.Completed
			task.TimeCompleted = ""
			if task.Completed {
				task.TimeCompleted = now.UTC().Format(time.RFC3339)
			}
			task.Touch(now)
			out.Task, out.Completed = task.Clone(), task.Completed
			return nil
		}

		date := in.Ref.Date()
		if date.IsZero() {
			today := domain.DateOf(now)
			m := domain.Materializer{Today: func() domain.Date { return today }}
			if len(m.InstancesForDate(task, today)) == 0 {
				return fmt.Errorf("%w: %d has no occurrence today, use %d-YYYY-MM-DD",
					domain.ErrInvalidTaskRef, task.ID, task.ID)
			}
			date = today
		}
		if !task.HasOccurrence(date) && !task.CompletedDates.Contains(date) {
			return fmt.Errorf("%w: %s is not an occurrence of #%d", domain.ErrInvalidTaskRef, date, task.ID)
		}
		task.CompletedDates = task.CompletedDates.Toggle(date)
		task.Touch(now)
		out.Task, out.Date, out.Completed = task.Clone(), date, task.CompletedDates.Contains(date)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("toggle task: %w", err)
	}

	uc.reminders.Schedule(out.Task)
	state := "reopened"
	if out.Completed {
		state = "completed"
	}
	if out.Date.IsZero() {
		uc.logger.Info(out.Task.ID, "task", state)
	} else {
		uc.logger.Info(out.Task.ID, "task", fmt.Sprintf("%s occurrence %s", state, out.Date))
	}
	return out, nil
}
