package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase/shared"
)

// DeleteMode chooses how a recurring task is deleted.
type DeleteMode string

// Delete modes.
const (
	DeleteAsk       DeleteMode = ""         // Fail with ErrRecurringChoiceRequired for recurring tasks
	DeleteInstance  DeleteMode = "instance" // Tombstone one occurrence
	DeleteAllFuture DeleteMode = "all"      // Remove the root and everything generated from it
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	Ref  domain.TaskRef // Task or occurrence to delete
	Mode DeleteMode     // Required when Ref resolves to a recurring task
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Excluded domain.Date // Tombstoned occurrence (instance mode)
	Removed  []int64     // Removed root IDs
}

// DeleteTask is the use case for deleting a task or one of its occurrences.
type DeleteTask struct {
	store     domain.SnapshotStore
	reminders domain.ReminderScheduler
	logger    domain.Logger
	clock     domain.Clock
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(
	store domain.SnapshotStore,
	reminders domain.ReminderScheduler,
	clock domain.Clock,
	logger domain.Logger,
) *DeleteTask {
	return &DeleteTask{
		store:     store,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// Execute deletes the task. Plain tasks are removed along with their
// dependency edges. Recurring tasks need a mode.
func (uc *DeleteTask) Execute(_ context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	now := uc.clock.Now()
	out := &DeleteTaskOutput{}
	var rearm *domain.Task

	err := uc.store.Update(func(snap *domain.Snapshot) error {
		task, err := shared.GetTask(snap, in.Ref)
		if err != nil {
			return err
		}

		if !task.IsRecurringRoot && task.RecurringRootID == nil {
			out.Removed = removeTasks(snap, func(t *domain.Task) bool { return t.ID == task.ID })
			return nil
		}

		switch in.Mode {
		case DeleteInstance:
			date := in.Ref.Date()
			if date.IsZero() || !task.IsRecurringRoot {
				return fmt.Errorf("%w: deleting one occurrence needs an instance ref like %d-YYYY-MM-DD",
					domain.ErrInvalidTaskRef, task.ID)
			}
			if !task.HasOccurrence(date) && !task.ExcludedDates.Contains(date) {
				return fmt.Errorf("%w: %s is not an occurrence of #%d", domain.ErrInvalidTaskRef, date, task.ID)
			}
			task.ExcludedDates = task.ExcludedDates.With(date)
			task.Touch(now)
			out.Excluded = date
			rearm = task.Clone()
			return nil
		case DeleteAllFuture:
			rootID := task.ID
			if !task.IsRecurringRoot {
				rootID = *task.RecurringRootID
			}
			out.Removed = removeTasks(snap, func(t *domain.Task) bool {
				return t.ID == rootID || (t.RecurringRootID != nil && *t.RecurringRootID == rootID)
			})
			return nil
		case DeleteAsk:
			return domain.ErrRecurringChoiceRequired
		default:
			return fmt.Errorf("unknown delete mode %q", in.Mode)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}

	if rearm != nil {
		uc.reminders.Schedule(rearm)
		uc.logger.Info(rearm.ID, "task", fmt.Sprintf("deleted occurrence %s", out.Excluded))
	}
	for _, id := range out.Removed {
		uc.reminders.Cancel(id)
		uc.logger.Info(id, "task", "deleted")
	}
	return out, nil
}

// removeTasks drops the matched tasks, records tombstones and strips edges to them.
func removeTasks(snap *domain.Snapshot, drop func(*domain.Task) bool) []int64 {
	removed := snap.RemoveTasks(drop)
	for _, id := range removed {
		domain.StripTask(snap.Tasks, id)
	}
	return removed
}
