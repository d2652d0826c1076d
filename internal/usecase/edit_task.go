package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase/shared"
)

// EditTaskInput contains the parameters for editing a task.
// Nil fields are left unchanged. Instance refs edit their root.
// Fields are ordered to minimize memory padding.
type EditTaskInput struct {
	Name        *string        // New name
	Description *string        // New description
	Project     *string        // New project
	Date        *string        // New start date (empty string clears)
	EndDate     *string        // New end date (empty string clears)
	Time        *string        // New time (empty string clears)
	Count       *string        // New occurrence cap (recurring only)
	Interval    *int           // New interval (recurring only)
	DaysOfWeek  []int          // New weekdays (weekly recurring only, nil = unchanged)
	Urgent      *bool          // New urgent flag
	CarryOver   *bool          // New carry-over flag
	Ref         domain.TaskRef // Task to edit
}

func (in EditTaskInput) empty() bool {
	return in.Name == nil && in.Description == nil && in.Project == nil &&
		in.Date == nil && in.EndDate == nil && in.Time == nil &&
		in.Count == nil && in.Interval == nil && in.DaysOfWeek == nil &&
		in.Urgent == nil && in.CarryOver == nil
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task *domain.Task // The updated root
}

// EditTask is the use case for overwriting task fields.
type EditTask struct {
	store     domain.SnapshotStore
	reminders domain.ReminderScheduler
	clock     domain.Clock
	logger    domain.Logger
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(
	store domain.SnapshotStore,
	reminders domain.ReminderScheduler,
	clock domain.Clock,
	logger domain.Logger,
) *EditTask {
	return &EditTask{
		store:     store,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// Execute applies the given fields to the root task.
func (uc *EditTask) Execute(_ context.Context, in EditTaskInput) (*EditTaskOutput, error) {
	if in.empty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	now := uc.clock.Now()
	today := domain.DateOf(now)

	var edited *domain.Task
	err := uc.store.Update(func(snap *domain.Snapshot) error {
		task, err := shared.GetTask(snap, in.Ref)
		if err != nil {
			return err
		}
		if err := applyEdit(snap, task, in, today); err != nil {
			return err
		}
		task.Touch(now)
		edited = task.Clone()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("edit task: %w", err)
	}

	uc.reminders.Schedule(edited)
	uc.logger.Info(edited.ID, "task", "edited")
	return &EditTaskOutput{Task: edited}, nil
}

func applyEdit(snap *domain.Snapshot, task *domain.Task, in EditTaskInput, today domain.Date) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.ErrEmptyName
		}
		task.Name = name
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if in.Project != nil {
		project, err := shared.ResolveProject(snap, strings.TrimSpace(*in.Project))
		if err != nil {
			return err
		}
		task.Project = project
	}
	if in.Date != nil {
		d, err := domain.NormalizeDate(*in.Date, today)
		if err != nil {
			return err
		}
		if d.IsZero() && task.IsRecurringRoot {
			return fmt.Errorf("%w: recurring tasks need a start date", domain.ErrInvalidDate)
		}
		task.Date = d
		task.TimeScheduled = ""
		if !d.IsZero() {
			task.TimeScheduled = d.String()
		}
	}
	if in.EndDate != nil {
		d, err := domain.NormalizeDate(*in.EndDate, today)
		if err != nil {
			return err
		}
		task.EndDate = d
	}
	if !task.EndDate.IsZero() && task.EndDate.Before(task.Date) {
		return fmt.Errorf("%w: end date %s is before %s", domain.ErrInvalidDate, task.EndDate, task.Date)
	}
	if in.Time != nil {
		clock, err := domain.NormalizeTime(*in.Time)
		if err != nil {
			return err
		}
		task.Time = clock
	}
	if in.Urgent != nil {
		task.Urgent = *in.Urgent
	}
	if in.CarryOver != nil {
		task.CarryOver = *in.CarryOver
	}
	return editPattern(task, in)
}

func editPattern(task *domain.Task, in EditTaskInput) error {
	if in.Count == nil && in.Interval == nil && in.DaysOfWeek == nil {
		return nil
	}
	if task.RecurrencePattern == nil {
		return fmt.Errorf("%w: %d", domain.ErrNotRecurring, task.ID)
	}

	p := *task.RecurrencePattern
	if in.Count != nil {
		count, err := domain.ParseCount(*in.Count)
		if err != nil {
			return err
		}
		p.Count = count
	}
	if in.Interval != nil {
		p.Interval = *in.Interval
	}
	if in.DaysOfWeek != nil {
		p.DaysOfWeek = in.DaysOfWeek
	}
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	task.RecurrencePattern = &p
	return nil
}
