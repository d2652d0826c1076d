// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase/shared"
)

// NewTaskInput contains the parameters for creating a task.
// Date, EndDate and Time accept the loose input forms of domain.NormalizeDate
// and domain.NormalizeTime.
// Fields are ordered to minimize memory padding.
type NewTaskInput struct {
	Name        string // Task name (required)
	Description string // Task description (optional)
	Project     string // Project (empty = Personal)
	Date        string // Start date (empty = undated, or today for carry-over/urgent/recurring)
	EndDate     string // Last date for carry-over and recurring tasks
	Time        string // Time of day
	Frequency   string // Recurrence frequency (implies Recurring, default daily)
	Count       string // Occurrence cap: a number or "infinite" (empty = derive from EndDate)
	DaysOfWeek  []int  // Weekdays for weekly recurrence (empty = start weekday)
	Interval    int    // Recurrence interval (clamped to at least 1)
	CarryOver   bool   // Stay open across days until done
	Urgent      bool   // Highlight on the final day
	Recurring   bool   // Repeat per the pattern
}

// NewTaskOutput contains the result of creating a task.
type NewTaskOutput struct {
	Task *domain.Task // The created task
}

// NewTask is the use case for creating a task.
type NewTask struct {
	store     domain.SnapshotStore
	reminders domain.ReminderScheduler
	clock     domain.Clock
	logger    domain.Logger
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(
	store domain.SnapshotStore,
	reminders domain.ReminderScheduler,
	clock domain.Clock,
	logger domain.Logger,
) *NewTask {
	return &NewTask{
		store:     store,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// Execute creates a new task and returns it.
func (uc *NewTask) Execute(_ context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	now := uc.clock.Now()

	var task *domain.Task
	err := uc.store.Update(func(snap *domain.Snapshot) error {
		var err error
		task, err = buildTask(snap, in, now)
		if err != nil {
			return err
		}
		snap.Tasks = append(snap.Tasks, task)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	uc.reminders.Schedule(task)
	uc.logger.Info(task.ID, "task", fmt.Sprintf("created %s task %q", task.Kind(), task.Name))
	return &NewTaskOutput{Task: task}, nil
}

// buildTask validates in and returns the new root record.
func buildTask(snap *domain.Snapshot, in NewTaskInput, now time.Time) (*domain.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	project, err := shared.ResolveProject(snap, strings.TrimSpace(in.Project))
	if err != nil {
		return nil, err
	}

	today := domain.DateOf(now)
	date, err := domain.NormalizeDate(in.Date, today)
	if err != nil {
		return nil, err
	}
	endDate, err := domain.NormalizeDate(in.EndDate, today)
	if err != nil {
		return nil, err
	}
	clock, err := domain.NormalizeTime(in.Time)
	if err != nil {
		return nil, err
	}

	recurring := in.Recurring || in.Frequency != ""
	if date.IsZero() && (recurring || in.CarryOver || in.Urgent || !endDate.IsZero()) {
		date = today
	}
	if !endDate.IsZero() && endDate.Before(date) {
		return nil, fmt.Errorf("%w: end date %s is before %s", domain.ErrInvalidDate, endDate, date)
	}

	task := &domain.Task{
		ID:              snap.NextID(now),
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		Project:         project,
		Date:            date,
		EndDate:         endDate,
		Time:            clock,
		CarryOver:       in.CarryOver,
		Urgent:          in.Urgent,
		Recurring:       recurring,
		IsRecurringRoot: recurring,
		TimeCreated:     now.UTC().Format(time.RFC3339),
	}
	if !date.IsZero() {
		task.TimeScheduled = date.String()
	}

	if recurring {
		pattern, end, err := buildPattern(in, date, endDate)
		if err != nil {
			return nil, err
		}
		task.RecurrencePattern = pattern
		task.EndDate = end
	}

	task.Sanitize()
	task.Touch(now)
	return task, nil
}

// buildPattern assembles the recurrence of a new task. A count without an
// end date fixes the end date; an end date without a count fixes the count.
func buildPattern(in NewTaskInput, start, end domain.Date) (*domain.RecurrencePattern, domain.Date, error) {
	freq := domain.FrequencyDaily
	if in.Frequency != "" {
		var err error
		if freq, err = domain.ParseFrequency(in.Frequency); err != nil {
			return nil, domain.Date{}, err
		}
	}

	p := domain.RecurrencePattern{
		Frequency:  freq,
		Interval:   in.Interval,
		DaysOfWeek: in.DaysOfWeek,
	}
	p = p.Normalize()
	if freq == domain.FrequencyWeekly && len(p.DaysOfWeek) == 0 {
		p.DaysOfWeek = []int{int(start.Weekday())}
	}

	switch {
	case in.Count != "":
		count, err := domain.ParseCount(in.Count)
		if err != nil {
			return nil, domain.Date{}, err
		}
		p.Count = count
		if end.IsZero() {
			end = p.EndDateForCount(start)
		}
	case !end.IsZero():
		p.Count = domain.Count(max(p.CountMatches(start, end), 1))
	default:
		p.Count = domain.CountInfinite
	}

	if err := p.Validate(); err != nil {
		return nil, domain.Date{}, err
	}
	return &p, end, nil
}
