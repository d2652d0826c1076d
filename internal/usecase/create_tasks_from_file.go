package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/taskdeck/internal/domain"
)

// BatchRow is one entry of a batch file.
type BatchRow struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Project     string `yaml:"project"`
}

// CreateTasksFromFileInput contains the parameters for creating tasks from a file.
type CreateTasksFromFileInput struct {
	Content string // YAML list of rows
	DryRun  bool   // If true, parse and validate without creating tasks
}

// CreateTasksFromFileOutput contains the result of creating tasks from a file.
type CreateTasksFromFileOutput struct {
	Tasks    []*domain.Task // Created tasks (or tasks that would be created in dry-run mode)
	Warnings []string       // Fields that could not be parsed and were left empty
}

// CreateTasksFromFile is the use case for creating plain tasks in bulk.
type CreateTasksFromFile struct {
	store     domain.SnapshotStore
	reminders domain.ReminderScheduler
	clock     domain.Clock
	logger    domain.Logger
}

// NewCreateTasksFromFile creates a new CreateTasksFromFile use case.
func NewCreateTasksFromFile(
	store domain.SnapshotStore,
	reminders domain.ReminderScheduler,
	clock domain.Clock,
	logger domain.Logger,
) *CreateTasksFromFile {
	return &CreateTasksFromFile{
		store:     store,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// Execute creates one task per named row. Rows without a name are skipped.
// IDs are consecutive in file order.
func (uc *CreateTasksFromFile) Execute(_ context.Context, in CreateTasksFromFileInput) (*CreateTasksFromFileOutput, error) {
	var rows []BatchRow
	if err := yaml.Unmarshal([]byte(in.Content), &rows); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}

	now := uc.clock.Now()
	out := &CreateTasksFromFileOutput{}
	build := func(snap *domain.Snapshot) {
		base := snap.NextID(now)
		for i, row := range rows {
			if strings.TrimSpace(row.Name) == "" {
				continue
			}
			task, warnings := batchTask(snap, row, now)
			task.ID = base + int64(len(out.Tasks))
			out.Tasks = append(out.Tasks, task)
			for _, w := range warnings {
				out.Warnings = append(out.Warnings, fmt.Sprintf("row %d: %s", i+1, w))
			}
		}
	}

	if in.DryRun {
		snap, err := uc.store.Load()
		if err != nil {
			return nil, fmt.Errorf("load tasks: %w", err)
		}
		build(snap)
		return out, nil
	}

	err := uc.store.Update(func(snap *domain.Snapshot) error {
		build(snap)
		snap.Tasks = append(snap.Tasks, out.Tasks...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create tasks: %w", err)
	}

	for _, task := range out.Tasks {
		uc.reminders.Schedule(task)
	}
	uc.logger.Info(0, "task", fmt.Sprintf("batch created %d tasks", len(out.Tasks)))
	return out, nil
}

// batchTask converts a row. A date or time found in the time column wins
// over the date column, so "202603011330" may be typed into either.
func batchTask(snap *domain.Snapshot, row BatchRow, now time.Time) (*domain.Task, []string) {
	var warnings []string

	var fromDate, fromTime domain.ParsedInput
	if s := strings.TrimSpace(row.Date); s != "" {
		var ok bool
		if fromDate, ok = domain.ParseDateInput(s); !ok {
			if d, err := domain.ParseDate(s); err == nil {
				fromDate = domain.ParsedInput{Date: d}
			} else {
				warnings = append(warnings, fmt.Sprintf("unrecognized date %q", s))
			}
		}
	}
	if s := strings.TrimSpace(row.Time); s != "" {
		var ok bool
		if fromTime, ok = domain.ParseTimeInput(s); !ok {
			if h, m, valid := domain.ParseClock(s); valid {
				fromTime = domain.ParsedInput{Time: domain.FormatClock(h, m)}
			} else {
				warnings = append(warnings, fmt.Sprintf("unrecognized time %q", s))
			}
		}
	}

	date := fromTime.Date
	if date.IsZero() {
		date = fromDate.Date
	}
	clock := fromTime.Time
	if clock == "" {
		clock = fromDate.Time
	}

	project := strings.TrimSpace(row.Project)
	if project == "" {
		project = domain.DefaultProject
	} else if !snap.HasProject(project) {
		warnings = append(warnings, fmt.Sprintf("unknown project %q, using %s", project, domain.DefaultProject))
		project = domain.DefaultProject
	}

	task := &domain.Task{
		Name:        strings.TrimSpace(row.Name),
		Description: strings.TrimSpace(row.Description),
		Project:     project,
		Date:        date,
		Time:        clock,
		TimeCreated: now.UTC().Format(time.RFC3339),
	}
	if !date.IsZero() {
		task.TimeScheduled = date.String()
	}
	task.Sanitize()
	task.Touch(now)
	return task, warnings
}
