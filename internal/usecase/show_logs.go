package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase/shared"
)

// LogTailer reads the last n lines of the global log (taskID 0) or a task log.
type LogTailer func(taskID int64, n int) ([]string, error)

// ShowLogsInput contains the parameters for showing logs.
type ShowLogsInput struct {
	Task  string // Task reference (empty = global log)
	Lines int    // Number of lines to display from the end (0 = all)
}

// ShowLogsOutput contains the result of showing logs.
type ShowLogsOutput struct {
	Content string
	TaskID  int64
}

// ShowLogs is the use case for viewing logs.
type ShowLogs struct {
	store domain.SnapshotStore
	tail  LogTailer
}

// NewShowLogs creates a new ShowLogs use case.
func NewShowLogs(store domain.SnapshotStore, tail LogTailer) *ShowLogs {
	return &ShowLogs{store: store, tail: tail}
}

// Execute returns the requested log lines.
func (uc *ShowLogs) Execute(_ context.Context, in ShowLogsInput) (*ShowLogsOutput, error) {
	out := &ShowLogsOutput{}
	if in.Task != "" {
		ref, err := domain.ParseTaskRef(in.Task)
		if err != nil {
			return nil, err
		}
		snap, err := uc.store.Load()
		if err != nil {
			return nil, fmt.Errorf("load tasks: %w", err)
		}
		task, err := shared.GetTask(snap, ref)
		if err != nil {
			return nil, err
		}
		out.TaskID = task.ID
	}

	lines, err := uc.tail(out.TaskID, in.Lines)
	if err != nil {
		return nil, err
	}
	out.Content = strings.Join(lines, "\n")
	return out, nil
}
