package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	Ref domain.TaskRef // Root or instance (required)
}

// ShowTaskOutput contains the result of showing a task.
type ShowTaskOutput struct {
	Task         *domain.Task   // The stored root
	Predecessors []*domain.Task // Tasks this one waits for
	Successors   []*domain.Task // Tasks waiting for this one
	Completed    bool           // Completion of the referenced occurrence
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	store domain.SnapshotStore
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(store domain.SnapshotStore) *ShowTask {
	return &ShowTask{store: store}
}

// Execute retrieves the task and its dependency neighbours.
func (uc *ShowTask) Execute(_ context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	snap, err := uc.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	task, err := shared.GetTask(snap, in.Ref)
	if err != nil {
		return nil, err
	}

	out := &ShowTaskOutput{
		Task:         task.Clone(),
		Predecessors: neighbours(snap, task.Predecessors),
		Successors:   neighbours(snap, task.Successors),
		Completed:    task.Completed,
	}
	if in.Ref.IsInstance() {
		out.Completed = task.CompletedDates.Contains(in.Ref.Date())
	}
	return out, nil
}

// neighbours looks up ids, skipping edges to tasks that no longer exist.
func neighbours(snap *domain.Snapshot, ids []int64) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(ids))
	for _, id := range ids {
		if t := snap.Task(id); t != nil {
			tasks = append(tasks, t.Clone())
		}
	}
	return tasks
}
