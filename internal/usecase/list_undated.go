package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/runoshun/taskdeck/internal/domain"
)

// ProjectTasks groups tasks under a project.
type ProjectTasks struct {
	Project string
	Tasks   []*domain.Task
}

// ListUndatedInput contains the parameters for listing undated tasks.
type ListUndatedInput struct {
	IncludeCompleted bool // Also list completed tasks
}

// ListUndatedOutput contains undated tasks grouped by project, in project order.
type ListUndatedOutput struct {
	Groups []ProjectTasks
}

// ListUndated is the use case for the undated view.
type ListUndated struct {
	store domain.SnapshotStore
}

// NewListUndated creates a new ListUndated use case.
func NewListUndated(store domain.SnapshotStore) *ListUndated {
	return &ListUndated{store: store}
}

// Execute lists tasks without a date. Projects without undated tasks are omitted;
// tasks whose project is unknown are listed last under their own name.
func (uc *ListUndated) Execute(_ context.Context, in ListUndatedInput) (*ListUndatedOutput, error) {
	snap, err := uc.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	byProject := make(map[string][]*domain.Task)
	var extra []string
	for _, t := range snap.Tasks {
		if !t.IsUndated() || (t.Completed && !in.IncludeCompleted) {
			continue
		}
		if !snap.HasProject(t.Project) && !slices.Contains(extra, t.Project) {
			extra = append(extra, t.Project)
		}
		byProject[t.Project] = append(byProject[t.Project], t)
	}

	out := &ListUndatedOutput{}
	for _, p := range append(slices.Clone(snap.Projects), extra...) {
		if tasks := byProject[p]; len(tasks) > 0 {
			out.Groups = append(out.Groups, ProjectTasks{Project: p, Tasks: tasks})
		}
	}
	return out, nil
}
