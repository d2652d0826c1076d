package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/runoshun/taskdeck/internal/domain"
)

// ProjectSummary is a project with its task count.
type ProjectSummary struct {
	Name  string
	Tasks int
}

// ListProjectsOutput contains the projects in display order.
type ListProjectsOutput struct {
	Projects []ProjectSummary
}

// ListProjects is the use case for listing projects.
type ListProjects struct {
	store domain.SnapshotStore
}

// NewListProjects creates a new ListProjects use case.
func NewListProjects(store domain.SnapshotStore) *ListProjects {
	return &ListProjects{store: store}
}

// Execute lists every project with the number of root tasks in it.
func (uc *ListProjects) Execute(_ context.Context) (*ListProjectsOutput, error) {
	snap, err := uc.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	counts := make(map[string]int)
	for _, t := range snap.Tasks {
		counts[t.Project]++
	}
	out := &ListProjectsOutput{}
	for _, p := range snap.Projects {
		out.Projects = append(out.Projects, ProjectSummary{Name: p, Tasks: counts[p]})
	}
	return out, nil
}

// AddProjectInput contains the parameters for adding a project.
type AddProjectInput struct {
	Name string
}

// AddProject is the use case for adding a project.
type AddProject struct {
	store  domain.SnapshotStore
	logger domain.Logger
}

// NewAddProject creates a new AddProject use case.
func NewAddProject(store domain.SnapshotStore, logger domain.Logger) *AddProject {
	return &AddProject{store: store, logger: logger}
}

// Execute appends a project to the list.
func (uc *AddProject) Execute(_ context.Context, in AddProjectInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.ErrEmptyProject
	}
	err := uc.store.Update(func(snap *domain.Snapshot) error {
		if snap.HasProject(name) {
			return fmt.Errorf("%w: %q", domain.ErrProjectExists, name)
		}
		snap.Projects = append(snap.Projects, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("add project: %w", err)
	}
	uc.logger.Info(0, "project", fmt.Sprintf("added %q", name))
	return nil
}

// DeleteProjectInput contains the parameters for deleting a project.
type DeleteProjectInput struct {
	Name string
}

// DeleteProjectOutput contains the result of deleting a project.
type DeleteProjectOutput struct {
	Reassigned int // Tasks moved to the default project
}

// DeleteProject is the use case for deleting a project.
type DeleteProject struct {
	store  domain.SnapshotStore
	clock  domain.Clock
	logger domain.Logger
}

// NewDeleteProject creates a new DeleteProject use case.
func NewDeleteProject(store domain.SnapshotStore, clock domain.Clock, logger domain.Logger) *DeleteProject {
	return &DeleteProject{store: store, clock: clock, logger: logger}
}

// Execute removes the project and moves its tasks to the default project.
// The default project itself cannot be deleted.
func (uc *DeleteProject) Execute(_ context.Context, in DeleteProjectInput) (*DeleteProjectOutput, error) {
	name := strings.TrimSpace(in.Name)
	if name == domain.DefaultProject {
		return nil, fmt.Errorf("%w: %q", domain.ErrProtectedProject, name)
	}
	now := uc.clock.Now()
	out := &DeleteProjectOutput{}

	err := uc.store.Update(func(snap *domain.Snapshot) error {
		idx := slices.Index(snap.Projects, name)
		if idx < 0 {
			return fmt.Errorf("%w: %q", domain.ErrProjectNotFound, name)
		}
		snap.Projects = slices.Delete(snap.Projects, idx, idx+1)
		for _, t := range snap.Tasks {
			if t.Project == name {
				t.Project = domain.DefaultProject
				t.Touch(now)
				out.Reassigned++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete project: %w", err)
	}
	uc.logger.Info(0, "project", fmt.Sprintf("deleted %q, moved %d tasks", name, out.Reassigned))
	return out, nil
}
