package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase/shared"
)

// EditDependencyInput contains the parameters for adding or removing an edge.
type EditDependencyInput struct {
	Kind   domain.DependencyKind // Which side Other lands on
	Task   domain.TaskRef        // Task being edited
	Other  domain.TaskRef        // Predecessor or successor
	Remove bool                  // Remove instead of add
}

// EditDependencyOutput contains the result of a dependency edit.
type EditDependencyOutput struct {
	Changed bool // False when the edge already matched
}

// EditDependency is the use case for linking tasks.
type EditDependency struct {
	store  domain.SnapshotStore
	clock  domain.Clock
	logger domain.Logger
}

// NewEditDependency creates a new EditDependency use case.
func NewEditDependency(store domain.SnapshotStore, clock domain.Clock, logger domain.Logger) *EditDependency {
	return &EditDependency{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute adds or removes the edge between the roots of Task and Other.
func (uc *EditDependency) Execute(_ context.Context, in EditDependencyInput) (*EditDependencyOutput, error) {
	if !in.Kind.IsValid() {
		return nil, fmt.Errorf("unknown dependency kind %q", in.Kind)
	}
	now := uc.clock.Now()
	out := &EditDependencyOutput{}

	err := uc.store.Update(func(snap *domain.Snapshot) error {
		task, err := shared.GetTask(snap, in.Task)
		if err != nil {
			return err
		}
		other, err := shared.GetTask(snap, in.Other)
		if err != nil {
			return err
		}

		if in.Remove {
			out.Changed = domain.RemoveDependency(snap.Tasks, in.Task, in.Other, in.Kind)
		} else {
			out.Changed = domain.AddDependency(snap.Tasks, in.Task, in.Other, in.Kind)
		}
		if out.Changed {
			task.Touch(now)
			other.Touch(now)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("edit dependency: %w", err)
	}

	if out.Changed {
		verb := "added"
		if in.Remove {
			verb = "removed"
		}
		uc.logger.Info(in.Task.Resolve(), "dependency",
			fmt.Sprintf("%s %s %d", verb, in.Kind, in.Other.Resolve()))
	}
	return out, nil
}
