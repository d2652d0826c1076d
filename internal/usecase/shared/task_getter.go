// Package shared holds helpers used by several use cases.
package shared

import (
	"fmt"

	"github.com/runoshun/taskdeck/internal/domain"
)

// GetTask returns the stored root task a ref points at.
// Instance refs resolve to their root; a missing root is domain.ErrTaskNotFound.
func GetTask(snap *domain.Snapshot, ref domain.TaskRef) (*domain.Task, error) {
	task := snap.Task(ref.Resolve())
	if task == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, ref)
	}
	return task, nil
}

// ResolveProject returns name, or the default project when name is empty.
// Unknown projects are domain.ErrProjectNotFound.
func ResolveProject(snap *domain.Snapshot, name string) (string, error) {
	if name == "" {
		return domain.DefaultProject, nil
	}
	if !snap.HasProject(name) {
		return "", fmt.Errorf("%w: %q", domain.ErrProjectNotFound, name)
	}
	return name, nil
}
