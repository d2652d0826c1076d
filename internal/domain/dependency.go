package domain

import "slices"

// DependencyKind selects which side of an edge a dependency is added to.
type DependencyKind string

// Dependency kinds.
const (
	// DependencyPredecessor makes the other task a predecessor of the task.
	DependencyPredecessor DependencyKind = "predecessor"
	// DependencySuccessor makes the other task a successor of the task.
	DependencySuccessor DependencyKind = "successor"
)

// IsValid reports whether k is a known kind.
func (k DependencyKind) IsValid() bool {
	return k == DependencyPredecessor || k == DependencySuccessor
}

func findTask(tasks []*Task, id int64) *Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AddDependency links taskRef and otherRef in both directions.
// Refs resolve to their roots first. Self-edges, unknown tasks and
// existing edges are no-ops. It reports whether anything changed.
func AddDependency(tasks []*Task, taskRef, otherRef TaskRef, kind DependencyKind) bool {
	task, other, ok := edgeEnds(tasks, taskRef, otherRef)
	if !ok || !kind.IsValid() {
		return false
	}
	from, to := other, task
	if kind == DependencySuccessor {
		from, to = task, other
	}
	// from -> to: to has from as predecessor, from has to as successor.
	changed := false
	if !slices.Contains(to.Predecessors, from.ID) {
		to.Predecessors = append(to.Predecessors, from.ID)
		changed = true
	}
	if !slices.Contains(from.Successors, to.ID) {
		from.Successors = append(from.Successors, to.ID)
		changed = true
	}
	return changed
}

// RemoveDependency removes the edge added by AddDependency with the same arguments.
func RemoveDependency(tasks []*Task, taskRef, otherRef TaskRef, kind DependencyKind) bool {
	task, other, ok := edgeEnds(tasks, taskRef, otherRef)
	if !ok || !kind.IsValid() {
		return false
	}
	from, to := other, task
	if kind == DependencySuccessor {
		from, to = task, other
	}
	before := len(to.Predecessors) + len(from.Successors)
	to.Predecessors = removeID(to.Predecessors, from.ID)
	from.Successors = removeID(from.Successors, to.ID)
	return len(to.Predecessors)+len(from.Successors) != before
}

// StripTask removes id from every predecessor and successor list.
func StripTask(tasks []*Task, id int64) {
	for _, t := range tasks {
		t.Predecessors = removeID(t.Predecessors, id)
		t.Successors = removeID(t.Successors, id)
	}
}

func edgeEnds(tasks []*Task, taskRef, otherRef TaskRef) (*Task, *Task, bool) {
	a, b := taskRef.Resolve(), otherRef.Resolve()
	if a == 0 || b == 0 || a == b {
		return nil, nil, false
	}
	task, other := findTask(tasks, a), findTask(tasks, b)
	if task == nil || other == nil {
		return nil, nil, false
	}
	return task, other, true
}

func removeID(ids []int64, id int64) []int64 {
	if !slices.Contains(ids, id) {
		return ids
	}
	out := make([]int64, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
