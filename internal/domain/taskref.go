package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TaskRef identifies either a root task or one occurrence of a recurring root.
// Occurrences are never stored; any structural change resolves the ref to its root first.
type TaskRef struct {
	date Date  // occurrence date (zero for roots)
	id   int64 // root task ID
}

// RootRef refers to a stored task.
func RootRef(id int64) TaskRef {
	return TaskRef{id: id}
}

// InstanceRef refers to the occurrence of root on date.
func InstanceRef(rootID int64, date Date) TaskRef {
	return TaskRef{id: rootID, date: date}
}

// ParseTaskRef parses "123" (root) or "123-2026-02-16" (instance).
func ParseTaskRef(s string) (TaskRef, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	idPart, datePart, hasDate := strings.Cut(s, "-")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return TaskRef{}, fmt.Errorf("%w: %q", ErrInvalidTaskRef, s)
	}
	if !hasDate {
		return RootRef(id), nil
	}
	d, err := ParseDate(datePart)
	if err != nil {
		return TaskRef{}, fmt.Errorf("%w: %q", ErrInvalidTaskRef, s)
	}
	return InstanceRef(id, d), nil
}

// Resolve returns the root task ID.
func (r TaskRef) Resolve() int64 { return r.id }

// IsInstance reports whether the ref names a single occurrence.
func (r TaskRef) IsInstance() bool { return !r.date.IsZero() }

// Date returns the occurrence date, or the zero date for roots.
func (r TaskRef) Date() Date { return r.date }

// IsZero reports whether the ref is unset.
func (r TaskRef) IsZero() bool { return r.id == 0 }

// String renders the synthetic ID used at the edges ("123" or "123-2026-02-16").
func (r TaskRef) String() string {
	if r.IsInstance() {
		return fmt.Sprintf("%d-%s", r.id, r.date)
	}
	return strconv.FormatInt(r.id, 10)
}
