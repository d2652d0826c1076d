// Package domain contains core business entities and interfaces.
package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultProject is the project new tasks land in and orphaned tasks move to.
const DefaultProject = "Personal"

// DefaultProjects returns the project list of a fresh data set.
func DefaultProjects() []string {
	return []string{"Personal", "Work", "Health"}
}

// Task is the persisted root record of a task.
// Recurring tasks are stored once and expanded into occurrences on read.
// Fields are ordered to minimize memory padding.
type Task struct {
	Date              Date               `json:"date,omitzero"`               // Start date (zero = undated)
	EndDate           Date               `json:"endDate,omitzero"`            // Last date for carry-over / recurring
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern,omitempty"` // Repeat rule (recurring only)
	RecurringRootID   *int64             `json:"recurringRootId,omitempty"`   // Only set on materialized instances
	Name              string             `json:"name"`                        // Name (required)
	Description       string             `json:"description"`                 // Description (optional)
	Project           string             `json:"project"`                     // Project name
	Time              string             `json:"time,omitempty"`              // HH:MM, 24-hour local
	TimeCreated       string             `json:"timeCreated,omitempty"`       // RFC3339 creation time
	TimeScheduled     string             `json:"timeScheduled,omitempty"`     // Scheduled date/time
	TimeCompleted     string             `json:"timeCompleted,omitempty"`     // RFC3339 completion time
	LastModified      string             `json:"lastModified,omitempty"`      // RFC3339 time of the last local edit
	CompletedDates    DateSet            `json:"completedDates"`              // Completed occurrences (recurring roots)
	ExcludedDates     DateSet            `json:"excludedDates"`               // Deleted occurrences (tombstones)
	Predecessors      []int64            `json:"predecessors"`                // Root IDs this task depends on
	Successors        []int64            `json:"successors"`                  // Root IDs depending on this task
	ID                int64              `json:"id"`                          // Unique, creation-ordered
	Completed         bool               `json:"completed"`                   // Completion of non-recurring tasks
	Urgent            bool               `json:"urgent"`                      // Highlight on the final day
	CarryOver         bool               `json:"carryOver"`                   // Stays open across days until done
	Recurring         bool               `json:"recurring"`                   // Repeats per RecurrencePattern
	IsRecurringRoot   bool               `json:"isRecurringRoot"`             // Generates occurrences
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.RecurrencePattern != nil {
		p := *t.RecurrencePattern
		p.DaysOfWeek = slices.Clone(p.DaysOfWeek)
		c.RecurrencePattern = &p
	}
	if t.RecurringRootID != nil {
		id := *t.RecurringRootID
		c.RecurringRootID = &id
	}
	c.CompletedDates = slices.Clone(t.CompletedDates)
	c.ExcludedDates = slices.Clone(t.ExcludedDates)
	c.Predecessors = slices.Clone(t.Predecessors)
	c.Successors = slices.Clone(t.Successors)
	return &c
}

// IsUndated reports whether the task shows up in the undated list.
func (t *Task) IsUndated() bool {
	return t.Date.IsZero() && !t.IsRecurringRoot
}

// Sanitize replaces nil slices with empty ones and defaults the project.
// Imported and pulled data may omit any of them.
func (t *Task) Sanitize() {
	if t.CompletedDates == nil {
		t.CompletedDates = DateSet{}
	}
	if t.ExcludedDates == nil {
		t.ExcludedDates = DateSet{}
	}
	if t.Predecessors == nil {
		t.Predecessors = []int64{}
	}
	if t.Successors == nil {
		t.Successors = []int64{}
	}
	if t.Project == "" {
		t.Project = DefaultProject
	}
}

// Touch stamps LastModified.
func (t *Task) Touch(now time.Time) {
	t.LastModified = now.UTC().Format(time.RFC3339Nano)
}

// HasOccurrence reports whether d is an occurrence of a recurring root.
func (t *Task) HasOccurrence(d Date) bool {
	if t.RecurrencePattern == nil {
		return false
	}
	return IsOccurrence(t.Date, t.EndDate, d, t.RecurrencePattern.Normalize())
}

// ModifiedAt parses LastModified, falling back to TimeCreated.
// Unknown times sort first.
func (t *Task) ModifiedAt() time.Time {
	for _, s := range []string{t.LastModified, t.TimeCreated} {
		if s == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Clock returns the hour and minute of the task time.
// ok is false when the task has no valid time.
func (t *Task) Clock() (hour, minute int, ok bool) {
	return ParseClock(t.Time)
}

// ParseClock parses an "HH:MM" 24-hour time.
func ParseClock(s string) (hour, minute int, ok bool) {
	h, m, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(h)
	minute, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// FormatClock renders hour and minute as "HH:MM".
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// Kind describes which materialization rules apply to a task.
type Kind int

// Task kinds.
const (
	KindPlain Kind = iota
	KindCarryOver
	KindRecurring
	KindCarryRecurring
)

func (k Kind) String() string {
	switch k {
	case KindCarryOver:
		return "carry-over"
	case KindRecurring:
		return "recurring"
	case KindCarryRecurring:
		return "carry-over recurring"
	default:
		return "plain"
	}
}

// Kind classifies the task by its flags.
func (t *Task) Kind() Kind {
	switch {
	case t.IsRecurringRoot && t.CarryOver:
		return KindCarryRecurring
	case t.IsRecurringRoot:
		return KindRecurring
	case t.CarryOver && !t.Recurring:
		return KindCarryOver
	default:
		return KindPlain
	}
}
