package domain

import (
	"cmp"
	"slices"
	"time"
)

// Occurrence is a task as it appears on one calendar date.
// Task is a copy with completion and urgency resolved for that date;
// for recurring roots it carries the occurrence date and the root ID.
type Occurrence struct {
	Task           *Task   // Resolved copy, never the stored record
	Date           Date    // Date the occurrence is shown on
	Ref            TaskRef // Root or instance reference
	CarryRecurring bool    // Carry-over + recurring occurrence
}

// ID returns the synthetic identifier of the occurrence.
func (o Occurrence) ID() string { return o.Ref.String() }

// IsInstance reports whether the occurrence was generated from a recurring root.
func (o Occurrence) IsInstance() bool { return o.Ref.IsInstance() }

// Materializer expands stored tasks into per-date occurrences.
// Today anchors the resting date of carry-over recurring tasks.
type Materializer struct {
	Today func() Date
}

// NewMaterializer returns a Materializer whose today comes from clock.
func NewMaterializer(clock Clock) Materializer {
	return Materializer{Today: func() Date { return DateOf(clock.Now()) }}
}

func (m Materializer) today() Date {
	if m.Today == nil {
		return DateOf(time.Now())
	}
	return m.Today()
}

// InstancesForDate returns the occurrences of task on date (zero or one).
func (m Materializer) InstancesForDate(task *Task, date Date) []Occurrence {
	if occ, ok := m.occurrenceOn(task, date); ok {
		return []Occurrence{occ}
	}
	return nil
}

// InstancesForRange returns the occurrences of task from start through end in date order.
func (m Materializer) InstancesForRange(task *Task, start, end Date) []Occurrence {
	var out []Occurrence
	d := start
	for i := 0; i < MaxScanDays && !d.After(end); i++ {
		if occ, ok := m.occurrenceOn(task, d); ok {
			out = append(out, occ)
		}
		d = d.AddDays(1)
	}
	return out
}

// ForDate returns the occurrences of every task on date, in task order.
func (m Materializer) ForDate(tasks []*Task, date Date) []Occurrence {
	var out []Occurrence
	for _, t := range tasks {
		if occ, ok := m.occurrenceOn(t, date); ok {
			out = append(out, occ)
		}
	}
	return out
}

// ForRange returns the occurrences of every task from start through end,
// ordered by date and then by task order.
func (m Materializer) ForRange(tasks []*Task, start, end Date) []Occurrence {
	var out []Occurrence
	for _, t := range tasks {
		out = append(out, m.InstancesForRange(t, start, end)...)
	}
	slices.SortStableFunc(out, func(a, b Occurrence) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

func (m Materializer) occurrenceOn(task *Task, date Date) (Occurrence, bool) {
	if date.IsZero() {
		return Occurrence{}, false
	}
	switch task.Kind() {
	case KindCarryRecurring:
		return m.carryRecurringOn(task, date)
	case KindRecurring:
		return recurringOn(task, date)
	case KindCarryOver:
		return carryOverOn(task, date)
	default:
		if task.Date.IsZero() || !task.Date.Equal(date) {
			return Occurrence{}, false
		}
		return Occurrence{Task: task.Clone(), Date: date, Ref: RootRef(task.ID)}, true
	}
}

// carryOverOn shows the task on every day of [date, endDate] until completed,
// then only on its start date. Urgency applies to the end date alone.
func carryOverOn(task *Task, date Date) (Occurrence, bool) {
	if task.Date.IsZero() || date.Before(task.Date) {
		return Occurrence{}, false
	}
	if !task.EndDate.IsZero() && date.After(task.EndDate) {
		return Occurrence{}, false
	}
	if task.Completed && !date.Equal(task.Date) {
		return Occurrence{}, false
	}
	c := task.Clone()
	c.Urgent = task.Urgent && !task.EndDate.IsZero() && date.Equal(task.EndDate)
	return Occurrence{Task: c, Date: date, Ref: RootRef(task.ID)}, true
}

// recurringOn produces an independent occurrence per qualifying date.
// Only the last occurrence of a bounded recurrence is urgent.
func recurringOn(task *Task, date Date) (Occurrence, bool) {
	if task.RecurrencePattern == nil || task.Date.IsZero() {
		return Occurrence{}, false
	}
	start, end := task.Date, task.EndDate
	p := task.RecurrencePattern.Normalize()
	if date.Before(start) || (!end.IsZero() && date.After(end)) {
		return Occurrence{}, false
	}
	if !ShouldIncludeDate(start, date, p) || task.ExcludedDates.Contains(date) {
		return Occurrence{}, false
	}
	n := 0
	if !p.Count.IsInfinite() {
		var ok bool
		n, ok = p.OrdinalOf(start, date)
		if !ok || !p.Count.Allows(n) {
			return Occurrence{}, false
		}
	}

	urgent := false
	if task.Urgent && !end.IsZero() {
		urgent = !hasLaterOccurrence(start, date, end, p, n)
	}
	return instance(task, date, task.CompletedDates.Contains(date), urgent, false), true
}

// hasLaterOccurrence reports whether another occurrence follows date
// within end and the count cap. n is the ordinal of date (ignored when infinite).
func hasLaterOccurrence(start, date, end Date, p RecurrencePattern, n int) bool {
	if !p.Count.IsInfinite() && n >= int(p.Count) {
		return false
	}
	d := date.AddDays(1)
	for i := 0; i < MaxScanDays && !d.After(end); i++ {
		if ShouldIncludeDate(start, d, p) {
			return true
		}
		d = d.AddDays(1)
	}
	return false
}

// carryRecurringOn rests the task on a single qualifying date: the first
// non-excluded one on or after today, else the last one in the scan bound.
// Once a qualifying date is completed the task shows only there. The
// resting date depends on today alone, so every query agrees on it.
func (m Materializer) carryRecurringOn(task *Task, date Date) (Occurrence, bool) {
	if task.RecurrencePattern == nil || task.Date.IsZero() {
		return Occurrence{}, false
	}
	p := task.RecurrencePattern.Normalize()
	rest, completed, ok := restingDate(task, p, m.today())
	if !ok || !rest.Equal(date) {
		return Occurrence{}, false
	}
	urgent := task.Urgent && !task.EndDate.IsZero() && !hasLaterOpenDate(task, p, rest)
	return instance(task, date, completed, urgent, true), true
}

// restingDate returns the date a carry-over recurring task rests on and
// whether that date is completed. Excluded dates still use up count slots.
func restingDate(task *Task, p RecurrencePattern, today Date) (Date, bool, bool) {
	if d, ok := firstCompletedDate(task, p); ok {
		return d, true, true
	}
	var last Date
	n := 0
	d := task.Date
	for i := 0; i < MaxScanDays && (task.EndDate.IsZero() || !d.After(task.EndDate)); i++ {
		if ShouldIncludeDate(task.Date, d, p) {
			n++
			if !p.Count.Allows(n) {
				break
			}
			if !task.ExcludedDates.Contains(d) {
				if !d.Before(today) {
					return d, false, true
				}
				last = d
			}
		}
		d = d.AddDays(1)
	}
	return last, false, !last.IsZero()
}

// firstCompletedDate returns the earliest completed date that is still a
// live occurrence of the task.
func firstCompletedDate(task *Task, p RecurrencePattern) (Date, bool) {
	var first Date
	for _, d := range task.CompletedDates {
		if !IsOccurrence(task.Date, task.EndDate, d, p) || task.ExcludedDates.Contains(d) {
			continue
		}
		if first.IsZero() || d.Before(first) {
			first = d
		}
	}
	return first, !first.IsZero()
}

// hasLaterOpenDate reports whether a non-excluded occurrence follows rest
// within the end date and the count cap.
func hasLaterOpenDate(task *Task, p RecurrencePattern, rest Date) bool {
	n, ok := p.OrdinalOf(task.Date, rest)
	if !ok {
		return false
	}
	d := rest.AddDays(1)
	for i := 0; i < MaxScanDays && !d.After(task.EndDate); i++ {
		if ShouldIncludeDate(task.Date, d, p) {
			n++
			if !p.Count.Allows(n) {
				return false
			}
			if !task.ExcludedDates.Contains(d) {
				return true
			}
		}
		d = d.AddDays(1)
	}
	return false
}

func instance(task *Task, date Date, completed, urgent, carry bool) Occurrence {
	c := task.Clone()
	root := task.ID
	c.Date = date
	c.IsRecurringRoot = false
	c.RecurringRootID = &root
	c.Completed = completed
	c.Urgent = urgent
	return Occurrence{Task: c, Date: date, Ref: InstanceRef(task.ID, date), CarryRecurring: carry}
}

// SortOccurrences orders occurrences by time of day (untimed last), then name.
func SortOccurrences(occs []Occurrence) {
	slices.SortStableFunc(occs, func(a, b Occurrence) int {
		at, bt := a.Task.Time, b.Task.Time
		switch {
		case at == "" && bt != "":
			return 1
		case at != "" && bt == "":
			return -1
		}
		if c := cmp.Compare(at, bt); c != 0 {
			return c
		}
		return cmp.Compare(a.Task.Name, b.Task.Name)
	})
}
