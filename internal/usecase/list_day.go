package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskdeck/internal/domain"
)

// ListDayInput contains the parameters for listing one day.
type ListDayInput struct {
	Date    domain.Date // Day to list (zero = today)
	Project string      // Only this project (empty = all)
}

// ListDayOutput contains the occurrences of one day.
type ListDayOutput struct {
	Date        domain.Date
	Occurrences []domain.Occurrence // Sorted by time, then name
	Stats       domain.DayStats
}

// ListDay is the use case for the day view.
type ListDay struct {
	store domain.SnapshotStore
	clock domain.Clock
}

// NewListDay creates a new ListDay use case.
func NewListDay(store domain.SnapshotStore, clock domain.Clock) *ListDay {
	return &ListDay{
		store: store,
		clock: clock,
	}
}

// Execute materializes every task on the requested day.
func (uc *ListDay) Execute(_ context.Context, in ListDayInput) (*ListDayOutput, error) {
	snap, err := uc.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	m := domain.NewMaterializer(uc.clock)
	date := in.Date
	if date.IsZero() {
		date = domain.DateOf(uc.clock.Now())
	}

	occs := m.ForDate(snap.Tasks, date)
	if in.Project != "" {
		filtered := occs[:0]
		for _, o := range occs {
			if o.Task.Project == in.Project {
				filtered = append(filtered, o)
			}
		}
		occs = filtered
	}
	domain.SortOccurrences(occs)

	return &ListDayOutput{
		Date:        date,
		Occurrences: occs,
		Stats:       domain.ComputeStats(occs),
	}, nil
}

// UrgentTodayOutput contains today's open urgent occurrences.
type UrgentTodayOutput struct {
	Date        domain.Date
	Occurrences []domain.Occurrence
}

// UrgentToday is the use case behind the urgent list and the daily digest.
type UrgentToday struct {
	store domain.SnapshotStore
	clock domain.Clock
}

// NewUrgentToday creates a new UrgentToday use case.
func NewUrgentToday(store domain.SnapshotStore, clock domain.Clock) *UrgentToday {
	return &UrgentToday{
		store: store,
		clock: clock,
	}
}

// Execute returns today's urgent occurrences that are still open.
func (uc *UrgentToday) Execute(ctx context.Context) (*UrgentTodayOutput, error) {
	day, err := NewListDay(uc.store, uc.clock).Execute(ctx, ListDayInput{})
	if err != nil {
		return nil, err
	}
	return &UrgentTodayOutput{
		Date:        day.Date,
		Occurrences: domain.UrgentOpen(day.Occurrences),
	}, nil
}

// Digest renders the urgent list as a notification body.
// The second result is false when there is nothing to report.
func (uc *UrgentToday) Digest(ctx context.Context) (string, bool) {
	out, err := uc.Execute(ctx)
	if err != nil || len(out.Occurrences) == 0 {
		return "", false
	}
	body := fmt.Sprintf("%d urgent today:", len(out.Occurrences))
	for _, o := range out.Occurrences {
		body += "\n- " + o.Task.Name
	}
	return body, true
}
