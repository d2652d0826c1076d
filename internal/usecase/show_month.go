package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/taskdeck/internal/domain"
)

// ShowMonthInput contains the parameters for the month view.
type ShowMonthInput struct {
	Month time.Month // Month to show (0 = current)
	Year  int        // Year to show (0 = current)
}

// MonthDay is one cell of the month grid. Padding cells have a zero Date.
type MonthDay struct {
	Date  domain.Date
	Stats domain.DayStats
}

// ShowMonthOutput contains the month grid, Sunday first.
type ShowMonthOutput struct {
	Days  []MonthDay
	Today domain.Date
	Month time.Month
	Year  int
}

// ShowMonth is the use case for the calendar view.
type ShowMonth struct {
	store domain.SnapshotStore
	clock domain.Clock
}

// NewShowMonth creates a new ShowMonth use case.
func NewShowMonth(store domain.SnapshotStore, clock domain.Clock) *ShowMonth {
	return &ShowMonth{
		store: store,
		clock: clock,
	}
}

// Execute computes per-day statistics for a whole month.
func (uc *ShowMonth) Execute(_ context.Context, in ShowMonthInput) (*ShowMonthOutput, error) {
	snap, err := uc.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	today := domain.DateOf(uc.clock.Now())
	year, month := in.Year, in.Month
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = today.Month()
	}

	grid := domain.MonthGrid(year, month)
	first := domain.NewDate(year, month, 1)
	last := first.AddMonths(1).AddDays(-1)

	m := domain.NewMaterializer(uc.clock)
	byDate := make(map[string][]domain.Occurrence)
	for _, o := range m.ForRange(snap.Tasks, first, last) {
		byDate[o.Date.String()] = append(byDate[o.Date.String()], o)
	}

	days := make([]MonthDay, len(grid))
	for i, d := range grid {
		days[i].Date = d
		if !d.IsZero() {
			days[i].Stats = domain.ComputeStats(byDate[d.String()])
		}
	}
	return &ShowMonthOutput{Days: days, Today: today, Month: month, Year: year}, nil
}
