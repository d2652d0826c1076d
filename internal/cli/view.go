package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase"
	"github.com/spf13/cobra"
)

// newDayCommand creates the day command.
func newDayCommand(c *app.Container) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "day [date]",
		Short: "List the tasks of a day",
		Long: `List every task shown on a day: dated tasks, open carry-over tasks
and occurrences of recurring tasks, sorted by time and name.

The date defaults to today and accepts the same forms as 'add --date'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.ListDayInput{Project: project}
			if len(args) == 1 {
				date, err := domain.NormalizeDate(args[0], domain.DateOf(c.Clock.Now()))
				if err != nil {
					return err
				}
				in.Date = date
			}

			uc := c.ListDayUseCase()
			out, err := uc.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "%s %s\n", out.Date.Weekday().String()[:3], out.Date)
			if len(out.Occurrences) == 0 {
				_, _ = fmt.Fprintln(w, "No tasks.")
				return nil
			}
			printOccurrences(w, out.Occurrences)
			_, _ = fmt.Fprintf(w, "\n%s\n", formatStats(out.Stats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Only list this project")

	return cmd
}

// newUrgentCommand creates the urgent command.
func newUrgentCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "urgent",
		Short: "List open urgent tasks due today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.UrgentTodayUseCase()
			out, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Occurrences) == 0 {
				_, _ = fmt.Fprintln(w, "Nothing urgent today.")
				return nil
			}
			printOccurrences(w, out.Occurrences)
			return nil
		},
	}
}

// newMonthCommand creates the month command.
func newMonthCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show a month with completion per day",
		Long: `Show a calendar month. Each day shows completed/total tasks;
a trailing ! marks days with open urgent tasks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in usecase.ShowMonthInput
			if len(args) == 1 {
				t, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("%w: month %q (want YYYY-MM)", domain.ErrInvalidDate, args[0])
				}
				in.Year, in.Month = t.Year(), t.Month()
			}

			uc := c.ShowMonthUseCase()
			out, err := uc.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			printMonth(cmd.OutOrStdout(), out)
			return nil
		},
	}
	return cmd
}

// newUndatedCommand creates the undated command.
func newUndatedCommand(c *app.Container) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "undated",
		Short: "List tasks without a date, grouped by project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListUndatedUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListUndatedInput{IncludeCompleted: all})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Groups) == 0 {
				_, _ = fmt.Fprintln(w, "No undated tasks.")
				return nil
			}
			for i, group := range out.Groups {
				if i > 0 {
					_, _ = fmt.Fprintln(w)
				}
				_, _ = fmt.Fprintf(w, "%s\n", group.Project)
				for _, task := range group.Tasks {
					_, _ = fmt.Fprintf(w, "  %s #%d %s\n", checkbox(task.Completed), task.ID, task.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")

	return cmd
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// printOccurrences writes one aligned row per occurrence.
func printOccurrences(w io.Writer, occs []domain.Occurrence) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\tREF\tTIME\tNAME\tPROJECT\tFLAGS")
	for _, o := range occs {
		t := o.Task
		clock := t.Time
		if clock == "" {
			clock = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			checkbox(t.Completed), o.Ref, clock, t.Name, t.Project, occurrenceFlags(o))
	}
	_ = tw.Flush()
}

func occurrenceFlags(o domain.Occurrence) string {
	var flags []string
	if o.Task.Urgent {
		flags = append(flags, "urgent")
	}
	if o.Task.CarryOver {
		flags = append(flags, "carry-over")
	}
	if o.Task.RecurringRootID != nil || o.Task.IsRecurringRoot {
		flags = append(flags, "recurring")
	}
	if len(o.Task.Predecessors) > 0 {
		flags = append(flags, "after #"+joinIDs(o.Task.Predecessors, ",#"))
	}
	return strings.Join(flags, " ")
}

func joinIDs(ids []int64, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, sep)
}

func formatStats(s domain.DayStats) string {
	line := fmt.Sprintf("%d/%d done (%.0f%%)", s.Completed, s.Total, s.Percentage)
	if s.UrgentTotal > 0 {
		line += fmt.Sprintf(", urgent %d/%d", s.UrgentCompleted, s.UrgentTotal)
	}
	return line
}

// printMonth renders a Sunday-first calendar grid.
func printMonth(w io.Writer, out *usecase.ShowMonthOutput) {
	_, _ = fmt.Fprintf(w, "%s %d\n", out.Month, out.Year)
	_, _ = fmt.Fprintln(w, "   Sun      Mon      Tue      Wed      Thu      Fri      Sat")

	var row strings.Builder
	for i, day := range out.Days {
		row.WriteString(formatMonthCell(day, out.Today))
		if i%7 == 6 {
			_, _ = fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
			row.Reset()
		}
	}
	if row.Len() > 0 {
		_, _ = fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
	}
}

func formatMonthCell(day usecase.MonthDay, today domain.Date) string {
	if day.Date.IsZero() {
		return strings.Repeat(" ", 9)
	}
	marker := " "
	if day.Date.Equal(today) {
		marker = "*"
	}
	cell := fmt.Sprintf("%s%2d", marker, day.Date.Day())
	if day.Stats.Total > 0 {
		cell += fmt.Sprintf(" %d/%d", day.Stats.Completed, day.Stats.Total)
		if day.Stats.UrgentCompleted < day.Stats.UrgentTotal {
			cell += "!"
		}
	}
	return fmt.Sprintf("%-9s", cell)
}

// describeTask summarizes a task on one line.
func describeTask(t *domain.Task) string {
	var parts []string
	parts = append(parts, t.Name)
	if !t.Date.IsZero() {
		parts = append(parts, t.Date.String())
	}
	if t.Time != "" {
		parts = append(parts, t.Time)
	}
	parts = append(parts, "("+t.Project+")")
	return strings.Join(parts, " ")
}

// printTaskDetails writes the full view of one task.
func printTaskDetails(w io.Writer, out *usecase.ShowTaskOutput) {
	t := out.Task
	_, _ = fmt.Fprintf(w, "#%d %s %s\n", t.ID, checkbox(out.Completed), t.Name)
	_, _ = fmt.Fprintf(w, "  Kind:     %s\n", t.Kind())
	_, _ = fmt.Fprintf(w, "  Project:  %s\n", t.Project)
	if !t.Date.IsZero() {
		_, _ = fmt.Fprintf(w, "  Date:     %s\n", t.Date)
	}
	if !t.EndDate.IsZero() {
		_, _ = fmt.Fprintf(w, "  End:      %s\n", t.EndDate)
	}
	if t.Time != "" {
		_, _ = fmt.Fprintf(w, "  Time:     %s\n", t.Time)
	}
	if t.Urgent {
		_, _ = fmt.Fprintln(w, "  Urgent:   yes")
	}
	if p := t.RecurrencePattern; p != nil {
		_, _ = fmt.Fprintf(w, "  Repeats:  %s\n", describePattern(p))
		if len(t.CompletedDates) > 0 {
			_, _ = fmt.Fprintf(w, "  Done on:  %s\n", joinDates(t.CompletedDates))
		}
		if len(t.ExcludedDates) > 0 {
			_, _ = fmt.Fprintf(w, "  Skipped:  %s\n", joinDates(t.ExcludedDates))
		}
	}
	for _, p := range out.Predecessors {
		_, _ = fmt.Fprintf(w, "  After:    #%d %s\n", p.ID, p.Name)
	}
	for _, s := range out.Successors {
		_, _ = fmt.Fprintf(w, "  Before:   #%d %s\n", s.ID, s.Name)
	}
	if t.Description != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", t.Description)
	}
}

func describePattern(p *domain.RecurrencePattern) string {
	s := string(p.Frequency)
	if p.Interval > 1 {
		s = fmt.Sprintf("every %d (%s)", p.Interval, p.Frequency)
	}
	if p.Frequency == domain.FrequencyWeekly && len(p.DaysOfWeek) > 0 {
		names := make([]string, len(p.DaysOfWeek))
		for i, day := range p.DaysOfWeek {
			names[i] = time.Weekday(day).String()[:3]
		}
		s += " on " + strings.Join(names, ",")
	}
	return s + ", count " + p.Count.String()
}

func joinDates(dates domain.DateSet) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.String()
	}
	return strings.Join(parts, " ")
}
