package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/usecase"
	"github.com/spf13/cobra"
)

// newAddCommand creates the add command for creating tasks.
func newAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Description string
		Project     string
		Date        string
		EndDate     string
		Time        string
		Frequency   string
		Count       string
		Days        string
		Interval    int
		CarryOver   bool
		Urgent      bool
		Recurring   bool
	}

	cmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Create a task",
		Long: `Create a task.

Dates accept 2026-03-01, 20260301 or the words today, tomorrow and
yesterday. Times accept 13:30, 1330 or 130pm.

A task without --date is undated unless it carries over, repeats or is
urgent, in which case it starts today.

Examples:
  # Plain task on a day
  taskdeck add Pay rent --date 20260301 --time 9am

  # Stays on the list every day until done, at most until Friday
  taskdeck add Write report --carry-over --end 2026-03-06 --urgent

  # Every other Monday and Thursday, ten times
  taskdeck add Team sync --freq weekly --interval 2 --days mon,thu --count 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := parseWeekdays(opts.Days)
			if err != nil {
				return err
			}

			uc := c.NewTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.NewTaskInput{
				Name:        strings.Join(args, " "),
				Description: opts.Description,
				Project:     opts.Project,
				Date:        opts.Date,
				EndDate:     opts.EndDate,
				Time:        opts.Time,
				Frequency:   opts.Frequency,
				Count:       opts.Count,
				DaysOfWeek:  days,
				Interval:    opts.Interval,
				CarryOver:   opts.CarryOver,
				Urgent:      opts.Urgent,
				Recurring:   opts.Recurring,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s task #%d\n", out.Task.Kind(), out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "desc", "m", "", "Task description")
	cmd.Flags().StringVarP(&opts.Project, "project", "p", "", "Project (default Personal)")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "Start date")
	cmd.Flags().StringVar(&opts.EndDate, "end", "", "Last date for carry-over and recurring tasks")
	cmd.Flags().StringVarP(&opts.Time, "time", "t", "", "Time of day")
	cmd.Flags().BoolVarP(&opts.CarryOver, "carry-over", "c", false, "Keep the task open across days until done")
	cmd.Flags().BoolVarP(&opts.Urgent, "urgent", "u", false, "Highlight the task on its final day")
	cmd.Flags().BoolVarP(&opts.Recurring, "recurring", "r", false, "Repeat the task (daily unless --freq is given)")
	cmd.Flags().StringVar(&opts.Frequency, "freq", "", "Recurrence frequency: daily, weekly, monthly, yearly")
	cmd.Flags().IntVar(&opts.Interval, "interval", 1, "Recurrence interval")
	cmd.Flags().StringVar(&opts.Days, "days", "", "Weekdays for weekly recurrence (e.g. mon,wed or 1,3)")
	cmd.Flags().StringVar(&opts.Count, "count", "", "Number of occurrences or \"infinite\"")

	return cmd
}

// newBatchCommand creates the batch command for creating tasks from a YAML file.
func newBatchCommand(c *app.Container) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Create tasks from a YAML file",
		Long: `Create several tasks from a YAML list.

Each row takes name, description, date, time and project. Dates and times
use the compact batch forms: 20260301, 202603011330pm, 130pm or 1301.
Use "-" to read from stdin.

Example file:
  - name: Buy milk
    date: "20260301"
    time: "730"
  - name: Call the bank
    project: Work`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if args[0] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			uc := c.CreateTasksFromFileUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.CreateTasksFromFileInput{
				Content: string(content),
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, warning := range out.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", warning)
			}
			if dryRun {
				_, _ = fmt.Fprintf(w, "Would create %d task(s):\n", len(out.Tasks))
				for _, task := range out.Tasks {
					_, _ = fmt.Fprintf(w, "  %s\n", describeTask(task))
				}
				return nil
			}
			_, _ = fmt.Fprintf(w, "Created %d task(s)\n", len(out.Tasks))
			for _, task := range out.Tasks {
				_, _ = fmt.Fprintf(w, "  #%d %s\n", task.ID, describeTask(task))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview tasks without creating")

	return cmd
}

// newShowCommand creates the show command.
func newShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show task details",
		Long: `Show a task with its schedule and dependencies.

A ref is a task ID (12) or an occurrence of a recurring task (12-2026-03-01).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}

			uc := c.ShowTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowTaskInput{Ref: ref})
			if err != nil {
				return err
			}

			printTaskDetails(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// newDoneCommand creates the done command.
func newDoneCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "done <ref>",
		Short: "Toggle completion of a task or occurrence",
		Long: `Mark a task done, or reopen it if it already is.

For a recurring task pass the occurrence (12-2026-03-01); the bare ID
toggles today's occurrence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}

			uc := c.ToggleTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ToggleTaskInput{Ref: ref})
			if err != nil {
				return err
			}

			verb := "Reopened"
			if out.Completed {
				verb = "Completed"
			}
			target := fmt.Sprintf("#%d", out.Task.ID)
			if !out.Date.IsZero() {
				target = fmt.Sprintf("#%s", domain.InstanceRef(out.Task.ID, out.Date))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", verb, target, out.Task.Name)
			return nil
		},
	}
}

// newEditCommand creates the edit command.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Name        string
		Description string
		Project     string
		Date        string
		EndDate     string
		Time        string
		Count       string
		Days        string
		Interval    int
		Urgent      bool
		CarryOver   bool
	}

	cmd := &cobra.Command{
		Use:   "edit <ref>",
		Short: "Edit a task",
		Long: `Edit a task.

With flags, only the given fields change; an empty value clears a date or
time. Without flags the task opens in $EDITOR as YAML.

Edits always apply to the stored task: editing an occurrence of a
recurring task changes the whole series.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.NFlag() == 0 {
				return editInEditor(cmd, c, ref)
			}

			in := usecase.EditTaskInput{Ref: ref}
			if flags.Changed("name") {
				in.Name = &opts.Name
			}
			if flags.Changed("desc") {
				in.Description = &opts.Description
			}
			if flags.Changed("project") {
				in.Project = &opts.Project
			}
			if flags.Changed("date") {
				in.Date = &opts.Date
			}
			if flags.Changed("end") {
				in.EndDate = &opts.EndDate
			}
			if flags.Changed("time") {
				in.Time = &opts.Time
			}
			if flags.Changed("count") {
				in.Count = &opts.Count
			}
			if flags.Changed("interval") {
				in.Interval = &opts.Interval
			}
			if flags.Changed("days") {
				days, err := parseWeekdays(opts.Days)
				if err != nil {
					return err
				}
				in.DaysOfWeek = days
			}
			if flags.Changed("urgent") {
				in.Urgent = &opts.Urgent
			}
			if flags.Changed("carry-over") {
				in.CarryOver = &opts.CarryOver
			}

			return runEdit(cmd, c, in)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "New name")
	cmd.Flags().StringVarP(&opts.Description, "desc", "m", "", "New description")
	cmd.Flags().StringVarP(&opts.Project, "project", "p", "", "New project")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "New start date (empty clears)")
	cmd.Flags().StringVar(&opts.EndDate, "end", "", "New end date (empty clears)")
	cmd.Flags().StringVarP(&opts.Time, "time", "t", "", "New time (empty clears)")
	cmd.Flags().StringVar(&opts.Count, "count", "", "New occurrence count (recurring only)")
	cmd.Flags().IntVar(&opts.Interval, "interval", 1, "New interval (recurring only)")
	cmd.Flags().StringVar(&opts.Days, "days", "", "New weekdays (weekly recurring only)")
	cmd.Flags().BoolVarP(&opts.Urgent, "urgent", "u", false, "Set or clear the urgent flag")
	cmd.Flags().BoolVarP(&opts.CarryOver, "carry-over", "c", false, "Set or clear carry-over")

	return cmd
}

func runEdit(cmd *cobra.Command, c *app.Container, in usecase.EditTaskInput) error {
	uc := c.EditTaskUseCase()
	out, err := uc.Execute(cmd.Context(), in)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %s\n", out.Task.ID, out.Task.Name)
	return nil
}

// newRmCommand creates the rm command.
func newRmCommand(c *app.Container) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "rm <ref>",
		Short: "Delete a task or an occurrence",
		Long: `Delete a task.

Recurring tasks need --mode:
  instance  remove only the given occurrence (12-2026-03-01)
  all       remove the task and every occurrence

Deleting a plain task also removes it from the dependencies of other tasks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}

			deleteMode := usecase.DeleteMode(mode)
			switch deleteMode {
			case usecase.DeleteAsk, usecase.DeleteInstance, usecase.DeleteAllFuture:
			default:
				return fmt.Errorf("invalid mode %q (want instance or all)", mode)
			}

			uc := c.DeleteTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.DeleteTaskInput{Ref: ref, Mode: deleteMode})
			if errors.Is(err, domain.ErrRecurringChoiceRequired) {
				return fmt.Errorf("%w (use --mode instance or --mode all)", err)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !out.Excluded.IsZero() {
				_, _ = fmt.Fprintf(w, "Deleted occurrence %s of #%d\n", out.Excluded, ref.Resolve())
				return nil
			}
			for _, id := range out.Removed {
				_, _ = fmt.Fprintf(w, "Deleted task #%d\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "For recurring tasks: instance or all")

	return cmd
}

// newDepCommand creates the dep command with its add/rm subcommands.
func newDepCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
	}
	cmd.AddCommand(newDepEditCommand(c, false))
	cmd.AddCommand(newDepEditCommand(c, true))
	return cmd
}

func newDepEditCommand(c *app.Container, remove bool) *cobra.Command {
	var successor bool

	use, short := "add <task> <other>", "Make <other> a predecessor of <task>"
	if remove {
		use, short = "rm <task> <other>", "Remove the dependency between <task> and <other>"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := parseRef(args[0])
			if err != nil {
				return err
			}
			other, err := parseRef(args[1])
			if err != nil {
				return err
			}

			kind := domain.DependencyPredecessor
			if successor {
				kind = domain.DependencySuccessor
			}

			uc := c.EditDependencyUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.EditDependencyInput{
				Kind:   kind,
				Task:   task,
				Other:  other,
				Remove: remove,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case !out.Changed:
				_, _ = fmt.Fprintln(w, "Nothing to change")
			case remove:
				_, _ = fmt.Fprintf(w, "Removed %s #%d from #%d\n", kind, other.Resolve(), task.Resolve())
			default:
				_, _ = fmt.Fprintf(w, "Added #%d as %s of #%d\n", other.Resolve(), kind, task.Resolve())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&successor, "successor", false, "Treat <other> as a successor instead")

	return cmd
}

// parseRef parses a task reference argument.
func parseRef(s string) (domain.TaskRef, error) {
	ref, err := domain.ParseTaskRef(s)
	if err != nil {
		return domain.TaskRef{}, fmt.Errorf("invalid task reference: %w", err)
	}
	return ref, nil
}

var weekdayNames = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// parseWeekdays parses a comma separated list of weekday names or numbers (0 = Sunday).
func parseWeekdays(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if len(part) >= 3 {
			if day, ok := weekdayNames[part[:3]]; ok {
				days = append(days, day)
				continue
			}
		}
		day, err := strconv.Atoi(part)
		if err != nil || day < 0 || day > 6 {
			return nil, fmt.Errorf("%w: weekday %q", domain.ErrInvalidPattern, part)
		}
		days = append(days, day)
	}
	return days, nil
}
