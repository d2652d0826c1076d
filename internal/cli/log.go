package cli

import (
	"fmt"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/usecase"
	"github.com/spf13/cobra"
)

// newLogCommand creates the log command.
func newLogCommand(c *app.Container) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "log [ref]",
		Short: "Show the activity log",
		Long: `Show the activity log, or the log of a single task.

Logs live under the data directory in logs/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in usecase.ShowLogsInput
			if len(args) == 1 {
				in.Task = args[0]
			}
			in.Lines = lines

			uc := c.ShowLogsUseCase()
			out, err := uc.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			if out.Content == "" {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No log entries.")
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines from the end (0 = all)")

	return cmd
}
