package cli

import (
	"github.com/runoshun/taskdeck/internal/app"
	"github.com/spf13/cobra"
)

// newTUICommand creates the tui command for launching the interactive TUI.
// It is the same as running taskdeck without arguments.
func newTUICommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive day view",
		Long: `Open the interactive day view.

Keys: h/l previous/next day, t today, space toggle, d delete,
r refresh, q quit. While it runs, sync and reminders are active.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchTUIFunc(c)
		},
	}
}
