package cli

import (
	"fmt"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/usecase"
	"github.com/spf13/cobra"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the taskdeck data directory",
		Long: `Initialize the taskdeck data directory.

The directory is $TASKDECK_HOME, or $XDG_DATA_HOME/taskdeck
(default ~/.local/share/taskdeck). It receives an empty store with the
default projects Personal, Work and Health. With [storage] backend = "git"
the store is a git repository that records every change.

Running init again is harmless.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitStoreUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitStoreInput{
				HomeDir: c.Config.HomeDir,
			})
			if err != nil {
				return err
			}

			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "taskdeck already initialized in %s\n", out.HomeDir)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Initialized taskdeck in %s\n", out.HomeDir)
			return nil
		},
	}
}
