package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/usecase"
	"github.com/spf13/cobra"
)

// newProjectCommand creates the project command.
func newProjectCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(newProjectListCommand(c))
	cmd.AddCommand(newProjectAddCommand(c))
	cmd.AddCommand(newProjectRmCommand(c))

	return cmd
}

func newProjectListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List projects with their task counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListProjectsUseCase()
			out, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "PROJECT\tTASKS")
			for _, p := range out.Projects {
				_, _ = fmt.Fprintf(tw, "%s\t%d\n", p.Name, p.Tasks)
			}
			return tw.Flush()
		},
	}
}

func newProjectAddCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name...>",
		Short: "Add a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			uc := c.AddProjectUseCase()
			if err := uc.Execute(cmd.Context(), usecase.AddProjectInput{Name: name}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added project %s\n", name)
			return nil
		},
	}
}

func newProjectRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name...>",
		Short: "Delete a project, moving its tasks to Personal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			uc := c.DeleteProjectUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.DeleteProjectInput{Name: name})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s (%d task(s) moved)\n", name, out.Reassigned)
			return nil
		},
	}
}
