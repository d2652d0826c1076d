package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/usecase"
	"github.com/spf13/cobra"
)

// newExportCommand creates the export command.
func newExportCommand(c *app.Container) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data as JSON",
		Long: `Export tasks, projects and settings as a versioned JSON document.

Writes to stdout unless --output is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ExportDataUseCase()
			out, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(append(out.Data, '\n'))
				return err
			}
			if err := os.WriteFile(output, out.Data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d task(s) to %s\n", out.Tasks, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")

	return cmd
}

// newImportCommand creates the import command.
func newImportCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with an export",
		Long: `Replace tasks, projects and settings with the content of an export file.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			uc := c.ImportDataUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ImportDataInput{Data: data})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d task(s) and %d project(s)\n", out.Tasks, out.Projects)
			return nil
		},
	}
}

// newHistoryCommand creates the history command.
func newHistoryCommand(c *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored revisions (git backend)",
		Long: `List the revisions recorded by the git storage backend, newest first.
Each local change is one revision; use 'taskdeck restore' to go back.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ShowHistoryUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowHistoryInput{Limit: limit})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "REVISION\tWHEN\tTASKS\tCHANGE")
			for _, rev := range out.Revisions {
				hash := rev.Hash
				if len(hash) > 10 {
					hash = hash[:10]
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", hash, rev.When.Local().Format("2006-01-02 15:04"), rev.Tasks, rev.Message)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum revisions to show (0 = all)")

	return cmd
}

// newRestoreCommand creates the restore command.
func newRestoreCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <revision>",
		Short: "Restore the data of a revision (git backend)",
		Long: `Restore tasks, projects and settings as they were at a revision.
The restore is recorded as a new revision, so it can be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.RestoreRevisionUseCase()
			if err := uc.Execute(cmd.Context(), usecase.RestoreRevisionInput{Revision: args[0]}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Restored revision %s\n", args[0])
			return nil
		},
	}
}
