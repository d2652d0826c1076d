// Package cli provides the command-line interface for taskdeck.
package cli

import (
	"fmt"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/tui"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupTask  = "task"
	groupView  = "view"
	groupSync  = "sync"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for taskdeck.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskdeck",
		Short: "Personal task manager with recurring tasks and sync",
		Long: `taskdeck is a personal task manager.

Tasks can be dated or undated, carry over until done, or repeat on a
daily, weekly, monthly or yearly pattern. Data lives in a local store
and can be kept in step across machines with a small sync server.

Run without arguments to open the day view.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchTUIFunc(c)
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupView, Title: "Views:"},
		&cobra.Group{ID: groupSync, Title: "Sync and Data:"},
	)

	grouped := map[string][]*cobra.Command{
		groupSetup: {
			newInitCommand(c),
			newConfigCommand(c),
			newLogCommand(c),
		},
		groupTask: {
			newAddCommand(c),
			newBatchCommand(c),
			newShowCommand(c),
			newDoneCommand(c),
			newEditCommand(c),
			newRmCommand(c),
			newDepCommand(c),
			newProjectCommand(c),
		},
		groupView: {
			newDayCommand(c),
			newMonthCommand(c),
			newUndatedCommand(c),
			newUrgentCommand(c),
			newTUICommand(c),
		},
		groupSync: {
			newSyncCommand(c),
			newServeCommand(c, version),
			newExportCommand(c),
			newImportCommand(c),
			newHistoryCommand(c),
			newRestoreCommand(c),
		},
	}
	for _, group := range []string{groupSetup, groupTask, groupView, groupSync} {
		for _, cmd := range grouped[group] {
			cmd.GroupID = group
			root.AddCommand(cmd)
		}
	}

	return root
}

// launchTUI runs the day view until the user quits.
func launchTUI(c *app.Container) error {
	if c == nil {
		return fmt.Errorf("taskdeck is not configured")
	}
	return tui.Run(c)
}
