package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/syncer"
	"github.com/runoshun/taskdeck/internal/usecase"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPasswordFunc reads a password without echo, allowing it to be mocked in tests.
var readPasswordFunc = func(fd int) ([]byte, error) {
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal (use --password)")
	}
	return term.ReadPassword(fd)
}

// newSyncCommand creates the sync command.
func newSyncCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync tasks with a taskdeck server",
		Long: `Keep the local data in step with a taskdeck sync server.

Typical setup:
  taskdeck sync config --url https://tasks.example.com
  taskdeck sync enable

Local and server data are merged task by task; the most recently
modified version of a task wins and deletions are kept.`,
	}

	cmd.AddCommand(
		newSyncConfigCommand(c),
		newSyncStatusCommand(c),
		newSyncRunCommand(c),
		newSyncActionCommand(c, usecase.SyncEnable, "enable", "Turn sync on and run a first exchange"),
		newSyncActionCommand(c, usecase.SyncDisable, "disable", "Turn sync off"),
		newSyncActionCommand(c, usecase.SyncTest, "test", "Check the server URL and password"),
		newSyncActionCommand(c, usecase.SyncPush, "push", "Upload local data to the server"),
		newSyncActionCommand(c, usecase.SyncPull, "pull", "Merge server data and upload the result"),
		newSyncActionCommand(c, usecase.SyncOnce, "now", "Pull, or push when the server has nothing new"),
	)

	return cmd
}

func newSyncConfigCommand(c *app.Container) *cobra.Command {
	var opts struct {
		URL      string
		Password string
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Set the server URL and password",
		Long: `Set the server URL and password.

Without --password the password is read from the terminal without echo.
Without any flag the current settings are shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			in := usecase.SyncControlInput{Action: usecase.SyncConfigure}
			if flags.Changed("url") {
				in.ServerURL = &opts.URL
			}
			switch {
			case flags.Changed("password"):
				in.Password = &opts.Password
			case flags.Changed("url"):
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				raw, err := readPasswordFunc(int(os.Stdin.Fd()))
				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password := strings.TrimSpace(string(raw))
				in.Password = &password
			}

			if in.ServerURL == nil && in.Password == nil {
				cfg, err := c.SyncConfigs.LoadSyncConfig()
				if err != nil {
					return fmt.Errorf("load sync config: %w", err)
				}
				printSyncConfig(cmd.OutOrStdout(), cfg)
				return nil
			}

			uc := c.SyncControlUseCase()
			out, err := uc.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			printSyncConfig(cmd.OutOrStdout(), out.Config)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "Server URL (e.g. http://localhost:3001)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Server password")

	return cmd
}

func newSyncStatusCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync settings and whether the server is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.SyncControlUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.SyncControlInput{Action: usecase.SyncStatus})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printSyncConfig(w, out.Config)
			switch {
			case out.Reachable:
				_, _ = fmt.Fprintln(w, "Server:   reachable")
			case out.CheckErr != nil:
				_, _ = fmt.Fprintf(w, "Server:   %v\n", out.CheckErr)
			}
			return nil
		},
	}
}

func newSyncActionCommand(c *app.Container, action usecase.SyncAction, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.SyncControlUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.SyncControlInput{Action: action})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch action {
			case usecase.SyncEnable:
				_, _ = fmt.Fprintf(w, "Sync enabled with %s\n", out.Config.ServerURL)
			case usecase.SyncDisable:
				_, _ = fmt.Fprintln(w, "Sync disabled")
			case usecase.SyncTest:
				_, _ = fmt.Fprintf(w, "Connected to %s\n", out.Config.ServerURL)
			case usecase.SyncPull, usecase.SyncOnce:
				if out.Pulled {
					_, _ = fmt.Fprintln(w, "Merged server changes")
				} else if action == usecase.SyncPull {
					_, _ = fmt.Fprintln(w, "Already up to date")
				} else {
					_, _ = fmt.Fprintln(w, "Pushed local data")
				}
			case usecase.SyncPush:
				_, _ = fmt.Fprintln(w, "Pushed local data")
			}
			return nil
		},
	}
}

func newSyncRunCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run sync and reminders in the foreground",
		Long: `Run in the foreground until interrupted.

When sync is enabled, the server is polled for changes and local edits from
any taskdeck command are pushed shortly after they are saved. Reminders
and the urgent digest fire while this command runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runDaemon(ctx, cmd.ErrOrStderr(), c)
		},
	}
}

// runDaemon keeps the engine and reminders running until ctx is done.
func runDaemon(ctx context.Context, w io.Writer, c *app.Container) error {
	cfg, err := c.SyncConfigs.LoadSyncConfig()
	if err != nil {
		return fmt.Errorf("load sync config: %w", err)
	}

	var engine *syncer.Engine
	if cfg.Enabled && cfg.ServerURL != "" {
		engine = c.NewSyncEngine(cfg, func(st syncer.Status) {
			if st.State == syncer.StateError {
				c.Slog.Warn("sync error", "error", st.Message)
			}
		})
		if err := engine.Enable(ctx); err != nil && !errors.Is(err, domain.ErrSyncDisabled) {
			c.Slog.Warn("initial sync failed", "error", err)
		}
		_, _ = fmt.Fprintf(w, "Syncing with %s\n", cfg.ServerURL)
	} else {
		_, _ = fmt.Fprintln(w, "Sync is not enabled; running reminders only")
	}

	err = c.WatchStore(ctx, func() {
		if engine != nil {
			engine.NotifyChanged()
		}
		if err := c.RefreshReminders(); err != nil {
			c.Slog.Warn("refresh reminders", "error", err)
		}
	})
	if err != nil {
		c.Slog.Warn("watch store", "error", err)
	}

	if err := c.StartReminders(); err != nil {
		return fmt.Errorf("start reminders: %w", err)
	}

	<-ctx.Done()

	if engine != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := engine.Flush(flushCtx); err != nil && !errors.Is(err, domain.ErrSyncDisabled) {
			c.Slog.Warn("final push failed", "error", err)
		}
		engine.Disable()
	}
	_, _ = fmt.Fprintln(w, "Stopped")
	return nil
}

func printSyncConfig(w io.Writer, cfg domain.SyncConfig) {
	url := cfg.ServerURL
	if url == "" {
		url = "(not set)"
	}
	password := "(not set)"
	if cfg.Password != "" {
		password = "********"
	}
	state := "disabled"
	if cfg.Enabled {
		state = "enabled"
	}
	_, _ = fmt.Fprintf(w, "URL:      %s\n", url)
	_, _ = fmt.Fprintf(w, "Password: %s\n", password)
	_, _ = fmt.Fprintf(w, "Sync:     %s\n", state)
}
