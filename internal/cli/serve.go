package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/server"
	"github.com/spf13/cobra"
)

// newServeCommand creates the serve command.
func newServeCommand(c *app.Container, version string) *cobra.Command {
	var opts struct {
		Addr     string
		Password string
		Store    string
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync server",
		Long: `Run the sync server in the foreground.

Settings come from the [server] section of the config. SYNC_PASSWORD,
PORT and DATA_FILE override it, and flags override both. Relative data
paths resolve against the data directory.

Clients authenticate with "Authorization: Bearer <password>".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := server.ApplyEnv(c.AppConfig.Server, os.Getenv)
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = opts.Addr
			}
			if flags.Changed("password") {
				cfg.Password = opts.Password
			}
			if flags.Changed("store") {
				cfg.Store = opts.Store
			}

			store, err := server.OpenStore(cfg, c.Config.HomeDir)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			srv, err := server.New(server.Options{
				Store:    store,
				Logger:   c.Slog,
				Out:      cmd.OutOrStdout(),
				Addr:     cfg.Addr,
				Password: cfg.Password,
				Version:  version,
			})
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default :3001)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Password clients must present")
	cmd.Flags().StringVar(&opts.Store, "store", "", "Storage: file or sqlite")

	return cmd
}
