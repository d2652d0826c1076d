package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/syncer"
)

// SyncEngine is the part of syncer.Engine the sync commands drive.
type SyncEngine interface {
	Push(ctx context.Context, snap *domain.Snapshot) error
	Pull(ctx context.Context) (bool, error)
	Flush(ctx context.Context) error
	TestConnection(ctx context.Context) error
	Enable(ctx context.Context) error
	Disable()
	Status() syncer.Status
}

// SyncEngineFactory builds an engine for the given connection settings.
type SyncEngineFactory func(cfg domain.SyncConfig) SyncEngine

// SyncAction selects what SyncControl does.
type SyncAction string

// Sync actions.
const (
	SyncConfigure SyncAction = "configure" // Store server URL and password
	SyncEnable    SyncAction = "enable"    // Turn sync on and run the first exchange
	SyncDisable   SyncAction = "disable"   // Turn sync off
	SyncTest      SyncAction = "test"      // Check credentials
	SyncPush      SyncAction = "push"      // Upload local data
	SyncPull      SyncAction = "pull"      // Merge server data and push the result
	SyncOnce      SyncAction = "once"      // Pull, then push if nothing was pulled
	SyncStatus    SyncAction = "status"    // Report settings and reachability
)

// SyncControlInput contains the parameters for a sync command.
type SyncControlInput struct {
	ServerURL *string    // New server URL (configure)
	Password  *string    // New password (configure)
	Action    SyncAction // What to do
}

// SyncControlOutput contains the result of a sync command.
// Fields are ordered to minimize memory padding.
type SyncControlOutput struct {
	Status    syncer.Status     // Engine status after the exchange
	Config    domain.SyncConfig // Stored settings after the command
	CheckErr  error             // Connection check failure (status)
	Pulled    bool              // Remote data was merged
	Reachable bool              // Connection check succeeded (status)
}

// SyncControl is the use case behind the sync commands.
type SyncControl struct {
	configs   domain.SyncConfigStore
	newEngine SyncEngineFactory
	logger    domain.Logger
}

// NewSyncControl creates a new SyncControl use case.
func NewSyncControl(configs domain.SyncConfigStore, newEngine SyncEngineFactory, logger domain.Logger) *SyncControl {
	return &SyncControl{configs: configs, newEngine: newEngine, logger: logger}
}

// Execute runs one sync command. Exchanges are one-shot: the engine is
// disabled again before returning, after any pending re-push was flushed.
func (uc *SyncControl) Execute(ctx context.Context, in SyncControlInput) (*SyncControlOutput, error) {
	cfg, err := uc.configs.LoadSyncConfig()
	if err != nil {
		return nil, fmt.Errorf("load sync config: %w", err)
	}
	out := &SyncControlOutput{Config: cfg}

	switch in.Action {
	case SyncConfigure:
		if in.ServerURL != nil {
			cfg.ServerURL = strings.TrimRight(strings.TrimSpace(*in.ServerURL), "/")
		}
		if in.Password != nil {
			cfg.Password = *in.Password
		}
		if err := uc.save(cfg); err != nil {
			return nil, err
		}
		out.Config = cfg
		uc.logger.Info(0, "sync", "configured server "+cfg.ServerURL)
		return out, nil

	case SyncDisable:
		cfg.Enabled = false
		if err := uc.save(cfg); err != nil {
			return nil, err
		}
		out.Config = cfg
		uc.logger.Info(0, "sync", "disabled")
		return out, nil

	case SyncStatus:
		if cfg.ServerURL == "" {
			out.CheckErr = domain.ErrSyncNotConfigured
			return out, nil
		}
		out.CheckErr = uc.newEngine(cfg).TestConnection(ctx)
		out.Reachable = out.CheckErr == nil
		return out, nil
	}

	if cfg.ServerURL == "" {
		return nil, domain.ErrSyncNotConfigured
	}
	engine := uc.newEngine(cfg)
	defer engine.Disable()

	switch in.Action {
	case SyncTest:
		if err := engine.TestConnection(ctx); err != nil {
			return nil, fmt.Errorf("test connection: %w", err)
		}
		return out, nil

	case SyncEnable:
		if err := engine.TestConnection(ctx); err != nil {
			return nil, fmt.Errorf("test connection: %w", err)
		}
		cfg.Enabled = true
		if err := uc.save(cfg); err != nil {
			return nil, err
		}
		out.Config = cfg
		err = engine.Enable(ctx)
		if err == nil {
			err = engine.Flush(ctx)
		}
		uc.logger.Info(0, "sync", "enabled")

	case SyncPush:
		err = engine.Push(ctx, nil)

	case SyncPull:
		out.Pulled, err = engine.Pull(ctx)
		if err == nil {
			err = engine.Flush(ctx)
		}

	case SyncOnce:
		out.Pulled, err = engine.Pull(ctx)
		switch {
		case err != nil:
		case out.Pulled:
			err = engine.Flush(ctx)
		default:
			err = engine.Push(ctx, nil)
		}

	default:
		return nil, fmt.Errorf("unknown sync action %q", in.Action)
	}

	out.Status = engine.Status()
	if err != nil && !errors.Is(err, domain.ErrSyncDisabled) {
		return out, err
	}
	return out, nil
}

func (uc *SyncControl) save(cfg domain.SyncConfig) error {
	if err := uc.configs.SaveSyncConfig(cfg); err != nil {
		return fmt.Errorf("save sync config: %w", err)
	}
	return nil
}

var (
	_ SyncEngine  = (*syncer.Engine)(nil)
	_ syncer.Host = (*SyncHost)(nil)
)
