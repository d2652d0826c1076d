// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/taskdeck/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	homeDir       string // Data directory holding config.toml
	globalConfDir string // Path to global config directory (e.g., ~/.config/taskdeck)
}

// NewLoader creates a new Loader.
func NewLoader(homeDir string) *Loader {
	return &Loader{
		homeDir:       homeDir,
		globalConfDir: domain.GlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(homeDir, globalConfDir string) *Loader {
	return &Loader{
		homeDir:       homeDir,
		globalConfDir: globalConfDir,
	}
}

// Load returns the merged configuration.
// Precedence: defaults <- global <- home.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	paths := []string{filepath.Join(l.homeDir, domain.ConfigFileName)}
	if l.globalConfDir != "" {
		paths = append([]string{filepath.Join(l.globalConfDir, domain.ConfigFileName)}, paths...)
	}

	for _, path := range paths {
		if err := l.applyFile(cfg, path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	sort.Strings(cfg.Warnings)
	return cfg, nil
}

// LoadGlobal returns defaults overlaid with the global configuration only.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	cfg := domain.NewDefaultConfig()
	if err := l.applyFile(cfg, filepath.Join(l.globalConfDir, domain.ConfigFileName)); err != nil {
		return nil, err
	}
	sort.Strings(cfg.Warnings)
	return cfg, nil
}

// applyFile overlays the keys present in the file onto cfg.
func (l *Loader) applyFile(cfg *domain.Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Config paths come from the data and config directories
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return applyRawConfig(cfg, raw)
}

// applyRawConfig overlays raw onto cfg and collects warnings for unknown keys.
// Keys absent from raw leave cfg untouched, so false booleans can override true defaults.
func applyRawConfig(cfg *domain.Config, raw map[string]any) error {
	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}

		var fields map[string]any
		switch section {
		case "storage":
			fields = map[string]any{
				"backend":        &cfg.Storage.Backend,
				"namespace":      &cfg.Storage.Namespace,
				"encryption_key": &cfg.Storage.EncryptionKey,
			}
		case "sync":
			fields = map[string]any{
				"poll_interval": &cfg.Sync.PollInterval,
				"debounce":      &cfg.Sync.Debounce,
				"repush_delay":  &cfg.Sync.RepushDelay,
				"timeout":       &cfg.Sync.Timeout,
			}
		case "notify":
			fields = map[string]any{
				"enabled":      &cfg.Notify.Enabled,
				"command":      &cfg.Notify.Command,
				"digest":       &cfg.Notify.Digest,
				"default_time": &cfg.Notify.DefaultTime,
			}
		case "server":
			fields = map[string]any{
				"addr":        &cfg.Server.Addr,
				"password":    &cfg.Server.Password,
				"data_file":   &cfg.Server.DataFile,
				"store":       &cfg.Server.Store,
				"sqlite_path": &cfg.Server.SQLitePath,
			}
		case "log":
			fields = map[string]any{
				"level": &cfg.Log.Level,
			}
		default:
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}

		for k, v := range m {
			target, ok := fields[k]
			if !ok {
				cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown key in [%s]: %s", section, k))
				continue
			}
			if err := assign(target, v); err != nil {
				return fmt.Errorf("[%s] %s: %w", section, k, err)
			}
		}
	}
	return validate(cfg)
}

// assign stores a decoded TOML value into target.
func assign(target, v any) error {
	switch t := target.(type) {
	case *string:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		*t = s
	case *bool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected boolean, got %T", v)
		}
		*t = b
	case *time.Duration:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected duration string, got %T", v)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		if d <= 0 {
			return fmt.Errorf("duration must be positive: %s", s)
		}
		*t = d
	}
	return nil
}

func validate(cfg *domain.Config) error {
	switch cfg.Storage.Backend {
	case domain.StorageJSON, domain.StorageGit:
	default:
		return fmt.Errorf("[storage] backend: unknown backend %q", cfg.Storage.Backend)
	}
	switch cfg.Server.Store {
	case domain.ServerStoreFile, domain.ServerStoreSQLite:
	default:
		return fmt.Errorf("[server] store: unknown store %q", cfg.Server.Store)
	}
	if _, _, ok := domain.ParseClock(cfg.Notify.DefaultTime); !ok {
		return fmt.Errorf("[notify] default_time: %w", domain.ErrInvalidTime)
	}
	return nil
}
