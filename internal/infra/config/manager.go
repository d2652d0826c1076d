package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/runoshun/taskdeck/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	homeDir       string // Data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/taskdeck)
}

// NewManager creates a new Manager.
func NewManager(homeDir string) *Manager {
	return &Manager{
		homeDir:       homeDir,
		globalConfDir: domain.GlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(homeDir, globalConfDir string) *Manager {
	return &Manager{
		homeDir:       homeDir,
		globalConfDir: globalConfDir,
	}
}

// GetHomeConfigInfo returns information about the data directory config file.
func (m *Manager) GetHomeConfigInfo() domain.ConfigInfo {
	return m.getConfigInfo(domain.ConfigPath(m.homeDir))
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{}
	}
	return m.getConfigInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

// getConfigInfo reads a config file and returns its info.
func (m *Manager) getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path) //nolint:gosec // Config paths come from the data and config directories
	if err != nil {
		return domain.ConfigInfo{Path: path}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitHomeConfig creates the data directory config file from the template.
func (m *Manager) InitHomeConfig(cfg *domain.Config) error {
	if err := os.MkdirAll(m.homeDir, 0o700); err != nil {
		return err
	}
	return m.initConfig(domain.ConfigPath(m.homeDir), cfg)
}

// InitGlobalConfig creates a global config file from the template.
func (m *Manager) InitGlobalConfig(cfg *domain.Config) error {
	if m.globalConfDir == "" {
		return errors.New("global config directory not available")
	}
	if err := os.MkdirAll(m.globalConfDir, 0o700); err != nil {
		return err
	}
	return m.initConfig(filepath.Join(m.globalConfDir, domain.ConfigFileName), cfg)
}

// initConfig creates a config file with default template.
func (m *Manager) initConfig(path string, cfg *domain.Config) error {
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}
	return os.WriteFile(path, []byte(domain.RenderConfigTemplate(cfg)), 0o600)
}
