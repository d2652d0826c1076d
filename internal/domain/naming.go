package domain

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the data directory.
const HomeEnv = "TASKDECK_HOME"

// HomeDir returns the data directory: $TASKDECK_HOME, else
// $XDG_DATA_HOME/taskdeck, else ~/.local/share/taskdeck.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "taskdeck"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "taskdeck"), nil
}

// GlobalConfigDir returns $XDG_CONFIG_HOME/taskdeck (default ~/.config/taskdeck).
func GlobalConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "taskdeck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "taskdeck")
}

// StatePath returns the path of the JSON snapshot file.
func StatePath(homeDir string) string {
	return filepath.Join(homeDir, "state.json")
}

// SyncConfigPath returns the path of the local sync settings file.
func SyncConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "sync.json")
}

// GitStorePath returns the repository used by the git backend.
func GitStorePath(homeDir string) string {
	return filepath.Join(homeDir, "store.git")
}

// ConfigPath returns the path of the home config file.
func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, ConfigFileName)
}

// TaskLogPath returns the path to the per-task log file.
func TaskLogPath(homeDir string, taskID int64) string {
	return filepath.Join(homeDir, "logs", fmt.Sprintf("task-%d.log", taskID))
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(homeDir string) string {
	return filepath.Join(homeDir, "logs", "taskdeck.log")
}
