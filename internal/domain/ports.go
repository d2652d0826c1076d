package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error

	// IsInitialized reports whether the store exists.
	IsInitialized() bool
}

// SnapshotStore persists the local data set.
type SnapshotStore interface {
	// Load returns the stored snapshot.
	// Returns ErrNotInitialized if the store was never initialized.
	Load() (*Snapshot, error)

	// Save replaces the stored snapshot.
	Save(snap *Snapshot) error

	// Update loads the snapshot, applies fn and saves the result atomically.
	// Nothing is written when fn returns an error.
	Update(fn func(snap *Snapshot) error) error
}

// SnapshotHistory is implemented by stores that keep old versions.
type SnapshotHistory interface {
	// History returns up to limit revisions, newest first. limit <= 0 means all.
	History(limit int) ([]Revision, error)

	// Restore makes the given revision current again.
	// The restore is itself recorded as a new revision.
	Restore(rev string) error
}

// SyncConfigStore persists the client's sync settings. They never leave the machine.
type SyncConfigStore interface {
	// LoadSyncConfig returns the stored config, or DefaultSyncConfig if none.
	LoadSyncConfig() (SyncConfig, error)

	// SaveSyncConfig stores the config.
	SaveSyncConfig(cfg SyncConfig) error
}

// SyncRemote is the client side of the sync wire protocol.
type SyncRemote interface {
	// UpdatedAt fetches only the server's last write stamp.
	UpdatedAt(ctx context.Context) (string, error)

	// Fetch downloads the full snapshot.
	Fetch(ctx context.Context) (*Snapshot, error)

	// Put replaces the server's data and returns the saved snapshot.
	Put(ctx context.Context, snap *Snapshot) (*Snapshot, error)

	// AuthCheck verifies the credentials without touching data.
	AuthCheck(ctx context.Context) error
}

// Notifier delivers a reminder to the user.
type Notifier interface {
	// Notify shows title and body. Delivery is best effort.
	Notify(ctx context.Context, title, body string) error
}

// ReminderScheduler schedules one-shot task reminders.
type ReminderScheduler interface {
	// Schedule (re)arms the reminder for task. Tasks without a future
	// fire time are cancelled instead. It reports whether a reminder is armed.
	Schedule(task *Task) bool

	// Cancel removes the reminder for the task, if any.
	Cancel(taskID int64)

	// RescheduleAll replaces every reminder with those derived from tasks.
	RescheduleAll(tasks []*Task)
}

// Logger writes categorized log lines. A taskID of 0 means global.
type Logger interface {
	Info(taskID int64, category, msg string)
	Debug(taskID int64, category, msg string)
	Warn(taskID int64, category, msg string)
	Error(taskID int64, category, msg string)
}

// CommandExecutor runs external commands.
type CommandExecutor interface {
	// Execute runs the command and returns its combined output.
	Execute(ctx context.Context, cmd *ExecCommand) ([]byte, error)

	// ExecuteInteractive runs the command attached to the terminal.
	ExecuteInteractive(cmd *ExecCommand) error
}

// ExecCommand is a command to execute.
// Fields are ordered to minimize memory padding.
type ExecCommand struct {
	Program string   // Executable name or path
	Dir     string   // Working directory (empty = current)
	Args    []string // Arguments
}

// NewBashCommand returns a command that runs script with bash -c.
// Extra args become $1, $2, ... inside the script.
func NewBashCommand(script string, args ...string) *ExecCommand {
	return &ExecCommand{
		Program: "bash",
		Args:    append([]string{"-c", script, "taskdeck"}, args...),
	}
}

// NewCommand returns a command that runs program directly.
func NewCommand(program string, args ...string) *ExecCommand {
	return &ExecCommand{Program: program, Args: args}
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (home + global).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// ConfigManager manages configuration files.
type ConfigManager interface {
	// GetHomeConfigInfo returns information about the config file in the data directory.
	GetHomeConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitHomeConfig writes the commented default config into the data directory.
	// Returns ErrConfigExists if the file is already there.
	InitHomeConfig(cfg *Config) error

	// InitGlobalConfig writes the commented default config into the global directory.
	InitGlobalConfig(cfg *Config) error
}

// ConfigInfo describes one config file.
// Fields are ordered to minimize memory padding.
type ConfigInfo struct {
	Path    string // File path
	Content string // Raw content (empty if missing)
	Exists  bool   // Whether the file exists
}
