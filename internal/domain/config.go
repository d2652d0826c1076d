package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "config.toml"

// Defaults for configuration values.
const (
	DefaultLogLevel        = "info"
	DefaultStorageBackend  = StorageJSON
	DefaultGitNamespace    = "taskdeck"
	DefaultPollInterval    = 10 * time.Second
	DefaultDebounce        = time.Second
	DefaultRepushDelay     = 600 * time.Millisecond
	DefaultRequestTimeout  = 15 * time.Second
	DefaultReminderTime    = "09:00"
	DefaultServerAddr      = ":3001"
	DefaultServerPassword  = "changeme"
	DefaultServerDataFile  = "sync-data.json"
	DefaultServerStore     = ServerStoreFile
	DefaultServerSQLiteDB  = "sync-data.db"
	DefaultNotifyTitle     = "taskdeck"
	DefaultNotifyEnabled   = true
	DefaultMaxRequestBytes = 50 << 20
)

// Storage backends.
const (
	StorageJSON = "json"
	StorageGit  = "git"
)

// Server stores.
const (
	ServerStoreFile   = "file"
	ServerStoreSQLite = "sqlite"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string      `toml:"-"`
	Storage  StorageConfig `toml:"storage"`
	Server   ServerConfig  `toml:"server"`
	Notify   NotifyConfig  `toml:"notify"`
	Log      LogConfig     `toml:"log"`
	Sync     SyncTiming    `toml:"sync"`
}

// StorageConfig holds local persistence settings from [storage] section.
type StorageConfig struct {
	Backend       string `toml:"backend,omitempty"`        // "json" (default) or "git"
	Namespace     string `toml:"namespace,omitempty"`      // Ref namespace for the git backend
	EncryptionKey string `toml:"encryption_key,omitempty"` // Seals git snapshots (hex key or passphrase)
}

// SyncTiming holds sync engine timings from [sync] section.
type SyncTiming struct {
	PollInterval time.Duration `toml:"poll_interval,omitempty"` // Interval between pulls
	Debounce     time.Duration `toml:"debounce,omitempty"`      // Quiet period before pushing local edits
	RepushDelay  time.Duration `toml:"repush_delay,omitempty"`  // Delay before pushing a merged result
	Timeout      time.Duration `toml:"timeout,omitempty"`       // Per-request timeout
}

// NotifyConfig holds reminder settings from [notify] section.
type NotifyConfig struct {
	Command     string `toml:"command,omitempty"`      // Command template run per reminder (empty = log only)
	Digest      string `toml:"digest,omitempty"`       // Cron spec for the daily urgent digest (empty = off)
	DefaultTime string `toml:"default_time,omitempty"` // Reminder time for tasks without a time
	Enabled     bool   `toml:"enabled"`                // Schedule reminders at all
}

// ServerConfig holds sync server settings from [server] section.
type ServerConfig struct {
	Addr       string `toml:"addr,omitempty"`        // Listen address
	Password   string `toml:"password,omitempty"`    // Bearer token clients must present
	DataFile   string `toml:"data_file,omitempty"`   // JSON data file for the file store
	Store      string `toml:"store,omitempty"`       // "file" (default) or "sqlite"
	SQLitePath string `toml:"sqlite_path,omitempty"` // Database path for the sqlite store
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:   DefaultStorageBackend,
			Namespace: DefaultGitNamespace,
		},
		Sync: SyncTiming{
			PollInterval: DefaultPollInterval,
			Debounce:     DefaultDebounce,
			RepushDelay:  DefaultRepushDelay,
			Timeout:      DefaultRequestTimeout,
		},
		Notify: NotifyConfig{
			Enabled:     DefaultNotifyEnabled,
			DefaultTime: DefaultReminderTime,
		},
		Server: ServerConfig{
			Addr:       DefaultServerAddr,
			Password:   DefaultServerPassword,
			DataFile:   DefaultServerDataFile,
			Store:      DefaultServerStore,
			SQLitePath: DefaultServerSQLiteDB,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// RenderConfigTemplate renders the commented config file written by 'config init'.
func RenderConfigTemplate(cfg *Config) string {
	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		// Should never happen with valid data
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
