package jsonstore

import (
	"syscall"

	"github.com/runoshun/taskdeck/internal/domain"
)

// SyncConfigStore keeps the sync connection settings in their own file
// so they never end up in a pushed snapshot.
type SyncConfigStore struct {
	file lockedFile
}

// NewSyncConfigStore creates a SyncConfigStore for the given file path.
func NewSyncConfigStore(path string) *SyncConfigStore {
	return &SyncConfigStore{file: lockedFile{path: path, lockPath: path + ".lock"}}
}

// LoadSyncConfig returns the stored config, or the default if none was saved.
func (s *SyncConfigStore) LoadSyncConfig() (domain.SyncConfig, error) {
	cfg := domain.DefaultSyncConfig()
	err := s.file.withLock(syscall.LOCK_SH, func() error {
		_, err := s.file.read(&cfg)
		return err
	})
	if cfg.ServerURL == "" {
		cfg.ServerURL = domain.DefaultServerURL
	}
	return cfg, err
}

// SaveSyncConfig stores the config.
func (s *SyncConfigStore) SaveSyncConfig(cfg domain.SyncConfig) error {
	return s.file.withLock(syscall.LOCK_EX, func() error {
		return s.file.write(cfg)
	})
}

var _ domain.SyncConfigStore = (*SyncConfigStore)(nil)
