// Package jsonstore provides JSON file-based persistence of the local data set.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/runoshun/taskdeck/internal/domain"
)

// Store implements domain.SnapshotStore using a single JSON file.
// Every operation holds a flock on a sibling .lock file so the CLI,
// the TUI and a background sync can share the file safely.
type Store struct {
	file lockedFile
}

// New creates a new Store for the given file path.
// The file does not need to exist; Initialize creates it.
func New(path string) *Store {
	return &Store{file: lockedFile{path: path, lockPath: path + ".lock"}}
}

// Load returns the stored snapshot.
func (s *Store) Load() (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := s.file.withLock(syscall.LOCK_SH, func() error {
		var err error
		snap, err = s.read()
		return err
	})
	return snap, err
}

// Save replaces the stored snapshot.
func (s *Store) Save(snap *domain.Snapshot) error {
	return s.file.withLock(syscall.LOCK_EX, func() error {
		if !s.IsInitialized() {
			return domain.ErrNotInitialized
		}
		return s.file.write(snap)
	})
}

// Update applies fn to the stored snapshot under an exclusive lock.
func (s *Store) Update(fn func(snap *domain.Snapshot) error) error {
	return s.file.withLock(syscall.LOCK_EX, func() error {
		snap, err := s.read()
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
		return s.file.write(snap)
	})
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.file.path)
	return err == nil
}

// Initialize creates a store file holding a fresh data set if it doesn't exist.
func (s *Store) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(s.file.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if s.IsInitialized() {
		return nil
	}
	return s.file.withLock(syscall.LOCK_EX, func() error {
		return s.file.write(domain.NewSnapshot())
	})
}

func (s *Store) read() (*domain.Snapshot, error) {
	var snap domain.Snapshot
	found, err := s.file.read(&snap)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotInitialized
	}
	snap.Sanitize()
	return &snap, nil
}

// lockedFile is a JSON document guarded by an advisory lock file.
type lockedFile struct {
	path     string
	lockPath string
}

// withLock executes fn while holding a lock of the given type.
func (f lockedFile) withLock(lockType int, fn func() error) error {
	lock, err := f.acquireLock(lockType)
	if err != nil {
		return err
	}
	defer f.releaseLock(lock)
	return fn()
}

func (f lockedFile) acquireLock(lockType int) (*os.File, error) {
	dir := filepath.Dir(f.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(f.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (f lockedFile) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

// read decodes the file into v. found is false if the file does not exist.
func (f lockedFile) read(v any) (found bool, err error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read store file: %w", err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return false, fmt.Errorf("parse store file: %w", err)
	}
	return true, nil
}

func (f lockedFile) write(v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Ensure Store implements the store ports.
var (
	_ domain.SnapshotStore    = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
