package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/taskdeck/internal/domain"
)

// Document is the data set as the server keeps it.
// Task records are stored verbatim so fields this server does not know survive a round trip.
// Fields are ordered to minimize memory padding.
type Document struct {
	UpdatedAt      string            `json:"updatedAt"`
	Tasks          []json.RawMessage `json:"tasks"`
	Projects       []json.RawMessage `json:"projects"`
	DeletedTaskIDs []int64           `json:"deletedTaskIds,omitempty"`
	Settings       json.RawMessage   `json:"settings"`
}

// defaultSettings is stored when a client pushes without settings.
var defaultSettings = json.RawMessage(`{"overclock":false,"overclockLocked":false}`)

// DefaultDocument returns the data served before any client has pushed.
func DefaultDocument(updatedAt string) *Document {
	projects := make([]json.RawMessage, 0, 3)
	for _, p := range domain.DefaultProjects() {
		raw, _ := json.Marshal(p)
		projects = append(projects, raw)
	}
	return &Document{
		UpdatedAt: updatedAt,
		Tasks:     []json.RawMessage{},
		Projects:  projects,
		Settings:  defaultSettings,
	}
}

// Store persists the single document.
type Store interface {
	// Load returns the stored document, or nil when nothing was stored yet.
	Load(ctx context.Context) (*Document, error)
	// Save replaces the stored document.
	Save(ctx context.Context, doc *Document) error
	Close() error
}

// FileStore keeps the document in one JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the data file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the data file.
func (s *FileStore) Load(_ context.Context) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	return &doc, nil
}

// Save writes the document through a temp file and rename.
func (s *FileStore) Save(_ context.Context, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".sync-data-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close data file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

// OpenStore opens the store selected by cfg. Relative paths resolve against baseDir.
func OpenStore(cfg domain.ServerConfig, baseDir string) (Store, error) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	switch cfg.Store {
	case "", domain.ServerStoreFile:
		path := cfg.DataFile
		if path == "" {
			path = domain.DefaultServerDataFile
		}
		return NewFileStore(resolve(path)), nil
	case domain.ServerStoreSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = domain.DefaultServerSQLiteDB
		}
		return NewSQLStore(resolve(path))
	default:
		return nil, fmt.Errorf("unknown server store %q", cfg.Store)
	}
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLStore)(nil)
)
