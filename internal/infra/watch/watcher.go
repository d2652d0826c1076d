// Package watch reports writes to the local store made by any process.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/runoshun/taskdeck/internal/domain"
)

// DefaultQuiet is the default quiet period before a burst of writes is reported.
const DefaultQuiet = 200 * time.Millisecond

// Watcher coalesces filesystem events on the store into change callbacks.
// Fields are ordered to minimize memory padding.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   domain.Logger
	onChange func()
	match    func(name string) bool
	quiet    time.Duration
}

// New watches dirs and calls onChange after writes to files accepted by match
// have been quiet for the given period. A nil match accepts everything.
func New(dirs []string, match func(name string) bool, quiet time.Duration, onChange func(), logger domain.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Watcher{
		fs:       fsw,
		logger:   logger,
		onChange: onChange,
		match:    match,
		quiet:    quiet,
	}, nil
}

// Run delivers change callbacks until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.fs.Close() }()

	timer := time.NewTimer(w.quiet)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) || !w.match(ev.Name) {
				continue
			}
			timer.Reset(w.quiet)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn(0, "watch", err.Error())
			}
		case <-timer.C:
			w.onChange()
		}
	}
}

// StoreTargets returns the directories and file filter that cover the store
// selected by cfg inside homeDir.
func StoreTargets(homeDir string, cfg domain.StorageConfig) ([]string, func(string) bool) {
	if cfg.Backend == domain.StorageGit {
		namespace := cfg.Namespace
		if namespace == "" {
			namespace = domain.DefaultGitNamespace
		}
		refs := filepath.Join(domain.GitStorePath(homeDir), "refs", namespace)
		return []string{refs}, func(name string) bool {
			return !strings.HasSuffix(name, ".lock")
		}
	}
	state := domain.StatePath(homeDir)
	return []string{homeDir}, func(name string) bool {
		return filepath.Clean(name) == state
	}
}
