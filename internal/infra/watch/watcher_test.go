package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/domain"
)

func TestWatcher_ReportsMatchingWrites(t *testing.T) {
	// Setup
	home := t.TempDir()
	dirs, match := StoreTargets(home, domain.StorageConfig{Backend: domain.StorageJSON})
	var calls atomic.Int32
	w, err := New(dirs, match, 20*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Execute
	require.NoError(t, os.WriteFile(filepath.Join(home, "sync.json"), []byte("{}"), 0o600))
	tmp := filepath.Join(home, "state.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("{}"), 0o600))
	require.NoError(t, os.Rename(tmp, domain.StatePath(home)))

	// Assert
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	// Setup
	dir := t.TempDir()
	var calls atomic.Int32
	w, err := New([]string{dir}, nil, 50*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Execute
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "state"), []byte{byte(i)}, 0o600))
	}

	// Assert
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNew_MissingDirectory(t *testing.T) {
	// Execute
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, nil, 0, func() {}, nil)

	// Assert
	assert.Error(t, err)
}

func TestStoreTargets_Git(t *testing.T) {
	// Execute
	dirs, match := StoreTargets("/data", domain.StorageConfig{Backend: domain.StorageGit, Namespace: "ns"})

	// Assert
	assert.Equal(t, []string{filepath.Join("/data", "store.git", "refs", "ns")}, dirs)
	assert.True(t, match("/data/store.git/refs/ns/state"))
	assert.False(t, match("/data/store.git/refs/ns/state.lock"))
}
