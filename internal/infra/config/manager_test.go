package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetHomeConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		home := t.TempDir()
		configContent := "[log]\nlevel = \"debug\""
		require.NoError(t, os.WriteFile(domain.ConfigPath(home), []byte(configContent), 0o644))

		manager := NewManagerWithGlobalDir(home, "")
		info := manager.GetHomeConfigInfo()

		assert.Equal(t, domain.ConfigPath(home), info.Path)
		assert.Equal(t, configContent, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns info when file does not exist", func(t *testing.T) {
		home := t.TempDir()

		info := NewManagerWithGlobalDir(home, "").GetHomeConfigInfo()

		assert.Equal(t, domain.ConfigPath(home), info.Path)
		assert.Empty(t, info.Content)
		assert.False(t, info.Exists)
	})
}

func TestManager_GetGlobalConfigInfo(t *testing.T) {
	t.Run("no global directory", func(t *testing.T) {
		info := NewManagerWithGlobalDir(t.TempDir(), "").GetGlobalConfigInfo()

		assert.Empty(t, info.Path)
		assert.False(t, info.Exists)
	})

	t.Run("returns info when file exists", func(t *testing.T) {
		globalDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(globalDir, domain.ConfigFileName), []byte("[sync]"), 0o644))

		info := NewManagerWithGlobalDir("", globalDir).GetGlobalConfigInfo()

		assert.True(t, info.Exists)
		assert.Equal(t, "[sync]", info.Content)
	})
}

func TestManager_InitHomeConfig(t *testing.T) {
	home := filepath.Join(t.TempDir(), "fresh")
	manager := NewManagerWithGlobalDir(home, "")

	require.NoError(t, manager.InitHomeConfig(domain.NewDefaultConfig()))

	info := manager.GetHomeConfigInfo()
	require.True(t, info.Exists)
	assert.Contains(t, info.Content, "[storage]")
	assert.Contains(t, info.Content, `backend = "json"`)

	// Second init refuses to overwrite
	assert.ErrorIs(t, manager.InitHomeConfig(domain.NewDefaultConfig()), domain.ErrConfigExists)
}

func TestManager_InitGlobalConfig(t *testing.T) {
	t.Run("creates directory and file", func(t *testing.T) {
		globalDir := filepath.Join(t.TempDir(), "taskdeck")
		manager := NewManagerWithGlobalDir("", globalDir)

		require.NoError(t, manager.InitGlobalConfig(domain.NewDefaultConfig()))

		assert.FileExists(t, filepath.Join(globalDir, domain.ConfigFileName))
	})

	t.Run("errors without global directory", func(t *testing.T) {
		manager := NewManagerWithGlobalDir("", "")

		assert.Error(t, manager.InitGlobalConfig(domain.NewDefaultConfig()))
	})
}

func TestManager_RenderedTemplateLoadsCleanly(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, NewManagerWithGlobalDir(home, "").InitHomeConfig(domain.NewDefaultConfig()))

	cfg, err := NewLoaderWithGlobalDir(home, "").Load()

	require.NoError(t, err)
	assert.Empty(t, cfg.Warnings)
	assert.Equal(t, domain.NewDefaultConfig().Sync, cfg.Sync)
}
