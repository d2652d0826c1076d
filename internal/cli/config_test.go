package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/taskdeck/internal/domain"
)

func TestFormatEffectiveConfig(t *testing.T) {
	// Setup
	cfg := domain.NewDefaultConfig()
	cfg.Server.Password = "s3cret"
	cfg.Storage.EncryptionKey = "hunter2"
	cfg.Warnings = []string{"ignored"}
	var buf bytes.Buffer

	// Execute
	err := formatEffectiveConfig(&buf, cfg)

	// Assert
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "[server]")
	assert.Contains(t, out, "[sync]")
	assert.Contains(t, out, "10s")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "s3cret")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "ignored")
}

func TestConfigShowCommand(t *testing.T) {
	// Setup
	c, _ := newTestContainer(t)

	// Execute
	out, _, err := execute(t, c, "config", "show")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "[Loaded from]")
	assert.Contains(t, out, "(not found)")
	assert.Contains(t, out, "[Effective Config]")
}

func TestConfigInitCommand(t *testing.T) {
	// Setup
	c, _ := newTestContainer(t)
	path := filepath.Join(c.Config.HomeDir, domain.ConfigFileName)

	// Execute
	out, _, err := execute(t, c, "config", "init")
	require.NoError(t, err)
	_, _, errAgain := execute(t, c, "config", "init")

	// Assert
	assert.Equal(t, "Created config file: "+path+"\n", out)
	assert.FileExists(t, path)
	assert.Error(t, errAgain)
}

func TestConfigTemplateCommand(t *testing.T) {
	// Setup
	c, _ := newTestContainer(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.Config.HomeDir, domain.ConfigFileName), []byte("not [valid"), 0o600))

	// Execute
	out, _, err := execute(t, c, "config", "template")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "[sync]")
}
