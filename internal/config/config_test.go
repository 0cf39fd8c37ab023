package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "uiautomator2", cfg.Driver.Backend)
	assert.Equal(t, 40, cfg.Run.MaxActions)
	assert.Equal(t, 90, cfg.Run.AuthWaitSeconds)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, ":8080", cfg.API.Addr)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	data := []byte(`
driver:
  backend: chrome
  start_url: https://signup.example.com
  headless: true
run:
  max_actions: 12
llm:
  enabled: false
store:
  path: /tmp/test-runs.db
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "chrome", cfg.Driver.Backend)
	assert.Equal(t, "https://signup.example.com", cfg.Driver.StartURL)
	assert.True(t, cfg.Driver.Headless)
	assert.Equal(t, 12, cfg.Run.MaxActions)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, "/tmp/test-runs.db", cfg.Store.Path)
	// Untouched sections keep their defaults.
	assert.Equal(t, 90, cfg.Run.AuthWaitSeconds)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
