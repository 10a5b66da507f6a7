package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.New(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, config.DefaultSettings(), cfg.Settings)
	assert.Equal(t, filepath.Join(dir, "tasks.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join(dir, "oauth_client.json"), cfg.OAuthClientPath())
	assert.Equal(t, filepath.Join(dir, "token.json"), cfg.TokenPath())
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.SettingsPath())
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "tasksync"), config.DefaultConfigDir())
}

func TestLoadSettings_File(t *testing.T) {
	dir := t.TempDir()
	toml := `
database = "data/local.db"
log_file = "/var/log/tasksync.log"

[sync]
requests_per_second = 2.5
max_retries = 7
initial_backoff = "2s"
concurrency = 0
new_list_title = "Inbox"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(toml), 0600))

	cfg, err := config.New(dir)
	require.NoError(t, err)

	s := cfg.Settings
	assert.Equal(t, "/var/log/tasksync.log", s.LogFile)
	assert.Equal(t, 2.5, s.Sync.RequestsPerSecond)
	assert.Equal(t, 7, s.Sync.MaxRetries)
	assert.Equal(t, 2*time.Second, s.Sync.InitialBackoff)
	assert.Equal(t, 1, s.Sync.Concurrency, "concurrency is at least 1")
	assert.Equal(t, "Inbox", s.Sync.NewListTitle)
	assert.Equal(t, 5, s.Sync.Burst, "unset keys keep defaults")
	assert.Equal(t, filepath.Join(dir, "data", "local.db"), cfg.DatabasePath())
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("[sync]\nmax_retries = 7\n"), 0600))
	t.Setenv("TASKSYNC_SYNC_MAX_RETRIES", "1")
	t.Setenv("TASKSYNC_DATABASE", "/abs/tasks.db")

	s, err := config.LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Sync.MaxRetries)
	assert.Equal(t, "/abs/tasks.db", s.Database)
}

func TestLoadSettings_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("not = [valid"), 0600))

	_, err := config.New(dir)
	assert.ErrorContains(t, err, "invalid config.toml")
}

func TestTokenLifecycle(t *testing.T) {
	cfg, err := config.New(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)

	assert.False(t, cfg.HasToken())
	assert.False(t, cfg.HasOAuthClient())

	require.NoError(t, cfg.EnsureDir())
	require.NoError(t, os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600))
	assert.True(t, cfg.HasToken())

	require.NoError(t, cfg.RemoveToken())
	assert.False(t, cfg.HasToken())
}
