package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Sync.DataConcurrency)
	assert.Equal(t, 1, cfg.Sync.AchievementsConcurrency)
	assert.Equal(t, 10, cfg.Session.RequestTimeoutSeconds)
	assert.Equal(t, "data", cfg.Snapshot.Dir)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SYNC_DATA_CONCURRENCY", "7")
	t.Setenv("SERVER_API_KEY", "secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Sync.DataConcurrency)
	assert.Equal(t, "secret", cfg.Server.ApiKey)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SYNC_HISTORY_RETENTION_DAYS=45\n"), 0o644)
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("SYNC_HISTORY_RETENTION_DAYS") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Sync.HistoryRetentionDays)
}
