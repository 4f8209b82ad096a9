package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFirstRunWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, DefaultShareTTL, cfg.Share.TTL)
	assert.Equal(t, DefaultClientID, cfg.Identity.ClientID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# daylog configuration")

	// The written template must load back to the same defaults.
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
data_dir: ` + dir + `
storage:
  driver: sqlite
share:
  ttl: 48h
  listen: 0.0.0.0:9000
log:
  format: json
projects:
  seed: [Alpha, Beta]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(dir, "daylog.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, 48*time.Hour, cfg.Share.TTL)
	assert.Equal(t, "http://0.0.0.0:9000", cfg.Share.BaseURL)
	assert.Equal(t, []string{"Alpha", "Beta"}, cfg.Projects.Seed)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("share:\n  ttl: 1h\n"), 0o600))
	t.Setenv("DAYLOG_SHARE_TTL", "2h")
	t.Setenv("DAYLOG_DATA_DIR", dir)
	t.Setenv("DAYLOG_IDENTITY_CLIENT_ID", "my-app")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Share.TTL)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "my-app", cfg.Identity.ClientID)
}

func TestLoadRejectsBadDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: mongo\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed\n"), 0o600))

	cfg, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tip: delete the file")
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"DAYLOG_SHARE_TTL":           "share.ttl",
		"DAYLOG_STORAGE_SQLITE_PATH": "storage.sqlite_path",
		"DAYLOG_DATA_DIR":            "data_dir",
		"DAYLOG_LOG_LEVEL":           "log.level",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}
