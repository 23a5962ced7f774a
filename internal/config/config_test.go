package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "local.yaml", `
env: test
storage_path: /tmp/timer.db
log:
  level: debug
  format: json
store:
  backend: local
  simulated_latency: 250ms
timer:
  snapshot: file
  snapshot_path: /tmp/timer.json
http_server:
  address: "127.0.0.1:9999"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "/tmp/timer.db", cfg.StoragePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.SimulatedLatency)
	assert.Equal(t, SnapshotFile, cfg.Timer.Snapshot)
	assert.Equal(t, "127.0.0.1:9999", cfg.HTTPServer.Address)
	assert.Equal(t, 10, cfg.Backend.Timeout)
	assert.False(t, cfg.HTTPServer.Disabled)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Store.Backend)
	assert.Equal(t, SnapshotSQLite, cfg.Timer.Snapshot)
	assert.Equal(t, "localhost:8080", cfg.HTTPServer.Address)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TIMER_SNAPSHOT", "memory")
	t.Setenv("STORE_BACKEND", "remote")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, SnapshotMemory, cfg.Timer.Snapshot)
	assert.Equal(t, BackendRemote, cfg.Store.Backend)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store: StoreConfig{Backend: BackendLocal},
			Timer: TimerConfig{Snapshot: SnapshotSQLite},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Store.Backend = "firebase"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Store.Backend = BackendRemote
	assert.Error(t, cfg.Validate(), "remote store needs a base url")

	cfg = valid()
	cfg.Timer.Snapshot = "redis"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Timer.Snapshot = SnapshotFile
	assert.Error(t, cfg.Validate(), "file snapshot needs a path")

	cfg = valid()
	cfg.Store.SimulatedLatency = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestSaveInstanceID_KeepsExistingKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "local.yaml", `# local settings
env: test
log:
  level: debug
`)

	require.NoError(t, SaveInstanceID(path, "abc-123"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", cfg.Instance.ID)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "debug", cfg.Log.Level)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# local settings")
}

func TestSaveInstanceID_ReplacesExistingID(t *testing.T) {
	path := writeFile(t, t.TempDir(), "local.yaml", "instance:\n  id: old\n")

	require.NoError(t, SaveInstanceID(path, "new"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.Instance.ID)
}

func TestSaveInstanceID_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "local.yaml")

	require.NoError(t, SaveInstanceID(path, "fresh"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh", cfg.Instance.ID)
}
