package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "painmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, PrefsStore, cfg.Preferences.Driver)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdle())
	assert.Equal(t, 8760*time.Hour, cfg.PreferenceTTL())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  cors_origins: ["https://pain.example"]
logging:
  level: debug
store:
  driver: sqlite
  sqlite_path: /var/lib/painmap/db.sqlite
preferences:
  driver: redis
  redis_addr: cache:6379
  redis_db: 2
sessions:
  idle_timeout: 30m
`)
	t.Setenv("PAINMAP_ADDR", ":9100")
	t.Setenv("PAINMAP_REDIS_DB", "5")
	t.Setenv("PAINMAP_COMMIT", "abc123")
	t.Setenv("PAINMAP_SESSION_SWEEP", "45s")
	t.Setenv("PAINMAP_PREFS_TTL", "24h")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, []string{"https://pain.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "/var/lib/painmap/db.sqlite", cfg.Store.SQLitePath)
	assert.Equal(t, PrefsRedis, cfg.Preferences.Driver)
	assert.Equal(t, 5, cfg.Preferences.RedisDB)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle())
	assert.Equal(t, "abc123", cfg.Build.Commit)
	assert.Equal(t, 45*time.Second, cfg.SweepInterval())
	assert.Equal(t, 24*time.Hour, cfg.PreferenceTTL())
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: postgres
preferences:
  driver: memcache
sessions:
  idle_timeout: soon
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.Contains(t, err.Error(), "memcache")
	assert.Contains(t, err.Error(), "sessions.idle_timeout")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unbalanced"))
	assert.Error(t, err)
}

func TestValidateReportsDurationsInOrder(t *testing.T) {
	t.Setenv("PAINMAP_PREFS_TTL", "forever")
	t.Setenv("PAINMAP_SESSION_IDLE", "soon")
	t.Setenv("PAINMAP_SESSION_SWEEP", "often")
	for i := 0; i < 20; i++ {
		_, err := Load("")
		require.Error(t, err)
		msg := err.Error()
		ttl := strings.Index(msg, "preferences.ttl")
		idle := strings.Index(msg, "sessions.idle_timeout")
		sweep := strings.Index(msg, "sessions.sweep_every")
		require.True(t, ttl >= 0 && idle > ttl && sweep > idle, msg)
	}
}
