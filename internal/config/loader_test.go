package config

import (
	"errors"
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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: memory
tracking:
  namespace: shop-a
  queue_size: 50
recommend:
  default_limit: 25
logging:
  level: debug
  format: json
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "shop-a", cfg.Tracking.Namespace)
	assert.Equal(t, 50, cfg.Tracking.QueueSize)
	assert.Equal(t, 25, cfg.Recommend.DefaultLimit)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Untouched keys keep their defaults.
	assert.True(t, cfg.Tracking.Enabled)
	assert.Equal(t, 10, cfg.Recommend.RecentWindow)
	assert.Equal(t, 3*time.Second, cfg.Storage.Redis.Timeout)
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: memory\n")

	t.Setenv("INTENT_RANK_STORAGE_BACKEND", "redis")
	t.Setenv("INTENT_RANK_REDIS_ADDR", "cache:6380")
	t.Setenv("INTENT_RANK_REDIS_TIMEOUT", "500ms")
	t.Setenv("INTENT_RANK_TRACKING_ENABLED", "false")
	t.Setenv("INTENT_RANK_UNRELATED", "ignored")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "cache:6380", cfg.Storage.Redis.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Storage.Redis.Timeout)
	assert.True(t, cfg.Storage.Redis.Enabled)
	assert.False(t, cfg.Tracking.Enabled)
}

func TestLoadFrom_ExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	path := writeConfig(t, "storage:\n  path: ~/data/behavior.db\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/data/behavior.db", cfg.Storage.Path)
}

func TestLoadFromEnhancedErrors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)

		var nf *ConfigNotFoundError
		assert.True(t, errors.As(err, &nf))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "intent-rank config init")
	})

	t.Run("permission denied", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores file permissions")
		}
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("storage: {}\n"), 0000))

		_, err := LoadFrom(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
		assert.Contains(t, err.Error(), "chmod 644")
	})

	t.Run("invalid YAML", func(t *testing.T) {
		path := writeConfig(t, "storage: [unterminated\n")

		_, err := LoadFrom(path)
		require.Error(t, err)

		var ic *InvalidConfigError
		require.True(t, errors.As(err, &ic))
		assert.Contains(t, err.Error(), ".bak")
	})

	t.Run("invalid value", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  backend: postgres\n")

		_, err := LoadFrom(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.backend")
		assert.Contains(t, err.Error(), "postgres")
	})
}

func TestLoad_UsesEnvPath(t *testing.T) {
	path := writeConfig(t, "recommend:\n  default_limit: 7\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Recommend.DefaultLimit)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.True(t, strings.HasSuffix(cfg.Storage.Path, "behavior.db"))
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "storage.redis.addr", envTransform("INTENT_RANK_REDIS_ADDR"))
	assert.Equal(t, "logging.level", envTransform("INTENT_RANK_LOG_LEVEL"))
	assert.Equal(t, "", envTransform("INTENT_RANK_NOPE"))
}
