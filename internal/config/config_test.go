package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/launchtree/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolated(t *testing.T) config.LoadOptions {
	t.Helper()
	return config.LoadOptions{
		WorkDir:   t.TempDir(),
		ConfigDir: t.TempDir(),
		Environ:   []string{},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, path, err := config.Load(isolated(t))
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, config.Default(), *cfg)
}

func TestLoad_LocalFileOverridesDefaults(t *testing.T) {
	opts := isolated(t)
	content := `
log:
  level: debug
analyze:
  max_depth: 16
  debounce: 1s
discovery:
  prefixes: [/opt/ros/jazzy, /ws/install]
`
	file := filepath.Join(opts.WorkDir, config.LocalFileName)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	cfg, path, err := config.Load(opts)
	require.NoError(t, err)
	assert.Equal(t, file, path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep their defaults")
	assert.Equal(t, 16, cfg.Analyze.MaxDepth)
	assert.Equal(t, time.Second, cfg.Analyze.Debounce)
	assert.Equal(t, []string{"/opt/ros/jazzy", "/ws/install"}, cfg.Discovery.Prefixes)
}

func TestLoad_UserConfigDir(t *testing.T) {
	opts := isolated(t)
	require.NoError(t, os.WriteFile(filepath.Join(opts.ConfigDir, "config.yaml"), []byte("server:\n  addr: \":9000\"\n"), 0o644))

	cfg, _, err := config.Load(opts)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	opts := isolated(t)
	require.NoError(t, os.WriteFile(filepath.Join(opts.WorkDir, config.LocalFileName), []byte("cache:\n  enabled: false\n"), 0o644))
	opts.Environ = []string{
		"LAUNCHTREE_CACHE_ENABLED=true",
		"LAUNCHTREE_CACHE_TTL=90m",
		"LAUNCHTREE_ANALYZE_MAX_DEPTH=8",
		"LAUNCHTREE_DISCOVERY_PREFIXES=/a,/b",
		"LAUNCHTREE_UNRELATED=1",
		"PATH=/usr/bin",
	}

	cfg, _, err := config.Load(opts)
	require.NoError(t, err)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 8, cfg.Analyze.MaxDepth)
	assert.Equal(t, []string{"/a", "/b"}, cfg.Discovery.Prefixes)
}

func TestLoad_Errors(t *testing.T) {
	opts := isolated(t)
	opts.Path = filepath.Join(opts.WorkDir, "missing.yaml")
	_, _, err := config.Load(opts)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)

	opts = isolated(t)
	require.NoError(t, os.WriteFile(filepath.Join(opts.WorkDir, config.LocalFileName), []byte("analyze:\n  max_dept: 3\n"), 0o644))
	_, _, err = config.Load(opts)
	assert.ErrorIs(t, err, config.ErrInvalidConfig, "unknown keys are rejected")

	opts = isolated(t)
	opts.Environ = []string{"LAUNCHTREE_ANALYZE_FORMAT=svg"}
	_, _, err = config.Load(opts)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	opts = isolated(t)
	opts.Environ = []string{"LAUNCHTREE_LOG_LEVEL=loud"}
	_, _, err = config.Load(opts)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestKeys(t *testing.T) {
	keys := config.Keys()
	assert.Contains(t, keys, "log.level")
	assert.Contains(t, keys, "cache.redis_url")
	assert.Contains(t, keys, "mcp.port")
	assert.Equal(t, "LAUNCHTREE_CACHE_REDIS_URL", config.EnvName("cache.redis_url"))
}
