package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stateviz/pkg/cache"
	"github.com/matzehuels/stateviz/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 180.0, cfg.Layout.RingSpacing)
	assert.Equal(t, 0.25, cfg.Layout.Strength)
	assert.Equal(t, 10, cfg.Layout.CooldownTicks)
	assert.Equal(t, "twopi", cfg.Layout.Engine)
	assert.Equal(t, cache.BackendFile, cfg.Cache.Backend)
	assert.Equal(t, "playerStateMachine", cfg.PropsPrefix)
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
registry = "data/machines.yaml"
properties = "data/values.json"

[layout]
ring_spacing = 120
cooldown_ticks = 0

[server]
addr = "127.0.0.1:9000"
read_timeout = "2s"

[cache]
backend = "redis"
ttl = "1h"

[cache.redis]
addr = "cache:6379"
db = 2
`)
	require.NoError(t, err)

	assert.Equal(t, "data/machines.yaml", cfg.Registry)
	assert.Equal(t, "data/values.json", cfg.Properties)
	assert.Equal(t, 120.0, cfg.Layout.RingSpacing)
	assert.Equal(t, 0, cfg.Layout.CooldownTicks)
	assert.Equal(t, 0.25, cfg.Layout.Strength, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout.Duration)
	assert.Equal(t, time.Hour, cfg.Cache.TTL.Duration)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `registry = `},
		{"unknown key", `regsitry = "x.yaml"`},
		{"bad duration", "[server]\nread_timeout = \"soon\""},
		{"negative spacing", "[layout]\nring_spacing = -1"},
		{"strength above one", "[layout]\nstrength = 2.0"},
		{"unknown engine", "[layout]\nengine = \"spring\""},
		{"unknown backend", "[cache]\nbackend = \"memcached\""},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n[cache.redis]\naddr = \"\""},
		{"bad redis addr", "[cache.redis]\naddr = \"no-port\""},
		{"empty registry", `registry = ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetCode(err))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stateviz.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":7000\"\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("registry = \"env.yaml\"\n"), 0644))
	t.Setenv(EnvConfigPath, path)

	cfg, found, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, found)
	assert.Equal(t, "env.yaml", cfg.Registry)
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := CacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/stateviz", dir)
}

func TestCacheOptions(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	cfg := Default()
	opts, err := cfg.CacheOptions()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/stateviz", opts.Dir)

	cfg.Cache.Backend = cache.BackendRedis
	cfg.Cache.Redis.DB = 3
	opts, err = cfg.CacheOptions()
	require.NoError(t, err)
	assert.Empty(t, opts.Dir)
	assert.Equal(t, "localhost:6379", opts.Redis.Addr)
	assert.Equal(t, 3, opts.Redis.DB)
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("later")))
}
