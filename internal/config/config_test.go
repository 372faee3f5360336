package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/malmirror/internal/cache"
	"github.com/varoOP/malmirror/internal/domain"
	"github.com/varoOP/malmirror/internal/jikan"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "./malmirror.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, domain.CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, jikan.DefaultBaseURL, cfg.Jikan.BaseURL)
	assert.Equal(t, 1.0, cfg.Jikan.RequestsPerSecond)
	assert.Equal(t, time.Second, cfg.Sync.MinSpacing)
	assert.Equal(t, 3, cfg.Sync.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Sync.RetryBaseDelay)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MALMIRROR_CACHE_BACKEND", "redis")
	t.Setenv("MALMIRROR_CACHE_TTL", "5m")
	t.Setenv("MALMIRROR_SYNC_MAX_RETRIES", "5")
	t.Setenv("MALMIRROR_DISCORD_WEBHOOK_URL", "https://discord.example/hook")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, domain.CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.Sync.MaxRetries)
	assert.Equal(t, "https://discord.example/hook", cfg.DiscordWebhookURL)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_path: /data/anime.db
cache:
  backend: sharded
  shards: 16
sync:
  id_source: ./ids.json
  min_spacing: 500ms
`), 0644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/data/anime.db", cfg.DatabasePath)
	assert.Equal(t, domain.CacheBackendSharded, cfg.Cache.Backend)
	assert.Equal(t, 16, cfg.Cache.Shards)
	assert.Equal(t, "./ids.json", cfg.Sync.IDSource)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.MinSpacing)
}

func TestLoad_EmptyBackendFailsAtFirstCacheUse(t *testing.T) {
	t.Setenv("MALMIRROR_CACHE_BACKEND", "")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, domain.CacheBackend(""), cfg.Cache.Backend)

	store := cache.New(cfg.Cache, zerolog.Nop())
	_, _, err = store.Get(context.Background(), "anime_1")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCacheBackend)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  backend: \"\"\n"), 0644))
	os.Unsetenv("MALMIRROR_CACHE_BACKEND")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, domain.CacheBackend(""), cfg.Cache.Backend)
}

func TestLoad_UnknownBackendIsNotRejected(t *testing.T) {
	v := viper.New()
	v.Set("cache.backend", "memcached")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, domain.CacheBackend("memcached"), cfg.Cache.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("sync.max_retries", 0)
	_, err := Load(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("database_path", "")
	_, err = Load(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("sync.min_spacing", "-1s")
	_, err = Load(v)
	assert.Error(t, err)
}
