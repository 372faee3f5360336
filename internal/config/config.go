package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/varoOP/malmirror/internal/domain"
	"github.com/varoOP/malmirror/internal/jikan"
)

// EnvPrefix is the prefix of every environment variable read by Load,
// e.g. MALMIRROR_CACHE_BACKEND
const EnvPrefix = "MALMIRROR"

// SetDefaults registers the default value of every known key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "./malmirror.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("discord_webhook_url", "")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", string(domain.CacheBackendMemory))
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.key_prefix", "malmirror:")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("cache.shards", 64)

	v.SetDefault("jikan.base_url", jikan.DefaultBaseURL)
	v.SetDefault("jikan.requests_per_second", 1)
	v.SetDefault("jikan.timeout", "30s")

	v.SetDefault("sync.kind", "anime")
	v.SetDefault("sync.id_source", jikan.DefaultIDSource)
	v.SetDefault("sync.progress_file", "./sync_progress.json")
	v.SetDefault("sync.min_spacing", "1s")
	v.SetDefault("sync.max_retries", 3)
	v.SetDefault("sync.retry_base_delay", "2s")
	v.SetDefault("sync.cron", "")

	v.SetDefault("server.addr", ":8080")
}

// Load builds the configuration from v. Nested keys can be overridden from
// the environment with the prefix and dots replaced by underscores.
// The cache backend is not checked here, an unsupported value surfaces on
// first cache use.
func Load(v *viper.Viper) (*domain.Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// a variable that is set but empty overrides the default, so
	// MALMIRROR_CACHE_BACKEND= clears the backend selection
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	cfg := &domain.Config{
		DatabasePath:      v.GetString("database_path"),
		LogLevel:          v.GetString("log_level"),
		DiscordWebhookURL: v.GetString("discord_webhook_url"),
		Cache: domain.CacheConfig{
			Enabled:       v.GetBool("cache.enabled"),
			Backend:       domain.CacheBackend(v.GetString("cache.backend")),
			TTL:           v.GetDuration("cache.ttl"),
			KeyPrefix:     v.GetString("cache.key_prefix"),
			RedisAddr:     v.GetString("cache.redis_addr"),
			RedisPassword: v.GetString("cache.redis_password"),
			RedisDB:       v.GetInt("cache.redis_db"),
			Capacity:      v.GetInt("cache.capacity"),
			Shards:        v.GetInt("cache.shards"),
		},
		Jikan: domain.JikanConfig{
			BaseURL:           v.GetString("jikan.base_url"),
			RequestsPerSecond: v.GetFloat64("jikan.requests_per_second"),
			Timeout:           v.GetDuration("jikan.timeout"),
		},
		Sync: domain.SyncConfig{
			Kind:           v.GetString("sync.kind"),
			IDSource:       v.GetString("sync.id_source"),
			ProgressFile:   v.GetString("sync.progress_file"),
			MinSpacing:     v.GetDuration("sync.min_spacing"),
			MaxRetries:     v.GetInt("sync.max_retries"),
			RetryBaseDelay: v.GetDuration("sync.retry_base_delay"),
			Cron:           v.GetString("sync.cron"),
		},
		Server: domain.ServerConfig{
			Addr: v.GetString("server.addr"),
		},
	}

	if cfg.DatabasePath == "" {
		return nil, errors.New("database_path is required (set via config.yaml or MALMIRROR_DATABASE_PATH environment variable)")
	}
	if cfg.Sync.MaxRetries < 1 {
		return nil, errors.Errorf("invalid sync.max_retries: %d (must be at least 1)", cfg.Sync.MaxRetries)
	}
	if cfg.Sync.MinSpacing < 0 || cfg.Sync.RetryBaseDelay < 0 {
		return nil, errors.New("sync.min_spacing and sync.retry_base_delay must not be negative")
	}

	return cfg, nil
}
