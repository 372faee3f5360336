package domain

import "time"

type Config struct {
	DatabasePath      string       `mapstructure:"database_path"`
	LogLevel          string       `mapstructure:"log_level"`
	DiscordWebhookURL string       `mapstructure:"discord_webhook_url"`
	Cache             CacheConfig  `mapstructure:"cache"`
	Jikan             JikanConfig  `mapstructure:"jikan"`
	Sync              SyncConfig   `mapstructure:"sync"`
	Server            ServerConfig `mapstructure:"server"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Backend is validated lazily by the cache store on first use.
	Backend       CacheBackend  `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Capacity      int           `mapstructure:"capacity"`
	Shards        int           `mapstructure:"shards"`
}

type JikanConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type SyncConfig struct {
	Kind           string        `mapstructure:"kind"`
	IDSource       string        `mapstructure:"id_source"`
	ProgressFile   string        `mapstructure:"progress_file"`
	MinSpacing     time.Duration `mapstructure:"min_spacing"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	Cron           string        `mapstructure:"cron"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}
