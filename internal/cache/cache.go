package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
)

const (
	defaultCapacity = 10000
	defaultShards   = 64
)

// Store is the configured cache. The backend named in the config is opened on
// first use, so an unsupported selection surfaces as an error from the first
// operation instead of at startup.
type Store struct {
	cfg domain.CacheConfig
	log zerolog.Logger

	once    sync.Once
	backend domain.CacheStore
	err     error
}

var _ domain.CacheStore = (*Store)(nil)

// New returns a cache for cfg. A disabled cache never stores anything and
// always reports a miss.
func New(cfg domain.CacheConfig, log zerolog.Logger) domain.CacheStore {
	log = log.With().Str("module", "cache").Logger()

	if !cfg.Enabled {
		log.Debug().Msg("cache disabled")
		return disabled{}
	}

	return &Store{cfg: cfg, log: log}
}

func (s *Store) open() (domain.CacheStore, error) {
	s.once.Do(func() {
		switch domain.CacheBackend(strings.ToLower(string(s.cfg.Backend))) {
		case domain.CacheBackendMemory:
			s.backend = NewMemoryStore(s.log)

		case domain.CacheBackendRedis:
			client := redis.NewClient(&redis.Options{
				Addr:     s.cfg.RedisAddr,
				Password: s.cfg.RedisPassword,
				DB:       s.cfg.RedisDB,
			})
			s.backend = NewRedisStore(client, s.cfg.KeyPrefix, s.log)

		case domain.CacheBackendSharded:
			capacity, shards := s.cfg.Capacity, s.cfg.Shards
			if capacity <= 0 {
				capacity = defaultCapacity
			}
			if shards <= 0 {
				shards = defaultShards
			}
			s.backend = NewShardedStore(capacity, shards, s.cfg.TTL, s.log)

		default:
			s.err = errors.Wrapf(domain.ErrUnsupportedCacheBackend, "backend %q", s.cfg.Backend)
			return
		}

		s.log.Info().Str("backend", string(s.cfg.Backend)).Msg("cache backend ready")
	})

	return s.backend, s.err
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	b, err := s.open()
	if err != nil {
		return "", false, err
	}
	return b.Get(ctx, key)
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	b, err := s.open()
	if err != nil {
		return err
	}
	return b.Set(ctx, key, value, ttl)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	b, err := s.open()
	if err != nil {
		return err
	}
	return b.Delete(ctx, key)
}

func (s *Store) Clear(ctx context.Context) error {
	b, err := s.open()
	if err != nil {
		return err
	}
	return b.Clear(ctx)
}

type disabled struct{}

func (disabled) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (disabled) Set(context.Context, string, string, time.Duration) error { return nil }
func (disabled) Delete(context.Context, string) error { return nil }
func (disabled) Clear(context.Context) error { return nil }
