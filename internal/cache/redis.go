package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
)

// RedisStore keeps entries in a shared redis database under a key prefix.
// Expiry is delegated to redis.
type RedisStore struct {
	log    zerolog.Logger
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		log:    log.With().Str("backend", "redis").Logger(),
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis get %s", key)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	// go-redis reads a negative expiration as KEEPTTL
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Wrapf(err, "redis del %s", key)
	}
	return nil
}

// Clear refuses to flush a database that other clients may share
func (s *RedisStore) Clear(_ context.Context) error {
	s.log.Warn().Str("prefix", s.prefix).Msg("clear is not supported on the redis backend, skipping")
	return domain.ErrCacheClearUnsupported
}
