package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
	"github.com/viccon/sturdyc"
)

const (
	// shardedCeiling bounds how long sturdyc keeps any entry, including
	// entries written without a ttl.
	shardedCeiling  = 24 * time.Hour
	evictPercentage = 10
)

// ShardedStore is a bounded in-process cache on top of sturdyc. sturdyc only
// knows a client wide ttl, so every entry carries its own expiry which is
// checked on read.
type ShardedStore struct {
	log    zerolog.Logger
	client *sturdyc.Client[domain.CacheEntry]
	now    func() time.Time
}

func NewShardedStore(capacity, shards int, ttl time.Duration, log zerolog.Logger) *ShardedStore {
	ceiling := shardedCeiling
	if ttl > ceiling {
		ceiling = ttl
	}

	return &ShardedStore{
		log:    log.With().Str("backend", "sharded").Logger(),
		client: sturdyc.New[domain.CacheEntry](capacity, shards, ceiling, evictPercentage),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for the expiry check
func (s *ShardedStore) WithClock(now func() time.Time) *ShardedStore {
	s.now = now
	return s
}

func (s *ShardedStore) Get(_ context.Context, key string) (string, bool, error) {
	e, ok := s.client.Get(key)
	if !ok {
		return "", false, nil
	}

	if e.Expired(s.now()) {
		s.client.Delete(key)
		return "", false, nil
	}

	return e.Value, true, nil
}

func (s *ShardedStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := domain.CacheEntry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl)
	}
	s.client.Set(key, e)
	return nil
}

func (s *ShardedStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

func (s *ShardedStore) Clear(_ context.Context) error {
	keys := s.client.ScanKeys()
	for _, key := range keys {
		s.client.Delete(key)
	}
	s.log.Debug().Int("keys", len(keys)).Msg("cache cleared")
	return nil
}
