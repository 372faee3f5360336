package anime

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
	"github.com/varoOP/malmirror/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const entity = "anime"

// Service puts a cache in front of an AnimeRepository. Lookups by id read
// through the cache, creates and updates write through it and deletes
// invalidate it before touching the store.
type Service struct {
	log     zerolog.Logger
	repo    domain.AnimeRepository
	cache   domain.CacheStore
	ttl     time.Duration
	metrics *metrics.Metrics

	group singleflight.Group

	// generation is bumped on every successful write. Cached query lists from
	// an older generation are never read again and age out with the ttl.
	generation atomic.Uint64
}

var _ domain.AnimeService = (*Service)(nil)

func NewService(log zerolog.Logger, repo domain.AnimeRepository, cache domain.CacheStore, ttl time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		log:     log.With().Str("module", "anime").Logger(),
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
	}
}

func idKey(malID int) string {
	return entity + "_" + strconv.Itoa(malID)
}

func (s *Service) FindByID(ctx context.Context, malID int) (*domain.Anime, error) {
	key := idKey(malID)

	var cached domain.Anime
	hit, err := s.lookup(ctx, key, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return &cached, nil
	}

	// concurrent misses for the same id share one store read. The shared read
	// ignores the first caller's cancellation, each caller waits on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		anime, err := s.repo.FindByID(shared, malID)
		if err != nil {
			return nil, err
		}
		s.store(shared, key, anime)
		return anime, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		anime := *res.Val.(*domain.Anime)
		return &anime, nil
	}
}

// FindAll always reads the store
func (s *Service) FindAll(ctx context.Context) ([]domain.Anime, error) {
	return s.repo.FindAll(ctx)
}

// FindByQuery caches non-empty results under a key derived from opts and the
// current write generation. Empty results are not cached so a later write
// shows up on the next query.
func (s *Service) FindByQuery(ctx context.Context, opts domain.QueryOptions) ([]domain.Anime, error) {
	key := queryKey(opts) + keySeparator + "gen=" + strconv.FormatUint(s.generation.Load(), 10)

	var cached []domain.Anime
	hit, err := s.lookup(ctx, key, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return cached, nil
	}

	anime, err := s.repo.FindByQuery(ctx, opts)
	if err != nil {
		return nil, err
	}

	if len(anime) > 0 {
		s.store(ctx, key, anime)
	}

	return anime, nil
}

func (s *Service) CountByQuery(ctx context.Context, opts domain.QueryOptions) (int, error) {
	return s.repo.CountByQuery(ctx, opts)
}

func (s *Service) CountAll(ctx context.Context) (int, error) {
	return s.repo.CountAll(ctx)
}

func (s *Service) Create(ctx context.Context, anime *domain.Anime) (*domain.Anime, error) {
	created, err := s.repo.Create(ctx, anime)
	if err != nil {
		return nil, err
	}

	s.generation.Add(1)
	s.store(ctx, idKey(created.MalID), created)
	return created, nil
}

// Update leaves the cache untouched when the store reports no matching row
func (s *Service) Update(ctx context.Context, malID int, anime *domain.Anime) (*domain.Anime, error) {
	updated, err := s.repo.Update(ctx, malID, anime)
	if err != nil {
		return nil, err
	}

	s.generation.Add(1)
	s.store(ctx, idKey(malID), updated)
	return updated, nil
}

// Delete drops the cached entry before the row so a reader racing the delete
// falls through to the store instead of a stale entry
func (s *Service) Delete(ctx context.Context, malID int) (bool, error) {
	if err := s.cache.Delete(ctx, idKey(malID)); err != nil {
		s.metrics.CacheError()
		return false, errors.Wrapf(err, "could not invalidate anime %d", malID)
	}

	deleted, err := s.repo.Delete(ctx, malID)
	if deleted {
		s.generation.Add(1)
	}
	return deleted, err
}

// lookup decodes the cached value for key into dst. A misconfigured backend is
// returned to the caller, other cache failures degrade to a miss.
func (s *Service) lookup(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.metrics.CacheError()
		if errors.Is(err, domain.ErrUnsupportedCacheBackend) {
			return false, err
		}
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed, falling back to store")
		return false, nil
	}

	if !ok {
		s.metrics.CacheMiss()
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		_ = s.cache.Delete(ctx, key)
		s.metrics.CacheMiss()
		return false, nil
	}

	s.metrics.CacheHit()
	return true, nil
}

// store writes v under key. Failures are logged and never fail the caller.
func (s *Service) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("could not encode cache entry")
		return
	}

	if err := s.cache.Set(ctx, key, string(b), s.ttl); err != nil {
		s.metrics.CacheError()
		s.log.Warn().Err(err).Str("key", key).Msg("could not populate cache")
	}
}
