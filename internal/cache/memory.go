package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
)

type memoryEntry struct {
	domain.CacheEntry
	timer *time.Timer
}

// MemoryStore is an in-process map with per-key expiry. An expired key is
// removed by its timer or on the next read, whichever comes first.
type MemoryStore struct {
	log zerolog.Logger
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore(log zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		log:     log.With().Str("backend", "memory").Logger(),
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

// WithClock replaces the time source used for the read-side expiry check
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}

	if e.Expired(s.now()) {
		s.remove(key)
		return "", false, nil
	}

	return e.Value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(key)

	e := &memoryEntry{CacheEntry: domain.CacheEntry{Value: value}}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl)
		e.timer = time.AfterFunc(ttl, func() { s.expire(key, e) })
	}
	s.entries[key] = e

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(key)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		s.remove(key)
	}
	s.log.Debug().Msg("cache cleared")
	return nil
}

// Len returns the number of stored entries, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// remove must be called with mu held
func (s *MemoryStore) remove(key string) {
	if e, ok := s.entries[key]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.entries, key)
	}
}

// expire runs on the timer goroutine. A timer that lost the race with a
// newer Set for the same key must not remove the newer entry.
func (s *MemoryStore) expire(key string, e *memoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[key] == e {
		delete(s.entries, key)
	}
}
