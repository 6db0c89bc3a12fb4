package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/league-stats/internal/platform/resilience"
)

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// Stats is a point-in-time view of the store contents.
type Stats struct {
	Total   int `json:"total_entries"`
	Active  int `json:"active_entries"`
	Expired int `json:"expired_entries"`
}

// Store is an in-memory result cache with a time-to-live per entry.
// Expired entries are dropped when read and by Sweep.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	flight  resilience.SingleFlight
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the live value stored under key. A stored nil or empty value
// is still a hit.
func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		s.mu.Lock()
		// Another writer may have refreshed the key since the read lock was released.
		if current, ok := s.entries[key]; ok && current.expired(now) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Put stores value under key until now+ttl. A non-positive ttl never expires.
func (s *Store) Put(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:     value,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()
}

// Sweep removes every expired entry and returns how many were removed.
func (s *Store) Sweep(_ context.Context) int {
	now := s.now()
	removed := 0

	s.mu.Lock()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	s.mu.Unlock()

	return removed
}

// Clear empties the store and returns the number of entries removed.
func (s *Store) Clear(_ context.Context) int {
	s.mu.Lock()
	removed := len(s.entries)
	s.entries = make(map[string]entry)
	s.mu.Unlock()

	return removed
}

func (s *Store) Stats(_ context.Context) Stats {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Stats{Total: len(s.entries)}
	for _, e := range s.entries {
		if e.expired(now) {
			out.Expired++
		}
	}
	out.Active = out.Total - out.Expired
	return out
}

// GetOrLoad returns the cached value for key or runs loader once for all
// concurrent callers of the same key and stores its result for ttl.
func (s *Store) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (any, error)) (any, bool, error) {
	if loader == nil {
		return nil, false, fmt.Errorf("loader is required")
	}
	if key == "" {
		value, err := loader(ctx)
		return value, false, err
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, true, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Put(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return nil, false, err
	}

	return value, false, nil
}

// Load is the typed form of GetOrLoad. A nil store disables caching.
func Load[T any](ctx context.Context, s *Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, bool, error) {
	if s == nil {
		value, err := compute(ctx)
		return value, false, err
	}

	raw, hit, err := s.GetOrLoad(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return compute(ctx)
	})
	if err != nil {
		var zero T
		return zero, false, err
	}

	value, ok := raw.(T)
	if !ok {
		// Key shared with another result type; recompute rather than fail.
		value, err = compute(ctx)
		return value, false, err
	}
	return value, hit, nil
}
