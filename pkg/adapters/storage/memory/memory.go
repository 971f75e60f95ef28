package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/aescanero/tripplanner/pkg/ports"
	"github.com/cespare/xxhash/v2"
)

// Store implements CacheStore using in-memory maps. With one shard every
// operation takes the same lock; with more shards keys are striped across
// independent locks.
type Store struct {
	shards []*shard
	ttl    time.Duration
	now    ports.Clock

	hits   atomic.Int64
	misses atomic.Int64
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	storedAt time.Time
	value    *domain.CompositeResult
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for TTL checks.
func WithClock(now ports.Clock) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithShards sets the number of lock stripes. One shard (the default) keeps
// a single store-wide lock.
func WithShards(n int) Option {
	return func(s *Store) {
		if n < 1 {
			n = 1
		}
		s.shards = newShards(n)
	}
}

// New creates a new in-memory store
func New(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		shards: newShards(1),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{entries: make(map[string]entry)}
	}
	return shards
}

// Shards returns the number of lock stripes
func (s *Store) Shards() int {
	return len(s.shards)
}

func (s *Store) shardFor(key string) *shard {
	if len(s.shards) == 1 {
		return s.shards[0]
	}
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// Get returns a copy of the fresh entry for key
func (s *Store) Get(ctx context.Context, key string) (*domain.CompositeResult, bool, error) {
	sh := s.shardFor(key)

	sh.mu.RLock()
	e, ok := sh.entries[key]
	sh.mu.RUnlock()

	if !ok || s.now().Sub(e.storedAt) > s.ttl {
		s.misses.Add(1)
		return nil, false, nil
	}

	s.hits.Add(1)
	return e.value.Clone(), true, nil
}

// Put stores a copy of value under key
func (s *Store) Put(ctx context.Context, key string, value *domain.CompositeResult) error {
	if value == nil {
		return &domain.CacheIOError{Op: "write", Key: key, Err: fmt.Errorf("nil plan")}
	}

	stored := value.Clone()
	stored.Normalize()

	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.entries[key] = entry{storedAt: s.now(), value: stored}
	sh.mu.Unlock()

	return nil
}

// Stats reports entry counts and lookup counters
func (s *Store) Stats(ctx context.Context) (ports.CacheStats, error) {
	now := s.now()
	stats := ports.CacheStats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}

	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, e := range sh.entries {
			stats.Entries++
			if now.Sub(e.storedAt) <= s.ttl {
				stats.Fresh++
			}
		}
		sh.mu.RUnlock()
	}

	return stats, nil
}

// Purge removes all entries, or only stale ones when expiredOnly is set
func (s *Store) Purge(ctx context.Context, expiredOnly bool) (int64, error) {
	now := s.now()
	var removed int64

	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, e := range sh.entries {
			if expiredOnly && now.Sub(e.storedAt) <= s.ttl {
				continue
			}
			delete(sh.entries, key)
			removed++
		}
		sh.mu.Unlock()
	}

	return removed, nil
}

// Close clears the store
func (s *Store) Close() error {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.entries = make(map[string]entry)
		sh.mu.Unlock()
	}
	return nil
}
