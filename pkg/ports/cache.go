package ports

import (
	"context"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
)

// CacheStore persists composite results keyed by request cache key.
// Implementations must be safe for concurrent use.
type CacheStore interface {
	// Get returns a copy of the fresh entry for key. Entries older than the
	// store's TTL are reported as not found.
	Get(ctx context.Context, key string) (*domain.CompositeResult, bool, error)

	// Put stores value under key, replacing any previous entry.
	Put(ctx context.Context, key string, value *domain.CompositeResult) error

	// Close releases any resources held by the store.
	Close() error
}

// CacheStats reports cache contents and lookup counters.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Fresh   int64 `json:"fresh"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// CacheMaintainer is implemented by stores that support inspection and purging.
type CacheMaintainer interface {
	Stats(ctx context.Context) (CacheStats, error)

	// Purge removes entries. When expiredOnly is set only entries older than
	// the TTL are removed. It returns the number of removed entries.
	Purge(ctx context.Context, expiredOnly bool) (int64, error)
}

// Clock returns the current time; stores take one so TTL can be tested.
type Clock func() time.Time
