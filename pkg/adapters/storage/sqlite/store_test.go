package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
)

func newTestStore(t *testing.T, ttl time.Duration, now *time.Time) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache_test.db")
	s, err := New(dbPath, ttl, WithClock(func() time.Time { return *now }))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutAndGet(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestStore(t, time.Hour, &now)
	ctx := context.Background()

	in := &domain.CompositeResult{Destination: "Jaipur", Photos: []string{"https://img/1"}}
	if err := s.Put(ctx, "jaipur||50000|adventure", in); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Get(ctx, "jaipur||50000|adventure")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Destination != "Jaipur" || len(got.Photos) != 1 {
		t.Errorf("unexpected plan: %+v", got)
	}
	if got.Trends == nil {
		t.Error("plan read back should be normalized")
	}

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Error("expected cache miss")
	}
}

func TestTTLExpiration(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestStore(t, time.Hour, &now)
	ctx := context.Background()

	_ = s.Put(ctx, "k", &domain.CompositeResult{Destination: "Goa"})

	now = now.Add(time.Hour + time.Second)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected cache miss after TTL expiration")
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Fresh != 0 {
		t.Errorf("stats = %+v, want 1 stale entry", stats)
	}
}

func TestLastWriteWins(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestStore(t, time.Hour, &now)
	ctx := context.Background()

	_ = s.Put(ctx, "k", &domain.CompositeResult{Destination: "first"})
	_ = s.Put(ctx, "k", &domain.CompositeResult{Destination: "second"})

	got, _, _ := s.Get(ctx, "k")
	if got.Destination != "second" {
		t.Errorf("Destination = %q, want %q", got.Destination, "second")
	}
	stats, _ := s.Stats(ctx)
	if stats.Entries != 1 {
		t.Errorf("entries = %d, want 1", stats.Entries)
	}
}

func TestStatsCounters(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestStore(t, time.Hour, &now)
	ctx := context.Background()

	_ = s.Put(ctx, "h1", &domain.CompositeResult{})
	s.Get(ctx, "h1") // hit
	s.Get(ctx, "h2") // miss

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", stats)
	}
}

func TestPurge(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestStore(t, time.Hour, &now)
	ctx := context.Background()

	_ = s.Put(ctx, "old", &domain.CompositeResult{})
	now = now.Add(2 * time.Hour)
	_ = s.Put(ctx, "new", &domain.CompositeResult{})

	removed, err := s.Purge(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	removed, err = s.Purge(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestPutNilIsCacheIOError(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestStore(t, time.Hour, &now)

	err := s.Put(context.Background(), "k", nil)
	var ioErr *domain.CacheIOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected CacheIOError, got %v", err)
	}
}
