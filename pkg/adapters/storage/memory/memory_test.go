package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
)

func plan(destination string) *domain.CompositeResult {
	return &domain.CompositeResult{
		Destination: destination,
		Trends:      []domain.Spot{{Name: "Beach"}},
		Itinerary:   []domain.DayPlan{{Day: 1, Places: []string{"Beach"}}},
	}
}

func TestPutGetCopies(t *testing.T) {
	s := New(time.Hour)
	ctx := context.Background()

	in := plan("Goa")
	if err := s.Put(ctx, "k", in); err != nil {
		t.Fatal(err)
	}
	in.Trends[0].Name = "mutated after put"

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Trends[0].Name != "Beach" {
		t.Error("Put must store a copy")
	}
	if got.Photos == nil {
		t.Error("stored plan should be normalized")
	}

	got.Itinerary[0].Places[0] = "mutated after get"
	again, _, _ := s.Get(ctx, "k")
	if again.Itinerary[0].Places[0] != "Beach" {
		t.Error("Get must return a copy")
	}
}

func TestTTL(t *testing.T) {
	now := time.Unix(1_000, 0)
	s := New(time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_ = s.Put(ctx, "k", plan("Goa"))

	now = now.Add(time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Error("entry at exactly ttl should be fresh")
	}

	now = now.Add(time.Millisecond)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected miss after ttl")
	}

	stats, _ := s.Stats(ctx)
	if stats.Entries != 1 {
		t.Errorf("stale entry should not be deleted on read, entries = %d", stats.Entries)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", stats)
	}
}

func TestLastWriteWins(t *testing.T) {
	s := New(time.Hour)
	ctx := context.Background()

	_ = s.Put(ctx, "k", plan("first"))
	_ = s.Put(ctx, "k", plan("second"))

	got, _, _ := s.Get(ctx, "k")
	if got.Destination != "second" {
		t.Errorf("Destination = %q, want %q", got.Destination, "second")
	}
}

func TestShardedStore(t *testing.T) {
	for _, shards := range []int{1, 8} {
		t.Run(fmt.Sprintf("shards=%d", shards), func(t *testing.T) {
			s := New(time.Hour, WithShards(shards))
			if s.Shards() != shards {
				t.Fatalf("Shards() = %d, want %d", s.Shards(), shards)
			}
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					key := fmt.Sprintf("key-%d", i)
					_ = s.Put(ctx, key, plan(key))
					if _, ok, _ := s.Get(ctx, key); !ok {
						t.Errorf("missing %s", key)
					}
				}(i)
			}
			wg.Wait()

			stats, _ := s.Stats(ctx)
			if stats.Entries != 50 {
				t.Errorf("entries = %d, want 50", stats.Entries)
			}
		})
	}
}

func TestWithShardsClampsToOne(t *testing.T) {
	s := New(time.Hour, WithShards(0))
	if s.Shards() != 1 {
		t.Errorf("Shards() = %d, want 1", s.Shards())
	}
}

func TestPurgeExpiredOnly(t *testing.T) {
	now := time.Unix(1_000, 0)
	s := New(time.Minute, WithClock(func() time.Time { return now }), WithShards(4))
	ctx := context.Background()

	_ = s.Put(ctx, "old", plan("old"))
	now = now.Add(2 * time.Minute)
	_ = s.Put(ctx, "new", plan("new"))

	removed, _ := s.Purge(ctx, true)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok, _ := s.Get(ctx, "new"); !ok {
		t.Error("fresh entry removed by expired-only purge")
	}
}

func TestPutNil(t *testing.T) {
	s := New(time.Hour)
	if err := s.Put(context.Background(), "k", nil); err == nil {
		t.Error("expected error for nil plan")
	}
}
