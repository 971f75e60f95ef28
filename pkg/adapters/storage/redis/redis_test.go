package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisKey(t *testing.T) {
	s := NewStore(nil, time.Hour, "", zaptest.NewLogger(t))
	if got, want := s.redisKey("goa||100|relax"), "tripplanner:plan:goa||100|relax"; got != want {
		t.Errorf("redisKey() = %q, want %q", got, want)
	}

	custom := NewStore(nil, time.Hour, "test", zaptest.NewLogger(t))
	if got, want := custom.redisKey("k"), "test:k"; got != want {
		t.Errorf("redisKey() = %q, want %q", got, want)
	}
}

func TestUnreachableServerIsCacheIOError(t *testing.T) {
	s := NewStore(unreachableClient(t), time.Hour, "", zaptest.NewLogger(t))
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "k")
	if ok {
		t.Error("expected miss when redis is down")
	}
	var ioErr *domain.CacheIOError
	if !errors.As(err, &ioErr) || ioErr.Op != "read" {
		t.Errorf("expected read CacheIOError, got %v", err)
	}

	err = s.Put(ctx, "k", &domain.CompositeResult{Destination: "Goa"})
	if !errors.As(err, &ioErr) || ioErr.Op != "write" {
		t.Errorf("expected write CacheIOError, got %v", err)
	}
}

func TestExpiryOutlivesTTL(t *testing.T) {
	s := NewStore(nil, time.Hour, "", zaptest.NewLogger(t))
	if s.expiry() <= time.Hour {
		t.Errorf("expiry() = %s, want more than ttl", s.expiry())
	}
}
