package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/tripplanner/pkg/adapters/storage"
	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/aescanero/tripplanner/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultPrefix namespaces plan keys in Redis.
const DefaultPrefix = "tripplanner:plan"

// Store implements CacheStore using Redis
type Store struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
	prefix string
	now    ports.Clock
}

// NewStore creates a new Redis cache store
func NewStore(client *redis.Client, ttl time.Duration, prefix string, logger *zap.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		client: client,
		logger: logger,
		ttl:    ttl,
		prefix: prefix,
		now:    time.Now,
	}
}

// Get retrieves a fresh plan from Redis
func (s *Store) Get(ctx context.Context, key string) (*domain.CompositeResult, bool, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, &domain.CacheIOError{Op: "read", Key: key, Err: err}
	}

	rec, err := storage.DecodeRecord(data)
	if err != nil {
		return nil, false, &domain.CacheIOError{Op: "read", Key: key, Err: err}
	}

	// Redis expiry is housekeeping; freshness is still decided by the timestamp.
	if !storage.Fresh(rec.Timestamp, s.now(), s.ttl) {
		return nil, false, nil
	}

	return rec.Value, true, nil
}

// Put saves a plan to Redis with TTL
func (s *Store) Put(ctx context.Context, key string, value *domain.CompositeResult) error {
	data, err := storage.EncodeRecord(value, s.now())
	if err != nil {
		return &domain.CacheIOError{Op: "write", Key: key, Err: err}
	}

	if err := s.client.Set(ctx, s.redisKey(key), data, s.expiry()).Err(); err != nil {
		return &domain.CacheIOError{Op: "write", Key: key, Err: err}
	}

	s.logger.Debug("plan cached",
		zap.String("cache_key", key),
		zap.Duration("ttl", s.ttl))

	return nil
}

// Close is a no-op; the client is owned by the caller
func (s *Store) Close() error {
	return nil
}

// expiry keeps entries a little past the TTL so reads near the boundary
// still see the stored timestamp.
func (s *Store) expiry() time.Duration {
	return s.ttl + time.Minute
}

// redisKey returns the Redis key for a plan cache key
func (s *Store) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}
