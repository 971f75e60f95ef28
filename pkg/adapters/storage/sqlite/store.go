package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aescanero/tripplanner/pkg/adapters/storage"
	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/aescanero/tripplanner/pkg/ports"
)

// Store is a plan cache backed by SQLite.
type Store struct {
	db     *sql.DB
	ttl    time.Duration
	now    ports.Clock
	hits   atomic.Int64
	misses atomic.Int64
}

const createPlanTable = `
CREATE TABLE IF NOT EXISTS plan_cache (
	cache_key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for timestamps and TTL checks.
func WithClock(now ports.Clock) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New opens (and migrates) the cache database at dbPath.
func New(dbPath string, ttl time.Duration, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// One connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createPlanTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	s := &Store{db: db, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get retrieves a fresh cached plan.
func (s *Store) Get(ctx context.Context, key string) (*domain.CompositeResult, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM plan_cache WHERE cache_key = ?`, key,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		s.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		s.misses.Add(1)
		return nil, false, &domain.CacheIOError{Op: "read", Key: key, Err: err}
	}

	rec, err := storage.DecodeRecord(payload)
	if err != nil {
		s.misses.Add(1)
		return nil, false, &domain.CacheIOError{Op: "read", Key: key, Err: err}
	}

	if !storage.Fresh(rec.Timestamp, s.now(), s.ttl) {
		s.misses.Add(1)
		return nil, false, nil
	}

	s.hits.Add(1)
	return rec.Value, true, nil
}

// Put stores a plan, replacing any previous entry for key.
func (s *Store) Put(ctx context.Context, key string, value *domain.CompositeResult) error {
	now := s.now()
	payload, err := storage.EncodeRecord(value, now)
	if err != nil {
		return &domain.CacheIOError{Op: "write", Key: key, Err: err}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO plan_cache (cache_key, payload, created_at) VALUES (?, ?, ?)`,
		key, payload, now.Unix(),
	)
	if err != nil {
		return &domain.CacheIOError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// Stats returns cache contents and lookup counters.
func (s *Store) Stats(ctx context.Context) (ports.CacheStats, error) {
	cutoff := s.cutoff()

	var entries, fresh int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) FROM plan_cache`,
		cutoff,
	).Scan(&entries, &fresh)
	if err != nil {
		return ports.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}

	return ports.CacheStats{
		Entries: entries,
		Fresh:   fresh,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}, nil
}

// Purge removes cache entries. If expiredOnly is true, only stale entries are removed.
func (s *Store) Purge(ctx context.Context, expiredOnly bool) (int64, error) {
	var res sql.Result
	var err error
	if expiredOnly {
		res, err = s.db.ExecContext(ctx, `DELETE FROM plan_cache WHERE created_at < ?`, s.cutoff())
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM plan_cache`)
	}
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// cutoff is the oldest created_at still considered fresh.
func (s *Store) cutoff() int64 {
	return s.now().Add(-s.ttl).Unix()
}
