package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aescanero/tripplanner/pkg/adapters/storage"
	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/aescanero/tripplanner/pkg/ports"
	"go.uber.org/zap"
)

// Store keeps every cached plan in one JSON document on disk. All reads and
// writes go through a single mutex, so concurrent writers for different keys
// still serialize and the last write wins.
type Store struct {
	path   string
	ttl    time.Duration
	now    ports.Clock
	logger *zap.Logger

	mu     sync.Mutex
	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for timestamps and TTL checks.
func WithClock(now ports.Clock) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a file-backed store at path
func New(path string, ttl time.Duration, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		path:   path,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a fresh entry for key
func (s *Store) Get(ctx context.Context, key string) (*domain.CompositeResult, bool, error) {
	s.mu.Lock()
	doc, err := s.load()
	s.mu.Unlock()

	if err != nil {
		s.misses.Add(1)
		return nil, false, &domain.CacheIOError{Op: "read", Key: key, Err: err}
	}

	entry, ok := doc.Entries[key]
	if !ok || entry.Value == nil || !storage.Fresh(entry.Timestamp, s.now(), s.ttl) {
		s.misses.Add(1)
		return nil, false, nil
	}

	s.hits.Add(1)
	// Decoded from disk on every call, so the caller owns this copy.
	entry.Value.Normalize()
	return entry.Value, true, nil
}

// Put stores value under key, rewriting the whole document
func (s *Store) Put(ctx context.Context, key string, value *domain.CompositeResult) error {
	if value == nil {
		return &domain.CacheIOError{Op: "write", Key: key, Err: fmt.Errorf("nil plan")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		// An unreadable document is replaced rather than blocking all writes.
		s.logger.Warn("discarding unreadable cache file",
			zap.String("path", s.path),
			zap.Error(err))
		doc = storage.NewDocument()
	}

	doc.Entries[key] = storage.Entry{
		Timestamp: s.now().Unix(),
		Value:     value,
	}

	if err := s.save(doc); err != nil {
		return &domain.CacheIOError{Op: "write", Key: key, Err: err}
	}

	s.logger.Debug("plan cached",
		zap.String("cache_key", key),
		zap.String("path", s.path))

	return nil
}

// Stats reports entry counts and lookup counters
func (s *Store) Stats(ctx context.Context) (ports.CacheStats, error) {
	s.mu.Lock()
	doc, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return ports.CacheStats{}, &domain.CacheIOError{Op: "stats", Err: err}
	}

	now := s.now()
	stats := ports.CacheStats{
		Entries: int64(len(doc.Entries)),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}
	for _, e := range doc.Entries {
		if storage.Fresh(e.Timestamp, now, s.ttl) {
			stats.Fresh++
		}
	}
	return stats, nil
}

// Purge removes all entries, or only stale ones when expiredOnly is set
func (s *Store) Purge(ctx context.Context, expiredOnly bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return 0, &domain.CacheIOError{Op: "purge", Err: err}
	}

	now := s.now()
	var removed int64
	for key, e := range doc.Entries {
		if expiredOnly && storage.Fresh(e.Timestamp, now, s.ttl) {
			continue
		}
		delete(doc.Entries, key)
		removed++
	}

	if err := s.save(doc); err != nil {
		return 0, &domain.CacheIOError{Op: "purge", Err: err}
	}
	return removed, nil
}

// Close is a no-op; the file is opened per operation
func (s *Store) Close() error {
	return nil
}

// load reads the document; a missing file is an empty document. Callers hold s.mu.
func (s *Store) load() (*storage.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return storage.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var doc storage.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache file: %w", err)
	}
	if doc.Version != storage.SchemaVersion {
		return nil, fmt.Errorf("unsupported cache file version %d", doc.Version)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]storage.Entry)
	}
	return &doc, nil
}

// save writes the document through a temp file and rename. Callers hold s.mu.
func (s *Store) save(doc *storage.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal cache file: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".plan-cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
