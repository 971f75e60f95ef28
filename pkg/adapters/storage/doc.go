// Package storage provides cache store implementations for composite plans.
//
// Implementations:
//   - file: single JSON document guarded by one store-wide lock (default)
//   - memory: in-process map, optionally sharded for per-key locking
//   - sqlite: SQLite table via modernc.org/sqlite
//   - redis: Redis with JSON serialization and expiry
//
// All backends check freshness at read time against the configured TTL and
// return deep copies.
package storage
