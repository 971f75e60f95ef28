package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
)

// SchemaVersion tags every persisted entry so the format can evolve.
const SchemaVersion = 1

// Entry is a cached plan together with its write time in unix seconds
type Entry struct {
	Timestamp int64                   `json:"timestamp"`
	Value     *domain.CompositeResult `json:"value"`
}

// Document is the on-disk layout of the file store
type Document struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// NewDocument returns an empty document at the current schema version.
func NewDocument() *Document {
	return &Document{
		Version: SchemaVersion,
		Entries: make(map[string]Entry),
	}
}

// Record is the standalone layout used by key-value backends
type Record struct {
	Version   int                     `json:"version"`
	Timestamp int64                   `json:"timestamp"`
	Value     *domain.CompositeResult `json:"value"`
}

// Fresh reports whether an entry written at timestamp is still within ttl.
func Fresh(timestamp int64, now time.Time, ttl time.Duration) bool {
	return now.Sub(time.Unix(timestamp, 0)) <= ttl
}

// EncodeRecord serializes a plan for key-value backends.
func EncodeRecord(value *domain.CompositeResult, now time.Time) ([]byte, error) {
	if value == nil {
		return nil, fmt.Errorf("nil plan")
	}
	data, err := json.Marshal(Record{
		Version:   SchemaVersion,
		Timestamp: now.Unix(),
		Value:     value,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

// DecodeRecord parses a record written by EncodeRecord.
func DecodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	if rec.Version != SchemaVersion {
		return nil, fmt.Errorf("unsupported record version %d", rec.Version)
	}
	if rec.Value == nil {
		return nil, fmt.Errorf("record has no value")
	}
	rec.Value.Normalize()
	return &rec, nil
}
