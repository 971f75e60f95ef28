// Package events provides event bus implementations for plan progress.
//
// Implementations:
//   - memory: in-process fan-out, the default for a single instance
//   - redis: Redis Streams, for several instances sharing progress
package events
