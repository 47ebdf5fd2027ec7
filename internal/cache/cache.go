// Package cache defines the shared result cache used by the search
// pipeline. Values are immutable snapshots keyed deterministically, so the
// cache needs no transactional guarantees: overwrites are idempotent and
// staleness is bounded by TTL.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// Implementations must be safe for concurrent use.
//
// A miss is (nil, nil), not an error. Errors mean the backend itself is
// unhealthy; callers degrade to a direct fetch and log, never fail the
// request.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Noop is a Cache that stores nothing. Used when caching is disabled and
// in tests that want every fetch to go to the source.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) ([]byte, error) { return nil, nil }

// Set discards the value.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Close is a no-op.
func (Noop) Close() error { return nil }
