// Package storage provides the expiring key-value and sliding-window
// primitives backing the response cache, conversation context store,
// and rate limiter.
package storage

import (
	"context"
	"time"
)

// Store is an expiring key-value store with sliding-window event tracking.
//
// Get reports a miss with found=false rather than an error; errors are
// reserved for backend failures so callers can degrade gracefully.
type Store interface {
	// Get returns the value for key, or found=false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores the value under key with the given TTL. A zero TTL
	// stores the value without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// WindowCount prunes window events older than cutoff and returns
	// the number of remaining events for key.
	WindowCount(ctx context.Context, key string, cutoff time.Time) (int64, error)

	// WindowAllow atomically prunes events older than cutoff, checks the
	// remaining count against limit, and records an event at the given
	// time only when the count is under the limit. The purge, check, and
	// record must execute as one per-key operation so concurrent callers
	// cannot both observe limit-1 and both record. Returns whether the
	// event was recorded and the in-window count after the call.
	WindowAllow(ctx context.Context, key string, cutoff, at time.Time, ttl time.Duration, limit int64) (allowed bool, count int64, err error)

	// CleanupExpired removes expired entries and returns the number
	// removed. Backends with native expiry may return 0.
	CleanupExpired(ctx context.Context) (int64, error)

	// Len returns the number of live entries, where the backend can
	// report it cheaply.
	Len(ctx context.Context) (int64, error)

	// Ping verifies the backend connection is healthy.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
