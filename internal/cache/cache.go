// Package cache defines the key-value capability used for user snapshots,
// consumed reset-token markers and rate-limit counters.
package cache

import (
	"context"
	"time"
)

// Cache is a shared, external key-value store. Implementations offer no
// transactions and no cross-key atomicity.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A non-positive ttl keeps the key forever.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Expire resets the time-to-live of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
