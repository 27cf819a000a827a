// Package cache provides the process-local document cache that fronts
// presentation reads. The cache is strictly a performance optimization: it
// holds no authoritative data and every backend treats internal failures
// as a miss rather than an error the caller must handle.
package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is the entry expiry window applied when callers pass a zero TTL.
const DefaultTTL = time.Hour

// Sentinel errors for cache operations.
var (
	// ErrNotFound is returned when a key is absent or its entry expired.
	ErrNotFound = errors.New("cache: not found")
)

// Cache stores serialized documents under string keys with per-entry TTL.
// Implementations must be safe for concurrent use. Expiry is checked lazily
// at Get time; no background eviction is required.
type Cache interface {
	// Get returns the cached bytes for key, or ErrNotFound when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any prior entry. A zero ttl
	// applies DefaultTTL; a negative ttl stores a non-expiring entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry if present; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
