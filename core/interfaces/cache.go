// Package interfaces defines the core interfaces used throughout the
// application. These interfaces allow for dependency injection and make
// the code testable.
package interfaces

import (
	"context"
	"time"
)

// Cache defines the interface for cache operations.
// Implementations can be Redis, in-memory, or any other caching solution.
// The pipeline caches search responses and page metadata; extraction
// results are deliberately not cached across runs.
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns the cached data as []byte or an error on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given key and TTL.
	// A ttl of 0 stores the value indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
