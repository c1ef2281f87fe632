package cache

import "time"

// CacheService defines the interface for cache operations. The pipeline uses
// it for two things: rate-limit blocks on retailer sources and dedup keys for
// already-published promotions.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
