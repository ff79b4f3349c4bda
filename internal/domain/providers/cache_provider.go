package providers

import (
	"context"
)

// CacheProvider is the byte-level cache the encoder decorator reads and
// writes through.
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration in seconds
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error
}
