package encoders

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/claimsage/backend/internal/domain/providers"
)

// CachedEncoder decorates an EncoderProvider with a byte cache. Encoders
// are deterministic for identical input, so cached vectors are safe to
// reuse. Cache failures fall through to the wrapped encoder and are never
// surfaced to the caller.
type CachedEncoder struct {
	inner      providers.EncoderProvider
	cache      providers.CacheProvider
	ttlSeconds int
}

// NewCachedEncoder wraps an encoder with a cache. TTL is in seconds.
func NewCachedEncoder(inner providers.EncoderProvider, cache providers.CacheProvider, ttlSeconds int) providers.EncoderProvider {
	return &CachedEncoder{
		inner:      inner,
		cache:      cache,
		ttlSeconds: ttlSeconds,
	}
}

// Encode returns the cached vector for the text when present, otherwise
// delegates to the wrapped encoder and stores the result.
func (e *CachedEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	key := cacheKey(text)

	if data, err := e.cache.Get(ctx, key); err == nil {
		var embedding []float64
		if json.Unmarshal(data, &embedding) == nil && len(embedding) > 0 {
			return embedding, nil
		}
	}

	embedding, err := e.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(embedding); err == nil {
		if err := e.cache.Set(ctx, key, data, e.ttlSeconds); err != nil {
			log.Warn().Err(err).Msg("failed to cache embedding")
		}
	}

	return embedding, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + hex.EncodeToString(sum[:])
}
