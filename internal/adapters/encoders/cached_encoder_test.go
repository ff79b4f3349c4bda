package encoders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsage/backend/internal/adapters/encoders"
)

type countingEncoder struct {
	vector []float64
	err    error
	calls  int
}

func (c *countingEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.vector, nil
}

type memoryCache struct {
	data    map[string][]byte
	setErr  error
	getErr  error
	setKeys []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return data, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.setKeys = append(m.setKeys, key)
	return nil
}

func TestCachedEncoder_SecondCallHitsCache(t *testing.T) {
	inner := &countingEncoder{vector: []float64{1, 0}}
	cache := newMemoryCache()
	encoder := encoders.NewCachedEncoder(inner, cache, 60)

	first, err := encoder.Encode(context.Background(), "knee surgery")
	require.NoError(t, err)
	second, err := encoder.Encode(context.Background(), "knee surgery")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Len(t, cache.setKeys, 1)
}

func TestCachedEncoder_CacheFailuresFallThrough(t *testing.T) {
	inner := &countingEncoder{vector: []float64{1, 0}}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	encoder := encoders.NewCachedEncoder(inner, cache, 60)

	got, err := encoder.Encode(context.Background(), "knee surgery")

	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, got)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedEncoder_InnerErrorNotCached(t *testing.T) {
	inner := &countingEncoder{err: errors.New("upstream down")}
	cache := newMemoryCache()
	encoder := encoders.NewCachedEncoder(inner, cache, 60)

	_, err := encoder.Encode(context.Background(), "knee surgery")

	require.Error(t, err)
	assert.Empty(t, cache.data)
}

func TestCachedEncoder_DistinctTextsDistinctKeys(t *testing.T) {
	inner := &countingEncoder{vector: []float64{1, 0}}
	cache := newMemoryCache()
	encoder := encoders.NewCachedEncoder(inner, cache, 60)

	_, err := encoder.Encode(context.Background(), "knee surgery")
	require.NoError(t, err)
	_, err = encoder.Encode(context.Background(), "dental care")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
	require.Len(t, cache.setKeys, 2)
	assert.NotEqual(t, cache.setKeys[0], cache.setKeys[1])
}
