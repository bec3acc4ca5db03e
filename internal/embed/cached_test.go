package embed

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps StaticEmbedder and counts Embed calls.
type countingEmbedder struct {
	*StaticEmbedder
	calls atomic.Int64
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return c.StaticEmbedder.Embed(ctx, text)
}

func TestCachedEmbedder_Embed_CachesRepeatedText(t *testing.T) {
	// Given: a cached embedder over a call-counting inner embedder
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder(64)}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	// When: I embed the same text three times
	first, err := cached.Embed(ctx, "repeated query")
	require.NoError(t, err)
	second, err := cached.Embed(ctx, "repeated query")
	require.NoError(t, err)
	third, err := cached.Embed(ctx, "repeated query")
	require.NoError(t, err)

	// Then: the inner embedder ran once and all results match
	assert.Equal(t, int64(1), inner.calls.Load())
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestCachedEmbedder_Embed_DistinctTextsMiss(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder(64)}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := cached.Embed(ctx, "alpha")
	require.NoError(t, err)
	_, err = cached.Embed(ctx, "beta")
	require.NoError(t, err)

	assert.Equal(t, int64(2), inner.calls.Load())
}

func TestCachedEmbedder_Embed_EvictsBeyondCapacity(t *testing.T) {
	// Given: a cache of size 1
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder(64)}
	cached := NewCachedEmbedder(inner, 1)
	ctx := context.Background()

	// When: two texts alternate, each embed evicts the other
	_, err := cached.Embed(ctx, "alpha")
	require.NoError(t, err)
	_, err = cached.Embed(ctx, "beta")
	require.NoError(t, err)
	_, err = cached.Embed(ctx, "alpha")
	require.NoError(t, err)

	// Then: every call missed
	assert.Equal(t, int64(3), inner.calls.Load())
}

func TestCachedEmbedder_EmbedBatch_UsesCache(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder(64)}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	batch, err := cached.EmbedBatch(ctx, []string{"one", "two", "one"})
	require.NoError(t, err)
	require.Len(t, batch, 3)

	assert.Equal(t, int64(2), inner.calls.Load(), "duplicate in batch should hit the cache")
	assert.Equal(t, batch[0], batch[2])
}

func TestCachedEmbedder_DelegatesMetadata(t *testing.T) {
	inner := NewStaticEmbedder(96)
	cached := NewCachedEmbedder(inner, 10)

	assert.Equal(t, 96, cached.Dimensions())
	assert.Equal(t, "static", cached.ModelName())
}
