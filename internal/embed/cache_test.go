package embed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGet(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "cache", "embeddings.db")
	cache, err := OpenCache(dbPath)
	require.NoError(t, err)
	defer cache.Close()

	vec := []float32{0.1, -0.2, 0.3, 0.4}
	require.NoError(t, cache.Put("model-a", "hello world", vec))

	got, ok, err := cache.Get("model-a", "hello world")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestCache_MissReturnsFalse(t *testing.T) {
	t.Parallel()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache", "embeddings.db"))
	require.NoError(t, err)
	defer cache.Close()

	_, ok, err := cache.Get("model-a", "never seen")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_KeyedByModelAndContent(t *testing.T) {
	t.Parallel()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache", "embeddings.db"))
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Put("model-a", "same text", []float32{1, 2}))
	require.NoError(t, cache.Put("model-b", "same text", []float32{3, 4}))

	gotA, ok, err := cache.Get("model-a", "same text")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, gotA)

	gotB, ok, err := cache.Get("model-b", "same text")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{3, 4}, gotB)
}

func TestCache_PutOverwritesExistingKey(t *testing.T) {
	t.Parallel()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache", "embeddings.db"))
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Put("model-a", "text", []float32{1, 1}))
	require.NoError(t, cache.Put("model-a", "text", []float32{2, 2}))

	got, ok, err := cache.Get("model-a", "text")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{2, 2}, got)
}

func TestCache_Clear(t *testing.T) {
	t.Parallel()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache", "embeddings.db"))
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Put("model-a", "text", []float32{1, 1}))
	require.NoError(t, cache.Clear())

	_, ok, err := cache.Get("model-a", "text")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedProvider_DeterministicEmbedIsServedFromCache(t *testing.T) {
	t.Parallel()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache", "embeddings.db"))
	require.NoError(t, err)
	defer cache.Close()

	inner := NewMockProvider(8)
	provider := NewCachedProvider(inner, cache, "mock-model")

	ctx := context.Background()
	first, err := provider.Embed(ctx, []string{"func main() {}"})
	require.NoError(t, err)

	inner.SetEmbedError(assert.AnError)

	second, err := provider.Embed(ctx, []string{"func main() {}"})
	require.NoError(t, err, "second call should be served entirely from cache despite the provider now failing")
	assert.Equal(t, first, second)
}

func TestCachedProvider_MixedHitAndMissBatch(t *testing.T) {
	t.Parallel()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache", "embeddings.db"))
	require.NoError(t, err)
	defer cache.Close()

	inner := NewMockProvider(8)
	provider := NewCachedProvider(inner, cache, "mock-model")
	ctx := context.Background()

	require.NoError(t, cache.Put("mock-model", "cached", inner.vectorFor("cached")))

	out, err := provider.Embed(ctx, []string{"cached", "uncached"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, inner.vectorFor("cached"), out[0])
	assert.Equal(t, inner.vectorFor("uncached"), out[1])

	got, ok, err := cache.Get("mock-model", "uncached")
	require.NoError(t, err)
	require.True(t, ok, "miss should be populated into the cache after the call")
	assert.Equal(t, out[1], got)
}
