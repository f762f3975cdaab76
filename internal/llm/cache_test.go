package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCache_RoundTrip(t *testing.T) {
	cache, err := NewResponseCache(1<<20, 0)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	key := cacheKey("llama3.1:8b", "what is 2+2?", 0.7)
	cache.Set(key, &Completion{Content: "the final answer is boxed[4]", Model: "llama3.1:8b"})
	cache.Wait()

	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, "the final answer is boxed[4]", got.Content)
	assert.Equal(t, "llama3.1:8b", got.Model)
}

func TestResponseCache_Miss(t *testing.T) {
	cache, err := NewResponseCache(1<<20, 0)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	_, ok := cache.Get(cacheKey("llama3.1:8b", "never stored", 0.7))
	assert.False(t, ok)
}

func TestResponseCache_TTLExpiry(t *testing.T) {
	cache, err := NewResponseCache(1<<20, 20*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	key := cacheKey("llama3.1:8b", "ephemeral", 0.7)
	cache.Set(key, &Completion{Content: "short lived"})
	cache.Wait()

	_, ok := cache.Get(key)
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = cache.Get(key)
	assert.False(t, ok)
}

func TestCacheKey_Distinct(t *testing.T) {
	base := cacheKey("llama3.1:8b", "prompt", 0.7)

	assert.NotEqual(t, base, cacheKey("qwen2.5:7b", "prompt", 0.7))
	assert.NotEqual(t, base, cacheKey("llama3.1:8b", "other prompt", 0.7))
	assert.NotEqual(t, base, cacheKey("llama3.1:8b", "prompt", 0.1))
	assert.Equal(t, base, cacheKey("llama3.1:8b", "prompt", 0.7))
}
