package arr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListCache_RoundTrip(t *testing.T) {
	cache := NewListCache[[]string](time.Minute)

	_, ok := cache.Get("profiles")
	assert.False(t, ok)

	cache.Set("profiles", []string{"HD-1080p"})
	value, ok := cache.Get("profiles")
	assert.True(t, ok)
	assert.Equal(t, []string{"HD-1080p"}, value)

	_, ok = cache.Get("other")
	assert.False(t, ok, "keys are independent")
}

func TestListCache_Expires(t *testing.T) {
	cache := NewListCache[int](10 * time.Millisecond)

	cache.Set("count", 3)
	value, ok := cache.Get("count")
	assert.True(t, ok)
	assert.Equal(t, 3, value)

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get("count")
	assert.False(t, ok, "entry expired")
}

func TestListCache_Clear(t *testing.T) {
	cache := NewListCache[int](time.Minute)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Clear()

	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}
