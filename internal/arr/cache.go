package arr

import (
	"sync"
	"time"
)

// ListCache is a short-TTL cache for list-shaped lookups (all titles,
// quality profiles) that would otherwise be re-fetched for every request
// touched in a reconciliation pass. Entries never survive across passes
// long enough to drive status decisions from stale data.
type ListCache[T any] struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]listEntry[T]
}

type listEntry[T any] struct {
	value   T
	expires time.Time
}

// NewListCache creates a cache with the given TTL.
func NewListCache[T any](ttl time.Duration) *ListCache[T] {
	return &ListCache[T]{
		ttl:     ttl,
		entries: make(map[string]listEntry[T]),
	}
}

// Get returns the cached value for key when it has not expired.
func (c *ListCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Set stores a value under key.
func (c *ListCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = listEntry[T]{value: value, expires: time.Now().Add(c.ttl)}
}

// Clear drops all entries.
func (c *ListCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]listEntry[T])
}
