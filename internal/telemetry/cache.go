package telemetry

import "time"

// CacheEntry is the last good value of a field and when it was resolved.
type CacheEntry struct {
	Value any
	At    time.Time
}

// SourceCache holds the last successfully resolved value of every
// cache-eligible field. It is created once by the refresh loop and handed to
// the Merger on each tick; only the Merger writes to it, from the loop
// goroutine, so it carries no lock.
type SourceCache struct {
	entries map[string]CacheEntry
}

// NewSourceCache creates an empty cache.
func NewSourceCache() *SourceCache {
	return &SourceCache{entries: make(map[string]CacheEntry)}
}

// Get returns the cached entry for name.
func (c *SourceCache) Get(name string) (CacheEntry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Put stores value as the latest good value of name.
func (c *SourceCache) Put(name string, value any, at time.Time) {
	c.entries[name] = CacheEntry{Value: value, At: at}
}

// Len returns the number of cached fields.
func (c *SourceCache) Len() int {
	return len(c.entries)
}
