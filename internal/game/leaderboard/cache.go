package leaderboard

import (
	"sync"
	"time"

	"github.com/Arshia001/FLServer-sub001/internal/game/player"
)

// DefaultTTL bounds how stale a cached profile projection may get.
const DefaultTTL = time.Hour

// Cache is a TTL map of public profile projections keyed by player ID.
//
// There is no per-key locking: concurrent misses for the same key may both
// fetch and both store, and the last writer wins. That is acceptable because
// the fetched value reflects the backing entity's current public state either
// way.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	profile player.Profile
	expires time.Time
}

// NewCache creates a cache with the given TTL. A zero or negative TTL falls
// back to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached projection for id. An expired entry counts as a
// miss.
func (c *Cache) Get(id string, now time.Time) (player.Profile, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok || now.After(e.expires) {
		return player.Profile{}, false
	}
	return e.profile, true
}

// Put stores a projection for id, expiring at now plus the cache TTL.
// Existing entries, expired or not, are overwritten.
func (c *Cache) Put(id string, profile player.Profile, now time.Time) {
	c.mu.Lock()
	c.entries[id] = cacheEntry{profile: profile, expires: now.Add(c.ttl)}
	c.mu.Unlock()
}

// Len reports the number of stored entries, including expired ones that have
// not been overwritten yet.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
