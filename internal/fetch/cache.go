// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package fetch

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/geonote/internal/geo"
)

type cacheEntry struct {
	Coordinate geo.Coordinate
	Label      string
	Found      bool
	Expiry     time.Time
}

// Cache remembers resolution outcomes so that repeated resolution of the same
// link does not refetch. Entries are keyed per rule and URL, successful
// resolutions and content misses carry separate TTLs.
type Cache struct {
	clock   clockwork.Clock
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache returns a new Cache with the given hit and miss TTLs
func NewCache(ttlHit, ttlMiss time.Duration) *Cache {
	return NewCacheWithClock(ttlHit, ttlMiss, clockwork.NewRealClock())
}

// NewCacheWithClock returns a new Cache using the given clock. Tests use this
// with a fake clock to control entry expiry.
func NewCacheWithClock(ttlHit, ttlMiss time.Duration, clock clockwork.Clock) *Cache {
	return &Cache{
		clock:   clock,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
		entries: make(map[string]cacheEntry),
	}
}

// lookup returns the cached entry for a key, if present and not expired
func (c *Cache) lookup(key string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.clock.Now().After(entry.Expiry) {
		return cacheEntry{}, false
	}
	return entry, true
}

// store remembers the resolution outcome for a key
func (c *Cache) store(key string, coord geo.Coordinate, label string, found bool) {
	ttl := c.ttlHit
	if !found {
		ttl = c.ttlMiss
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		Coordinate: coord,
		Label:      label,
		Found:      found,
		Expiry:     c.clock.Now().Add(ttl),
	}
}
