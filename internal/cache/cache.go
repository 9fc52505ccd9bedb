package cache

import (
	"sync"
	"time"
)

// Cache is an in-memory key/value store with per-entry TTL.
// Uses in-process storage to keep repeated OCR/LLM results off the wire;
// entries expire lazily on read and eagerly via the sweeper.
type Cache struct {
	entries    map[string]*entry
	mu         sync.RWMutex
	defaultTTL time.Duration
	maxEntries int

	hits      uint64
	misses    uint64
	evictions uint64

	sweepStop chan struct{}
	sweepDone chan struct{}
}

type entry struct {
	value     interface{}
	storedAt  time.Time
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// New creates a cache with the given default TTL. maxEntries <= 0 disables
// the size cap. The sweeper is not started here; the owner decides.
func New(defaultTTL time.Duration, maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
	}
}

// Get returns the value for key if present and not expired.
// An expired entry is removed as a side effect.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return e.value, true
}

// Set stores value under key with the default TTL, replacing any prior entry.
func (c *Cache) Set(key string, value interface{}) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache) SetTTL(key string, value interface{}, ttl time.Duration) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
}

// Delete removes key from the cache. Deleting an absent key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
}

// SweepExpired removes all expired entries and reports how many were removed.
func (c *Cache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Size returns the current number of entries, expired or not.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// evictOldest drops the oldest 20% of entries by stored-at time.
// Caller must hold the write lock.
func (c *Cache) evictOldest() {
	count := len(c.entries) / 5
	if count < 1 {
		count = 1
	}

	for i := 0; i < count; i++ {
		oldestKey := ""
		var oldestAt time.Time
		for key, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = e.storedAt
			}
		}
		if oldestKey == "" {
			return
		}
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

// StartSweeper begins periodic eviction of expired entries.
// Calling it twice without StopSweeper in between is a no-op.
func (c *Cache) StartSweeper(interval time.Duration) {
	c.mu.Lock()
	if c.sweepStop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	c.sweepStop = stop
	c.sweepDone = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.SweepExpired()
			case <-stop:
				return
			}
		}
	}()
}

// StopSweeper stops the background sweeper and waits for it to exit.
func (c *Cache) StopSweeper() {
	c.mu.Lock()
	stop := c.sweepStop
	done := c.sweepDone
	c.sweepStop = nil
	c.sweepDone = nil
	c.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
