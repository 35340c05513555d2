package cache

import (
	"sync"
	"time"

	"github.com/itsneelabh/shopeasy/pkg/logger"
)

// DefaultTTL is how long a fetched value stays fresh
const DefaultTTL = 5 * time.Minute

// Entry is a cached value with the time it was stored
type Entry struct {
	Key      Key
	Value    any
	StoredAt time.Time
}

// Stats holds cache statistics
type Stats struct {
	Hits           int64
	Misses         int64
	StaleServed    int64
	FallbackServed int64
	Evictions      int64
	Size           int
	HitRate        float64
}

// TTLCache maps keys to values that are valid for a fixed TTL after they are
// stored. Expired entries are kept so a failed refresh can still serve them.
type TTLCache struct {
	mu         sync.RWMutex
	items      map[Key]*Entry
	stats      Stats
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	logger     logger.Logger
}

// Option configures a TTLCache
type Option func(*TTLCache)

// WithTTL sets the freshness window
func WithTTL(ttl time.Duration) Option {
	return func(c *TTLCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the cache; 0 means unbounded
func WithMaxEntries(n int) Option {
	return func(c *TTLCache) {
		c.maxEntries = n
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) {
		c.now = now
	}
}

// WithLogger sets the logger used for hit/miss tracing
func WithLogger(l logger.Logger) Option {
	return func(c *TTLCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cache with DefaultTTL unless overridden
func New(opts ...Option) *TTLCache {
	c := &TTLCache{
		items:  make(map[Key]*Entry),
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the freshness window
func (c *TTLCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key only while it is fresh
func (c *TTLCache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		c.stats.Misses++
		c.updateHitRate()
		c.logger.Debug("Cache miss", "cache_key", key.String())
		return nil, false
	}

	if !c.fresh(item) {
		c.stats.Misses++
		c.updateHitRate()
		c.logger.Debug("Cache entry expired", map[string]interface{}{
			"cache_key": key.String(),
			"age_ms":    c.now().Sub(item.StoredAt).Milliseconds(),
		})
		return nil, false
	}

	c.stats.Hits++
	c.updateHitRate()
	c.logger.Debug("Cache hit", "cache_key", key.String())
	return item.Value, true
}

// Peek returns the entry for key whether or not it has expired
func (c *TTLCache) Peek(key Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found {
		return Entry{}, false
	}
	return *item, true
}

// Set stores value under key with the current time
func (c *TTLCache) Set(key Key, value any) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictExpired()
		if len(c.items) >= c.maxEntries {
			c.evictOldest()
		}
	}

	entry := &Entry{Key: key, Value: value, StoredAt: c.now()}
	c.items[key] = entry
	c.stats.Size = len(c.items)
	return *entry
}

// Delete removes key
func (c *TTLCache) Delete(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	c.stats.Size = len(c.items)
}

// Clear removes every entry, fresh or stale
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[Key]*Entry)
	c.stats.Size = 0
	c.logger.Debug("Cache cleared")
}

// Len returns the number of entries including expired ones
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *TTLCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = len(c.items)
	return stats
}

func (c *TTLCache) recordDegraded(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch src {
	case SourceStale:
		c.stats.StaleServed++
	case SourceFallback:
		c.stats.FallbackServed++
	}
}

// fresh reports whether now - storedAt < ttl (must be called with lock held)
func (c *TTLCache) fresh(item *Entry) bool {
	return c.now().Sub(item.StoredAt) < c.ttl
}

// evictExpired removes expired items (must be called with lock held)
func (c *TTLCache) evictExpired() {
	for key, item := range c.items {
		if !c.fresh(item) {
			delete(c.items, key)
			c.stats.Evictions++
		}
	}
}

// evictOldest removes the oldest item (must be called with lock held)
func (c *TTLCache) evictOldest() {
	var (
		oldestKey   Key
		oldestTime  time.Time
		foundOldest bool
	)
	for key, item := range c.items {
		if !foundOldest || item.StoredAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.StoredAt
			foundOldest = true
		}
	}
	if foundOldest {
		delete(c.items, oldestKey)
		c.stats.Evictions++
	}
}

// updateHitRate calculates the cache hit rate (must be called with lock held)
func (c *TTLCache) updateHitRate() {
	total := c.stats.Hits + c.stats.Misses
	if total > 0 {
		c.stats.HitRate = float64(c.stats.Hits) / float64(total)
	}
}
