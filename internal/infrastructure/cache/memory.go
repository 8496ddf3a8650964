package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

const defaultCleanupInterval = 10 * time.Minute

// cacheItem represents a single item in the cache with expiration
type cacheItem[V any] struct {
	Value      V
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support
type MemoryCache[V any] struct {
	data  map[string]cacheItem[V]
	mutex sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once

	// now returns the current time, injectable for testing
	now func() time.Time
}

// NewMemoryCache creates a new in-memory cache that sweeps expired entries every 10 minutes
func NewMemoryCache[V any]() *MemoryCache[V] {
	return NewMemoryCacheWithCleanup[V](defaultCleanupInterval)
}

// NewMemoryCacheWithCleanup creates a cache with a custom sweep interval
func NewMemoryCacheWithCleanup[V any](interval time.Duration) *MemoryCache[V] {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	cache := &MemoryCache[V]{
		data: make(map[string]cacheItem[V]),
		stop: make(chan struct{}),
		now:  time.Now,
	}

	go cache.cleanupExpired(interval)

	return cache
}

// Get retrieves a value from the cache
func (c *MemoryCache[V]) Get(ctx context.Context, key string) (V, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var zero V
	item, exists := c.data[key]
	if !exists || c.now().After(item.Expiration) {
		return zero, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache with TTL
func (c *MemoryCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem[V]{
		Value:      value,
		Expiration: c.now().Add(ttl),
	}

	return nil
}

// GetOrCreate returns the live value for key, creating it when absent or
// expired. Each access extends the entry's lifetime by ttl.
func (c *MemoryCache[V]) GetOrCreate(key string, create func() V, ttl time.Duration) V {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	item, exists := c.data[key]
	if !exists || now.After(item.Expiration) {
		item.Value = create()
	}
	item.Expiration = now.Add(ttl)
	c.data[key] = item

	return item.Value
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache[V]) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *MemoryCache[V]) removeExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for key, item := range c.data {
		if now.After(item.Expiration) {
			delete(c.data, key)
		}
	}
}

// Close stops the background sweep
func (c *MemoryCache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache[V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}
