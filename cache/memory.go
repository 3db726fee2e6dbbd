package cache

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry holds a cached value with its timestamp.
type cacheEntry struct {
	key       string
	value     string
	timestamp time.Time
}

// InMemoryCache is a thread-safe, size-bounded LRU cache with optional TTL.
type InMemoryCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // front is most recently used
	capacity int
	ttl      time.Duration
}

// NewInMemoryCache creates a cache holding at most capacity entries.
// If capacity is 0 or negative the cache is unbounded. If ttlSeconds is 0
// or negative, entries never expire.
func NewInMemoryCache(capacity, ttlSeconds int) *InMemoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0 // No expiration
	}
	return &InMemoryCache{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Get retrieves a value from the cache and marks it recently used.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key, time.Now())
}

// GetMany looks up keys under a single lock acquisition.
func (c *InMemoryCache) GetMany(keys []string) ([]string, []bool) {
	values := make([]string, len(keys))
	found := make([]bool, len(keys))

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for i, key := range keys {
		values[i], found[i] = c.getLocked(key, now)
	}
	return values, found
}

func (c *InMemoryCache) getLocked(key string, now time.Time) (string, bool) {
	elem, ok := c.items[key]
	if !ok {
		return "", false
	}

	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && now.Sub(entry.timestamp) > c.ttl {
		c.order.Remove(elem)
		delete(c.items, key)
		return "", false
	}

	c.order.MoveToFront(elem)
	return entry.value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *InMemoryCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.timestamp = time.Now()
		c.order.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.order.PushFront(&cacheEntry{
		key:       key,
		value:     value,
		timestamp: time.Now(),
	})

	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
	return nil
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the maximum number of entries, 0 meaning unbounded.
func (c *InMemoryCache) Capacity() int {
	return c.capacity
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

var (
	_ TranslationCache = (*InMemoryCache)(nil)
	_ BatchGetter      = (*InMemoryCache)(nil)
)
