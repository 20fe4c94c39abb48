package cache

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"time"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 1000
	// SweepInterval is how often the background job should call Cleanup.
	SweepInterval = 10 * time.Minute
)

// Cache is an in-process TTL map with a soft size cap. It is advisory only:
// a miss must always fall through to the authoritative read path.
type Cache struct {
	mu         sync.Mutex
	items      map[string]cacheItem
	defaultTTL time.Duration
	maxSize    int
	now        func() time.Time
	logger     *slog.Logger
}

// cacheItem holds a value and its creation and expiration times.
type cacheItem struct {
	Value     interface{}
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Size    int `json:"size"`
	MaxSize int `json:"maxSize"`
	Expired int `json:"expired"`
	Active  int `json:"active"`
}

type Option func(*Cache)

func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.defaultTTL = ttl }
}

func WithMaxSize(n int) Option {
	return func(c *Cache) { c.maxSize = n }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// NewCache creates a new Cache instance.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		items:      make(map[string]cacheItem),
		defaultTTL: DefaultTTL,
		maxSize:    DefaultMaxSize,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Set stores value under key for ttl (DefaultTTL when ttl <= 0).
// When the cache is at capacity, Cleanup runs first.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) >= c.maxSize {
		c.cleanupLocked()
	}
	now := c.now()
	c.items[key] = cacheItem{Value: value, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	c.logger.Debug("cache set", "key", key, "ttl", ttl, "size", len(c.items))
}

// Get retrieves a value for a key. Returns (value, true) if found and not expired, (nil, false) otherwise.
// Expired entries are removed on read.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.now().After(item.ExpiresAt) {
		delete(c.items, key)
		c.logger.Debug("cache expired", "key", key)
		return nil, false
	}
	return item.Value, true
}

// Remember returns the cached value for key, or calls load and caches its result.
// Errors from load are returned and nothing is cached.
func (c *Cache) Remember(key string, ttl time.Duration, load func() (interface{}, error)) (interface{}, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// Delete removes a key from the cache and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	delete(c.items, key)
	return ok
}

// DeletePattern removes every key matching the regular expression and returns how many were removed.
func (c *Cache) DeletePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("cache pattern %q: %w", pattern, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for key := range c.items {
		if re.MatchString(key) {
			delete(c.items, key)
			count++
		}
	}
	c.logger.Debug("cache pattern deleted", "pattern", pattern, "count", count)
	return count, nil
}

// Cleanup removes expired entries; if the cache is still at or above capacity it then
// drops the oldest 10% by creation time. Returns the number of entries removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleanupLocked()
}

func (c *Cache) cleanupLocked() int {
	now := c.now()
	cleaned := 0
	for key, item := range c.items {
		if now.After(item.ExpiresAt) {
			delete(c.items, key)
			cleaned++
		}
	}

	if len(c.items) >= c.maxSize {
		type aged struct {
			key     string
			created time.Time
		}
		entries := make([]aged, 0, len(c.items))
		for key, item := range c.items {
			entries = append(entries, aged{key, item.CreatedAt})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].created.Before(entries[j].created) })
		n := c.maxSize / 10
		if n == 0 {
			n = 1
		}
		if n > len(entries) {
			n = len(entries)
		}
		for _, e := range entries[:n] {
			delete(c.items, e.key)
			cleaned++
		}
	}

	if cleaned > 0 {
		c.logger.Debug("cache cleanup completed", "cleaned", cleaned, "remaining", len(c.items))
	}
	return cleaned
}

// Stats reports size, capacity and how many entries are expired but not yet swept.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	expired := 0
	for _, item := range c.items {
		if now.After(item.ExpiresAt) {
			expired++
		}
	}
	return Stats{
		Size:    len(c.items),
		MaxSize: c.maxSize,
		Expired: expired,
		Active:  len(c.items) - expired,
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	size := len(c.items)
	c.items = make(map[string]cacheItem)
	c.mu.Unlock()
	c.logger.Info("cache cleared", "previousSize", size)
}
