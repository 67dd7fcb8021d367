package utils

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CacheItem wraps cached data with its expiry.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// TTLCache holds entries until their own TTL elapses. It is unbounded: entries leave
// only by expiring, never to make room. A background sweep drops them after maxTTL.
type TTLCache struct {
	lruCache *expirable.LRU[string, CacheItem]
	maxTTL   time.Duration
	now      func() time.Time
}

func NewTTLCache(maxTTL time.Duration) *TTLCache {
	return &TTLCache{
		lruCache: expirable.NewLRU[string, CacheItem](0, nil, maxTTL),
		maxTTL:   maxTTL,
		now:      time.Now,
	}
}

// Set stores data under key until ttl elapses; ttl is capped at maxTTL.
func (c *TTLCache) Set(key string, data interface{}, ttl time.Duration) {
	if ttl > c.maxTTL {
		ttl = c.maxTTL
	}
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: c.now().Add(ttl),
	})
}

// Get returns the cached value, or nil when absent or expired.
func (c *TTLCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}
