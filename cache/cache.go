// Package cache keeps recently captured site models in memory so repeat
// requests with a max_age can skip the browser.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/use-agent/sitemodel/models"
)

// entry holds a cached model with its creation timestamp.
type entry struct {
	site      *models.SiteModel
	createdAt time.Time
}

// Cache is a simple in-memory cache for site models.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Cache holding at most maxEntries models. A background
// goroutine sweeps entries older than ttl every ttl/12, but at most once a
// second, until Close.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// Key derives a cache key from the URL and every option that changes what
// the capture produces.
func Key(url string, opts models.SessionOptions) string {
	h := sha256.New()
	h.Write([]byte(url))
	for _, b := range []bool{opts.Stealth, opts.BlockAds, opts.RemoveOverlays} {
		h.Write([]byte("|"))
		h.Write([]byte(strconv.FormatBool(b)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached model younger than maxAgeMs milliseconds.
// If maxAgeMs <= 0, no cache lookup is performed.
func (c *Cache) Get(key string, maxAgeMs int64) (*models.SiteModel, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	maxAge := time.Duration(maxAgeMs) * time.Millisecond
	if c.now().Sub(e.createdAt) > maxAge {
		return nil, false
	}

	return e.site, true
}

// Set stores a model. If the cache is at capacity the oldest entry is
// evicted to make room.
func (c *Cache) Set(key string, site *models.SiteModel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		var (
			oldestKey string
			oldest    time.Time
		)
		for k, e := range c.store {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey, oldest = k, e.createdAt
			}
		}
		delete(c.store, oldestKey)
	}

	c.store[key] = &entry{
		site:      site,
		createdAt: c.now(),
	}
}

// Len reports the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the sweeper.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(sweepInterval(c.ttl))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

// sweepInterval is ttl/12 with a one second floor. NewTicker panics on a
// non-positive interval.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/12, time.Second)
}

// sweep drops entries older than the TTL.
func (c *Cache) sweep() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}
