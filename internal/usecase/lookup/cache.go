package lookup

import (
	"sync"
	"time"

	"github.com/shelfscan/prodex/internal/domain"
)

type cacheEntry struct {
	product   domain.Product
	expiresAt time.Time
}

// Cache is an in-process TTL cache for barcode lookups. Expired entries
// are evicted lazily, when the key is next accessed or counted; there is
// no background sweeper.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache creates a cache whose entries live for ttl after insertion.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Outcome classifies a cache lookup.
type Outcome string

const (
	// Hit is a live entry.
	Hit Outcome = "hit"
	// Miss is an absent entry.
	Miss Outcome = "miss"
	// Stale is an entry found past its TTL; it is evicted on read.
	Stale Outcome = "stale"
)

// Get returns the cached product for a normalized barcode. An expired
// entry is removed and reported as stale; only Hit carries a product.
func (c *Cache) Get(barcode string) (domain.Product, Outcome) {
	c.mu.RLock()
	entry, ok := c.entries[barcode]
	c.mu.RUnlock()
	if !ok {
		return domain.Product{}, Miss
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, ok := c.entries[barcode]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, barcode)
		}
		c.mu.Unlock()
		return domain.Product{}, Stale
	}

	return entry.product, Hit
}

// Set stores a product under its normalized barcode, resetting the TTL.
func (c *Cache) Set(barcode string, p domain.Product) {
	c.mu.Lock()
	c.entries[barcode] = cacheEntry{product: p, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len sweeps expired entries and returns the live entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
