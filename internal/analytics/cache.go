package analytics

import (
	"sort"
	"sync"
	"time"
)

// Cache stores computed results under input fingerprints.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(fingerprint string) (any, bool)
	Put(fingerprint string, value any)
	Clear()
	Stats() CacheStats
}

// CacheEntry is one memoized result
type CacheEntry struct {
	Fingerprint string
	Value       any
	CreatedAt   time.Time
}

// CacheStats describes the cache contents for diagnostics
type CacheStats struct {
	Entries      int      `json:"entries"`
	Fingerprints []string `json:"fingerprints"`
}

// MemoryCache is a process-local Cache with no eviction beyond Clear.
// It is expected to hold one entry per distinct (context, params) pair.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]CacheEntry),
		now:     time.Now,
	}
}

// Get returns the value stored under fingerprint
func (c *MemoryCache) Get(fingerprint string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	return entry.Value, true
}

// Put stores value under fingerprint, replacing any previous entry
func (c *MemoryCache) Put(fingerprint string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = CacheEntry{
		Fingerprint: fingerprint,
		Value:       value,
		CreatedAt:   c.now(),
	}
}

// Clear drops every entry
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]CacheEntry)
}

// Entry returns the full entry stored under fingerprint
func (c *MemoryCache) Entry(fingerprint string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[fingerprint]
	return entry, ok
}

// Stats returns the entry count and the sorted fingerprints held
func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fingerprints := make([]string, 0, len(c.entries))
	for fp := range c.entries {
		fingerprints = append(fingerprints, fp)
	}
	sort.Strings(fingerprints)

	return CacheStats{
		Entries:      len(fingerprints),
		Fingerprints: fingerprints,
	}
}
