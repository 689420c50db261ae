// ABOUTME: In-memory TTL cache for discovered machine-set inventories
// ABOUTME: Thread-safe; entries expire after a per-set TTL

package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ronenav/sizer/models"
)

type entry struct {
	machineSets []models.MachineSet
	expiresAt   time.Time
}

// Cache stores machine-set inventories keyed by source (e.g. "vsphere").
type Cache struct {
	mu    sync.RWMutex
	store map[string]entry
	ttl   time.Duration
}

// New creates a cache with the given default TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{
		store: make(map[string]entry),
		ttl:   ttl,
	}
}

// Get returns the cached inventory for a key if it has not expired.
func (c *Cache) Get(key string) ([]models.MachineSet, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}
	slog.Debug("Cache hit", "key", key)
	return e.machineSets, true
}

// Set stores an inventory with the default TTL.
func (c *Cache) Set(key string, machineSets []models.MachineSet) {
	c.SetWithTTL(key, machineSets, c.ttl)
}

// SetWithTTL stores an inventory with a custom TTL.
func (c *Cache) SetWithTTL(key string, machineSets []models.MachineSet, ttl time.Duration) {
	c.mu.Lock()
	c.store[key] = entry{
		machineSets: machineSets,
		expiresAt:   time.Now().Add(ttl),
	}
	c.mu.Unlock()
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

// Clear removes a key.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}
