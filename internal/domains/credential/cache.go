package credential

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Cache holds decrypted key maps per workspace for a short TTL so bursty
// use does not redo the decrypt work on every call. It is shared
// process-wide but partitioned by workspace id - no cross-workspace read is
// possible. Set/Delete/Invalidate on the vault must evict synchronously
// before returning, which gives read-after-write consistency on this cache
// (not on the underlying store).
type Cache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	keys      map[Provider]string
	expiresAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[uuid.UUID]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached key map, or false when absent/expired.
func (c *Cache) Get(workspaceID uuid.UUID) (map[Provider]string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[workspaceID]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}

	keys := make(map[Provider]string, len(entry.keys))
	for p, k := range entry.keys {
		keys[p] = k
	}
	return keys, true
}

// Put stores a copy of the key map under the workspace's TTL.
func (c *Cache) Put(workspaceID uuid.UUID, keys map[Provider]string) {
	copied := make(map[Provider]string, len(keys))
	for p, k := range keys {
		copied[p] = k
	}

	c.mu.Lock()
	c.entries[workspaceID] = cacheEntry{
		keys:      copied,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Evict drops one workspace's entry.
func (c *Cache) Evict(workspaceID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, workspaceID)
	c.mu.Unlock()
}

// Flush drops everything. Reset hook for tests.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]cacheEntry)
	c.mu.Unlock()
}
