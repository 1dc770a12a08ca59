package seller

import "sync"

// Cache maps product ids to resolved seller ids. Entries live until Clear.
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]int64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[int64]int64)}
}

func (c *Cache) Get(productID int64) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sellerID, ok := c.entries[productID]
	return sellerID, ok
}

func (c *Cache) Set(productID, sellerID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[productID] = sellerID
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}
