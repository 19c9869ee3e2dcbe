package preview

import (
	"container/list"
	"sync"
)

// DefaultCapacity is the number of previews kept before the oldest is dropped.
const DefaultCapacity = 10

type cacheItem struct {
	key   string
	entry *Entry
}

// Cache holds decoded previews up to a fixed capacity. Once full, adding an
// entry evicts the one inserted longest ago; reading an entry does not renew it.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

// NewCache returns an empty cache. A capacity below one falls back to
// DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (c *Cache) Get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*cacheItem).entry, true
}

// Put stores entry under key. Replacing an existing key keeps its original
// insertion position.
func (c *Cache) Put(key string, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheItem).entry = entry
		return
	}
	c.items[key] = c.order.PushBack(&cacheItem{key: key, entry: entry})

	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem).key)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) Capacity() int {
	return c.capacity
}
