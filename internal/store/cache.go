package store

import lru "github.com/hashicorp/golang-lru/v2"

// Cache provides in-memory caching for objects.
type Cache interface {
	Get(key string) ([]byte, bool)
	Add(key string, value []byte)
	Has(key string) bool
	Remove(key string)
	Clear()
}

// LRUCache is a fixed-size least-recently-used cache.
type LRUCache struct {
	items *lru.Cache[string, []byte]
}

// NewLRUCache creates a new LRU cache. Sizes below one are raised to one.
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize < 1 {
		maxSize = 1
	}
	items, _ := lru.New[string, []byte](maxSize) // only fails on size <= 0
	return &LRUCache{items: items}
}

func (c *LRUCache) Get(key string) ([]byte, bool) { return c.items.Get(key) }
func (c *LRUCache) Add(key string, value []byte)  { c.items.Add(key, value) }
func (c *LRUCache) Has(key string) bool           { return c.items.Contains(key) }
func (c *LRUCache) Remove(key string)             { c.items.Remove(key) }
func (c *LRUCache) Clear()                        { c.items.Purge() }
