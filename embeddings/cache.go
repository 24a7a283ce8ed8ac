package embeddings

import (
	"container/list"
	"sync"
)

// cache is a fixed-capacity LRU of vectors keyed by a content hash.
type cache struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List
	items map[uint64]*list.Element
}

type cacheEntry struct {
	key uint64
	vec []float32
}

func newCache(capacity int) *cache {
	if capacity <= 0 {
		return nil
	}
	return &cache{
		cap:   capacity,
		ll:    list.New(),
		items: make(map[uint64]*list.Element, capacity),
	}
}

func (c *cache) get(key uint64) ([]float32, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return cloneVec(el.Value.(*cacheEntry).vec), true
	}
	return nil, false
}

func (c *cache) add(key uint64, vec []float32) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).vec = cloneVec(vec)
		c.ll.MoveToFront(el)
		return
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, vec: cloneVec(vec)})
	if c.ll.Len() > c.cap {
		if back := c.ll.Back(); back != nil {
			c.ll.Remove(back)
			delete(c.items, back.Value.(*cacheEntry).key)
		}
	}
}

func (c *cache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func cloneVec(vec []float32) []float32 {
	if len(vec) == 0 {
		return nil
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
