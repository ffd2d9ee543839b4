package cache

import "container/list"

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// lru is the recency index behind Bucket. It is not safe for concurrent use;
// Bucket serializes every call with its own mutex.
// A capacity <= 0 disables eviction.
type lru[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	eviction *list.List
}

func newLRU[K comparable, V any](capacity int) *lru[K, V] {
	return &lru[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		eviction: list.New(),
	}
}

// get returns the value and marks it as recently used.
func (c *lru[K, V]) get(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		return elem.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// peek returns the value without touching recency.
func (c *lru[K, V]) peek(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		return elem.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// put adds or replaces a value. It reports whether the least recently used
// item had to be evicted to stay within capacity.
func (c *lru[K, V]) put(key K, value V) (evicted bool) {
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		elem.Value.(*lruEntry[K, V]).value = value
		return false
	}

	elem := c.eviction.PushFront(&lruEntry[K, V]{key: key, value: value})
	c.items[key] = elem

	if c.capacity > 0 && c.eviction.Len() > c.capacity {
		if oldest := c.eviction.Back(); oldest != nil {
			c.removeElement(oldest)
			return true
		}
	}
	return false
}

// replace swaps the value in place without touching recency.
func (c *lru[K, V]) replace(key K, value V) bool {
	if elem, ok := c.items[key]; ok {
		elem.Value.(*lruEntry[K, V]).value = value
		return true
	}
	return false
}

func (c *lru[K, V]) remove(key K) bool {
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
		return true
	}
	return false
}

// keys returns keys from least to most recently used.
func (c *lru[K, V]) keys() []K {
	out := make([]K, 0, c.eviction.Len())
	for elem := c.eviction.Back(); elem != nil; elem = elem.Prev() {
		out = append(out, elem.Value.(*lruEntry[K, V]).key)
	}
	return out
}

func (c *lru[K, V]) len() int {
	return c.eviction.Len()
}

func (c *lru[K, V]) clear() {
	c.items = make(map[K]*list.Element)
	c.eviction.Init()
}

func (c *lru[K, V]) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*lruEntry[K, V]).key)
}
