package cache

import (
	"sync"
)

// node is an entry in the doubly linked recency list
type node[V any] struct {
	key   string
	value V
	prev  *node[V]
	next  *node[V]
}

// LRUCache is a thread-safe LRU cache
type LRUCache[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*node[V]
	head     *node[V] // most recently used
	tail     *node[V] // least recently used
}

// NewLRUCache creates an LRU cache with given capacity
func NewLRUCache[V any](capacity int) *LRUCache[V] {
	if capacity <= 0 {
		capacity = 1000 // default
	}

	c := &LRUCache[V]{
		capacity: capacity,
		items:    make(map[string]*node[V], capacity),
	}

	// dummy head and tail
	c.head = &node[V]{}
	c.tail = &node[V]{}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get retrieves value and marks as recently used
func (c *LRUCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, exists := c.items[key]
	if !exists {
		var zero V
		return zero, false
	}

	c.moveToFront(n)
	return n.value, true
}

// Put adds or updates a key-value pair
func (c *LRUCache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, exists := c.items[key]; exists {
		n.value = value
		c.moveToFront(n)
		return
	}
	if len(c.items) >= c.capacity {
		c.evictTail()
	}
	n := &node[V]{key: key, value: value}
	c.addToFront(n)
	c.items[key] = n
}

func (c *LRUCache[V]) moveToFront(n *node[V]) {
	c.removeNode(n)
	c.addToFront(n)
}

// removeNode unlinks a node from the list (doesn't delete from map)
func (c *LRUCache[V]) removeNode(n *node[V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

// addToFront adds a node right after the dummy head
func (c *LRUCache[V]) addToFront(n *node[V]) {
	first := c.head.next

	n.next = first
	n.prev = c.head

	c.head.next = n
	first.prev = n
}

// evictTail removes the least recently used item
func (c *LRUCache[V]) evictTail() {
	lru := c.tail.prev
	if lru == c.head {
		return
	}
	c.removeNode(lru)
	delete(c.items, lru.key)
}

// Delete removes key, reporting whether it was present.
func (c *LRUCache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, exists := c.items[key]
	if !exists {
		return false
	}

	c.removeNode(n)
	delete(c.items, key)
	return true
}

func (c *LRUCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
