package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
)

// MemoryCache is an in-process cache with TTL and insertion-order eviction.
type MemoryCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time

	items map[string]*list.Element
	order *list.List // front = oldest insert
}

type memoryItem struct {
	key   string
	entry Entry
}

func NewMemoryCache(ttl time.Duration, capacity int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryCache{
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// WithClock swaps the time source, used by tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

// Get returns a copy of the cached response. Expired entries are removed on read.
func (c *MemoryCache) Get(_ context.Context, key string) (*llm.AIResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}

	item := el.Value.(*memoryItem)
	if c.now().Sub(item.entry.CreatedAt) >= c.ttl {
		c.order.Remove(el)
		delete(c.items, key)
		return nil, false
	}

	resp := item.entry.Response
	return &resp, true
}

// Set stores resp. Re-setting a key counts as a fresh insert.
func (c *MemoryCache) Set(_ context.Context, key string, resp *llm.AIResponse) error {
	if resp == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}

	item := &memoryItem{key: key, entry: Entry{Response: *resp, CreatedAt: c.now()}}
	c.items[key] = c.order.PushBack(item)

	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*memoryItem).key)
	}
	return nil
}

func (c *MemoryCache) Len(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
