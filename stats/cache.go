/*
cache.go - Bounded report cache

PURPOSE:
  Stats reports are recomputed from the full ledger, so the engine keeps a
  small LRU of recent (owner, year) reports. The cache is an explicit
  object owned by the engine, with an explicit eviction policy, never
  module-level state.
*/
package stats

import (
	"container/list"
	"sync"
)

// cacheSize bounds the number of cached reports.
const cacheSize = 5

type cacheKey struct {
	Owner string
	Year  int
}

type cacheEntry struct {
	key    cacheKey
	report Report
}

// reportCache is a fixed-size LRU of computed reports.
type reportCache struct {
	mu    sync.Mutex
	order *list.List // front = most recent
	items map[cacheKey]*list.Element
}

func newReportCache() *reportCache {
	return &reportCache{
		order: list.New(),
		items: make(map[cacheKey]*list.Element, cacheSize),
	}
}

func (c *reportCache) get(key cacheKey) (Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return Report{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).report, true
}

func (c *reportCache) put(key cacheKey, report Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).report = report
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, report: report})
	if c.order.Len() > cacheSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// invalidate drops every cached report for an owner. Called after any
// ledger, type, or quota mutation.
func (c *reportCache) invalidate(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		entry := el.Value.(*cacheEntry)
		if entry.key.Owner == owner {
			c.order.Remove(el)
			delete(c.items, entry.key)
		}
		el = next
	}
}
