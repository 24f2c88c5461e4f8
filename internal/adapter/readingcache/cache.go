// Package readingcache memoizes environmental reading lookups.
package readingcache

import (
	"container/list"
	"context"
	"sync"

	"github.com/couchcryptid/surf-prediction-service/internal/domain"
	"github.com/couchcryptid/surf-prediction-service/internal/observability"
)

// Source looks up the reading recorded for a break at a date and slot.
type Source interface {
	GetReading(ctx context.Context, breakID, date string, slot domain.TimeSlot) (*domain.EnvironmentalReading, error)
}

// Cached wraps a Source with an in-memory LRU cache. Only present readings
// are cached: an absent key may still be filled by ingestion, while a stored
// reading never changes.
type Cached struct {
	inner   Source
	cache   *lruCache
	metrics *observability.Metrics
}

// New creates a cache decorator around a reading source.
func New(inner Source, maxEntries int, metrics *observability.Metrics) *Cached {
	return &Cached{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

type key struct {
	breakID string
	date    string
	slot    domain.TimeSlot
}

func (c *Cached) GetReading(ctx context.Context, breakID, date string, slot domain.TimeSlot) (*domain.EnvironmentalReading, error) {
	k := key{breakID: breakID, date: date, slot: slot}
	if r, ok := c.cache.get(k); ok {
		c.metrics.ReadingCache.WithLabelValues("hit").Inc()
		r = r.Clone()
		return &r, nil
	}
	c.metrics.ReadingCache.WithLabelValues("miss").Inc()

	r, err := c.inner.GetReading(ctx, breakID, date, slot)
	if err != nil || r == nil {
		return r, err
	}
	c.cache.put(k, r.Clone())
	return r, nil
}

// lruCache is a thread-safe LRU of readings. The front of order is the most
// recently used entry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List
	entries    map[key]*list.Element
}

type entry struct {
	key   key
	value domain.EnvironmentalReading
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[key]*list.Element),
	}
}

func (c *lruCache) get(k key) (domain.EnvironmentalReading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[k]
	if !ok {
		return domain.EnvironmentalReading{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *lruCache) put(k key, v domain.EnvironmentalReading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[k]; ok {
		el.Value.(*entry).value = v
		c.order.MoveToFront(el)
		return
	}

	c.entries[k] = c.order.PushFront(&entry{key: k, value: v})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}
