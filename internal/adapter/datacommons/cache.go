package datacommons

import (
	"context"
	"sync"

	"climate-migration-pipeline/internal/observability"
)

// CachedProvider wraps a SeriesProvider with an LRU cache. Crime and hazard
// downloads request the same state series once per year, so caching turns
// fourteen round trips per state into one.
type CachedProvider struct {
	inner   SeriesProvider
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedProvider creates a caching provider holding up to maxEntries
// series.
func NewCachedProvider(inner SeriesProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: &lruCache{
			maxEntries: maxEntries,
			entries:    make(map[string]*entry),
		},
		metrics: metrics,
	}
}

// StatSeries returns a cached series when available, fetching and caching it
// otherwise.
func (c *CachedProvider) StatSeries(ctx context.Context, geoID, statVar string) (map[string]float64, error) {
	key := geoID + "|" + statVar
	if series, ok := c.cache.get(key); ok {
		c.metrics.DataCommonsCache.WithLabelValues("hit").Inc()
		return series, nil
	}
	c.metrics.DataCommonsCache.WithLabelValues("miss").Inc()

	series, err := c.inner.StatSeries(ctx, geoID, statVar)
	if err != nil {
		return nil, err
	}
	// Don't cache empty series: the variable may simply not be live yet for
	// the place, and a retry on the next run should reach the API again.
	if len(series) > 0 {
		c.cache.put(key, series)
	}
	return series, nil
}

type lruCache struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*entry
	head       *entry
	tail       *entry
}

type entry struct {
	key   string
	value map[string]float64
	prev  *entry
	next  *entry
}

func (c *lruCache) get(key string) (map[string]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if c.head == e {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	evicted := c.tail
	c.remove(evicted)
	delete(c.entries, evicted.key)
}
