package openmeteo

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/couchcryptid/wetland-risk-monitor/internal/domain"
	"github.com/couchcryptid/wetland-risk-monitor/internal/observability"
	"golang.org/x/sync/singleflight"
)

// CachedFetcher wraps a WeatherFetcher with an in-memory LRU cache keyed by
// the exact coordinate pair. Only successful snapshots are stored, so a failed
// fetch is retried on the next call. Concurrent misses for the same key share
// one upstream request.
type CachedFetcher struct {
	inner   domain.WeatherFetcher
	cache   *lruCache
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner domain.WeatherFetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Fetch returns the cached snapshot for (lat, lon) or fetches and stores it.
func (c *CachedFetcher) Fetch(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	key := cacheKey(lat, lon)
	if snap, ok := c.cache.get(key); ok {
		c.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return snap, nil
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	return c.load(ctx, key, lat, lon, true)
}

// Refresh bypasses the cache, fetches a new snapshot, and replaces the entry
// on success. On failure the previous entry stays in place.
func (c *CachedFetcher) Refresh(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	return c.load(ctx, cacheKey(lat, lon), lat, lon, false)
}

// Len reports the number of cached snapshots.
func (c *CachedFetcher) Len() int {
	return c.cache.size()
}

// load runs at most one upstream fetch per key. The shared fetch is detached
// from any single caller's cancellation and bounded by the inner client's
// timeout; each caller stops waiting when its own ctx is done.
func (c *CachedFetcher) load(ctx context.Context, key string, lat, lon float64, useCache bool) (domain.WeatherSnapshot, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		if useCache {
			// Another caller may have filled the entry while we waited.
			if snap, ok := c.cache.get(key); ok {
				return snap, nil
			}
		}
		snap, err := c.inner.Fetch(context.WithoutCancel(ctx), lat, lon)
		if err != nil {
			return nil, err
		}
		c.cache.put(key, snap)
		c.metrics.CachedSnapshots.Set(float64(c.cache.size()))
		return snap, nil
	})

	select {
	case <-ctx.Done():
		kind := domain.FetchNetwork
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = domain.FetchTimeout
		}
		return domain.WeatherSnapshot{}, &domain.FetchError{Kind: kind, Lat: lat, Lon: lon, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return domain.WeatherSnapshot{}, res.Err
		}
		return res.Val.(domain.WeatherSnapshot), nil
	}
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}

// lruCache is a bounded, mutex-guarded LRU of weather snapshots. Values are
// stored and returned by copy, so readers never see a partially written entry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List // front is most recently used
	entries    map[string]*list.Element
}

type cacheEntry struct {
	key  string
	snap domain.WeatherSnapshot
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (domain.WeatherSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.WeatherSnapshot{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).snap, true
}

func (c *lruCache) put(key string, snap domain.WeatherSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).snap = snap
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, snap: snap})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
