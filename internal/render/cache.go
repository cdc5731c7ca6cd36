package render

import (
	"context"
	"math"
)

// DefaultCacheScales is how many distinct render scales the cache retains.
// A reader typically toggles between fit-to-width and one or two zoom
// levels, so three entries cover the common case without hoarding strips
// that can each run to hundreds of megabytes.
const DefaultCacheScales = 3

// Cache wraps a Rasterizer and memoizes results by render scale.
//
// Scales are keyed rounded to four decimals: scales closer than that render
// indistinguishably, and exact float keys would make fit-to-width recomputes
// near-guaranteed misses.
type Cache struct {
	inner    Rasterizer
	capacity int

	// keys holds cache keys oldest-first; entries maps them to results.
	keys    []int64
	entries map[int64]*Result
}

// NewCache wraps the given rasterizer with a cache of the given capacity.
// Capacity below 1 falls back to DefaultCacheScales.
func NewCache(inner Rasterizer, capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCacheScales
	}
	return &Cache{
		inner:    inner,
		capacity: capacity,
		entries:  make(map[int64]*Result),
	}
}

// Render returns the cached strip for the scale, rasterizing on miss and
// evicting the oldest entry when full.
func (c *Cache) Render(ctx context.Context, scale float64) (*Result, error) {
	key := scaleKey(scale)
	if res, ok := c.entries[key]; ok {
		c.touch(key)
		return res, nil
	}

	res, err := c.inner.Render(ctx, scale)
	if err != nil {
		return nil, err
	}

	if len(c.keys) >= c.capacity {
		oldest := c.keys[0]
		c.keys = c.keys[1:]
		delete(c.entries, oldest)
	}
	c.keys = append(c.keys, key)
	c.entries[key] = res
	return res, nil
}

// Len returns the number of cached scales.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Contains reports whether a scale is cached, for tests and diagnostics.
func (c *Cache) Contains(scale float64) bool {
	_, ok := c.entries[scaleKey(scale)]
	return ok
}

// touch moves key to the most-recent end.
func (c *Cache) touch(key int64) {
	for i, k := range c.keys {
		if k == key {
			c.keys = append(append(c.keys[:i], c.keys[i+1:]...), key)
			return
		}
	}
}

// scaleKey rounds a scale to four decimals for use as a cache key.
func scaleKey(scale float64) int64 {
	return int64(math.Round(scale * 10000))
}
