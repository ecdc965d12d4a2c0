package layout

import (
	"hash/fnv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of layouts kept when no size is given.
const DefaultCacheSize = 4096

// cacheKey identifies a layout by line content and engine configuration,
// so entries stay valid when lines move or the engine is replaced.
type cacheKey struct {
	lineHash   uint64
	length     int
	tabWidth   int
	wrapWidth  int
	wrapAtWord bool
}

// Cache memoizes line layouts with LRU eviction. It is safe for concurrent
// use.
type Cache struct {
	engine  atomic.Pointer[Engine]
	entries *lru.Cache[cacheKey, LineLayout]
	size    int
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewCache creates a cache for layouts produced by engine.
// A size of 0 or less selects DefaultCacheSize.
func NewCache(engine *Engine, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, LineLayout](size)
	if err != nil {
		return nil, err
	}
	c := &Cache{entries: entries, size: size}
	c.engine.Store(engine)
	return c, nil
}

// Get returns the layout of text, computing it on a miss.
func (c *Cache) Get(text string) LineLayout {
	engine := c.engine.Load()
	key := keyFor(engine, text)

	if layout, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return layout
	}
	c.misses.Add(1)

	layout := engine.Layout(text)
	c.entries.Add(key, layout)
	return layout
}

// RowCount returns the number of visual rows text occupies.
func (c *Cache) RowCount(text string) int {
	return c.Get(text).RowCount
}

// Engine returns the layout engine used by this cache.
func (c *Cache) Engine() *Engine {
	return c.engine.Load()
}

// SetEngine replaces the layout engine. Entries computed by the previous
// engine are dropped.
func (c *Cache) SetEngine(engine *Engine) {
	c.engine.Store(engine)
	c.entries.Purge()
}

// Purge removes every cached layout.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached layouts.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Size    int     // Current number of entries
	MaxSize int     // Maximum entries allowed
	Hits    uint64  // Number of cache hits
	Misses  uint64  // Number of cache misses
	HitRate float64 // Hit rate (0.0 - 1.0)
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{
		Size:    c.entries.Len(),
		MaxSize: c.size,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}

// ResetStats resets the hit and miss counters.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
}

func keyFor(engine *Engine, text string) cacheKey {
	h := fnv.New64a()
	h.Write([]byte(text))
	return cacheKey{
		lineHash:   h.Sum64(),
		length:     len(text),
		tabWidth:   engine.TabWidth(),
		wrapWidth:  engine.WrapWidth(),
		wrapAtWord: engine.WrapAtWord(),
	}
}
