package deck

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Akashdeep-Patra/zed-page-view/internal/ui/views"
)

// Cache is a TTL cache of file bodies and rendered pages, shared by the
// pages on the update loop and the prefetch loader's goroutines. Keys carry
// the file's modification time, so an edited file never hits a stale entry.
//
// The cache is bounded by maxCacheEntries to prevent unbounded memory
// growth across long-running sessions.
type Cache struct {
	ttl time.Duration

	mu     sync.Mutex
	cache  map[string]cacheEntry
	hits   int
	misses int
}

// maxCacheEntries caps the number of entries in the cache. When exceeded,
// expired entries are evicted, and if that is not enough the whole cache is
// flushed.
const maxCacheEntries = 64

// DefaultCacheTTL is how long a body or rendering stays cached.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	val    string
	err    error
	expiry time.Time
}

// NewCache creates an empty cache.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:   ttl,
		cache: make(map[string]cacheEntry, 16),
	}
}

// Flush clears all cached entries. Called on memory warnings.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.cache = make(map[string]cacheEntry, 16)
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Stats reports cache hits and misses since creation.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *Cache) get(key string) (val string, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.cache[key]
	if !found || time.Now().After(e.expiry) {
		c.misses++
		return "", false, nil
	}
	c.hits++
	return e.val, true, e.err
}

func (c *Cache) set(key, val string, err error) {
	c.mu.Lock()
	if len(c.cache) >= maxCacheEntries {
		now := time.Now()
		for k, e := range c.cache {
			if now.After(e.expiry) {
				delete(c.cache, k)
			}
		}
		if len(c.cache) >= maxCacheEntries {
			c.cache = make(map[string]cacheEntry, 16)
		}
	}
	c.cache[key] = cacheEntry{val: val, err: err, expiry: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func version(path string, mod time.Time) string {
	return path + "@" + strconv.FormatInt(mod.UnixNano(), 10)
}

// Body returns the contents of e's file (cached).
func (c *Cache) Body(e Entry) (string, error) {
	key := "body:" + version(e.Path, e.ModTime)
	if v, ok, err := c.get(key); ok {
		return v, err
	}
	data, err := os.ReadFile(e.Path)
	if err != nil {
		err = fmt.Errorf("deck: read %s: %w", e.Name, err)
	}
	c.set(key, string(data), err)
	return string(data), err
}

// Renderer wraps r so renderings are cached per document version and width.
// tag separates renderers whose output differs for the same document.
func (c *Cache) Renderer(tag string, r views.Renderer) views.Renderer {
	return &cachedRenderer{inner: r, cache: c, tag: tag}
}

type cachedRenderer struct {
	inner views.Renderer
	cache *Cache
	tag   string
}

var _ views.Renderer = (*cachedRenderer)(nil)

func (r *cachedRenderer) Render(doc views.Document, width int) (string, error) {
	if doc.Path == "" {
		return r.inner.Render(doc, width)
	}
	key := "render:" + r.tag + ":" + version(doc.Path, doc.ModTime) + "#" + strconv.Itoa(width)
	if v, ok, err := r.cache.get(key); ok {
		return v, err
	}
	v, err := r.inner.Render(doc, width)
	r.cache.set(key, v, err)
	return v, err
}
