package places

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"hushmap/app"
)

// TTL is how long a cached place query stays fresh. The feed changes
// slowly and is rate-limit-sensitive, so entries live for a long time and
// expire passively; there is no explicit invalidation.
const TTL = 8 * time.Hour

// Entry is one cached place query result.
type Entry struct {
	Data      []Place   `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Expired reports whether the entry is older than the TTL at the given time.
func (e Entry) Expired(now time.Time) bool {
	return now.Sub(e.Timestamp) > TTL
}

// Store is durable storage for cache entries. Implementations may fail on
// Put; the cache treats writes as best-effort.
type Store interface {
	Get(key string) (Entry, bool)
	Put(key string, e Entry) error
}

// FetchFunc performs one feed query.
type FetchFunc func(ctx context.Context, lat, lon float64, radiusM int) ([]Place, error)

// roundCoord rounds a coordinate to three decimal places (~100m), so GPS
// jitter below that precision hits the same cache entry instead of
// fragmenting the cache with redundant fetches.
func roundCoord(c float64) float64 {
	return math.Round(c*1000) / 1000
}

// Key builds the cache key for a query. Because requests are keyed by
// rounded centre and radius, a response that arrives after the view has
// moved on lands under its own key and is simply never read for the
// current view; no explicit cancellation is needed.
func Key(lat, lon float64, radiusM int) string {
	return fmt.Sprintf("osm_places_%.3f_%.3f_%d", roundCoord(lat), roundCoord(lon), radiusM)
}

// Cache is the TTL-bounded place cache in front of the feed. A hit within
// the TTL makes no network call; a miss or expiry triggers exactly one
// fetch per key even under concurrent callers.
type Cache struct {
	fetch FetchFunc
	store Store
	index *Index

	group singleflight.Group

	mu  sync.RWMutex
	mem map[string]Entry
}

// NewCache returns a cache over the given fetch function and durable store.
// The store may be nil for in-memory-only caching.
func NewCache(fetch FetchFunc, store Store) *Cache {
	return &Cache{
		fetch: fetch,
		store: store,
		index: NewIndex(),
		mem:   map[string]Entry{},
	}
}

// Index returns the spatial index over every place this cache has seen.
func (c *Cache) Index() *Index {
	return c.index
}

// Fetch returns the places within radiusM metres of lat/lon, from cache
// when fresh, from the feed otherwise.
func (c *Cache) Fetch(ctx context.Context, lat, lon float64, radiusM int) ([]Place, error) {
	key := Key(lat, lon, radiusM)
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.mem[key]
	c.mu.RUnlock()
	if ok && !entry.Expired(now) {
		return entry.Data, nil
	}

	if c.store != nil {
		if entry, ok := c.store.Get(key); ok && !entry.Expired(now) {
			c.mu.Lock()
			c.mem[key] = entry
			c.mu.Unlock()
			c.index.Insert(entry.Data)
			return entry.Data, nil
		}
	}

	// The fetch serves every waiter on this key, not just the initiator,
	// so it must not die with the initiating request.
	fetchCtx := context.WithoutCancel(ctx)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		fetched, err := c.fetch(fetchCtx, lat, lon, radiusM)
		if err != nil {
			return nil, err
		}

		entry := Entry{Data: fetched, Timestamp: time.Now()}
		c.mu.Lock()
		c.mem[key] = entry
		c.mu.Unlock()
		c.index.Insert(fetched)

		// Persistence is best-effort: a full or unavailable store only
		// loses durability, never the result of this call.
		if c.store != nil {
			if err := c.store.Put(key, entry); err != nil {
				app.Log("places", "cache persist failed for %s: %v", key, err)
			}
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Place), nil
}

// Cached returns the entry under the exact key, fresh or not, without
// touching the network.
func (c *Cache) Cached(lat, lon float64, radiusM int) (Entry, bool) {
	key := Key(lat, lon, radiusM)
	c.mu.RLock()
	entry, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return entry, true
	}
	if c.store != nil {
		return c.store.Get(key)
	}
	return Entry{}, false
}
