package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pthm/ccpricing"
)

type cacheEntry struct {
	value   any
	expires time.Time
}

// Cached memoizes a Source for ttl. Concurrent misses on the same key share
// one upstream call; errors are not cached.
type Cached struct {
	src Source
	ttl time.Duration
	now func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCached wraps src.
func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cached) Currencies(ctx context.Context) ([]ccpricing.Currency, error) {
	return load(ctx, c, "currencies", c.src.Currencies)
}

func (c *Cached) Zones(ctx context.Context) ([]ccpricing.Zone, error) {
	return load(ctx, c, "zones", c.src.Zones)
}

func (c *Cached) Product(ctx context.Context, id, zoneID string) (ccpricing.CatalogProduct, error) {
	return load(ctx, c, "product/"+zoneID+"/"+id, func(ctx context.Context) (ccpricing.CatalogProduct, error) {
		return c.src.Product(ctx, id, zoneID)
	})
}

// ProductIDs delegates to the wrapped source when it is a Lister.
func (c *Cached) ProductIDs(ctx context.Context) ([]string, error) {
	if l, ok := c.src.(Lister); ok {
		return l.ProductIDs(ctx)
	}
	return nil, nil
}

// Purge drops every cached entry.
func (c *Cached) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *Cached) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cached) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: v, expires: c.now().Add(c.ttl)}
}

func load[T any](ctx context.Context, c *Cached, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := c.get(key); ok {
		return v.(T), nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// The shared call outlives any single caller's cancellation.
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.put(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
