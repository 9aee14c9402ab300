// Package wincache bounds the cost of expensive per-process window
// enumeration under frequent refresh pressure. Entries live for a short
// TTL; stale entries are never returned, only refreshed. Concurrent
// lookups for the same process share one in-flight refresh.
package wincache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/1broseidon/perch/internal/platform"
)

// DefaultTTL is how long a cached window list stays valid.
const DefaultTTL = time.Second

// Fetcher performs the underlying enumeration for one process.
type Fetcher func(ctx context.Context, pid int) ([]platform.Window, error)

type entry struct {
	windows   []platform.Window
	fetchedAt time.Time
}

// Cache is a per-process TTL cache over a Fetcher. Construct with New;
// one instance per monitoring session.
type Cache struct {
	ttl   time.Duration
	fetch Fetcher
	now   func() time.Time

	group   singleflight.Group
	mu      sync.Mutex
	entries map[int]entry
}

// New creates a cache with the given TTL. A ttl <= 0 uses DefaultTTL.
func New(ttl time.Duration, fetch Fetcher) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache{
		ttl:     ttl,
		fetch:   fetch,
		now:     time.Now,
		entries: make(map[int]entry),
	}
}

// Get returns the cached window list for pid, refreshing it first when
// missing or stale. Concurrent callers for the same pid block on a single
// shared refresh rather than issuing duplicate queries.
func (c *Cache) Get(ctx context.Context, pid int) ([]platform.Window, error) {
	if windows, ok := c.lookup(pid); ok {
		return windows, nil
	}

	v, err, _ := c.group.Do(strconv.Itoa(pid), func() (interface{}, error) {
		// A refresh may have landed while we waited on the group.
		if windows, ok := c.lookup(pid); ok {
			return windows, nil
		}

		windows, err := c.fetch(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("refresh windows for pid %d: %w", pid, err)
		}

		c.store(pid, windows)
		return windows, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]platform.Window), nil
}

// Invalidate drops the entry for pid. The next Get always performs a
// fresh query.
func (c *Cache) Invalidate(pid int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, pid)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]entry)
}

func (c *Cache) lookup(pid int) ([]platform.Window, bool) {
	c.mu.Lock()
	e, ok := c.entries[pid]
	c.mu.Unlock()

	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}

	// Hand out a copy so callers cannot alias the cached slice.
	windows := make([]platform.Window, len(e.windows))
	copy(windows, e.windows)
	return windows, true
}

func (c *Cache) store(pid int, windows []platform.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pid] = entry{windows: windows, fetchedAt: c.now()}
}
