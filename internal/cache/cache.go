// Package cache memoizes normalized catalog lists per (category, page-or-query).
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/models"
	"golang.org/x/sync/singleflight"
)

// Key identifies one cached list
type Key struct {
	Category string
	Param    string
}

func (k Key) String() string {
	return k.Category + "|" + k.Param
}

// Fetcher loads and normalizes the records for a key
type Fetcher func(ctx context.Context) ([]models.DisplayRecord, error)

// Options configures a Cache
type Options struct {
	// Enabled false makes every call go straight to the fetcher
	Enabled bool

	// TTL of zero keeps entries for the life of the process
	TTL time.Duration

	Now    func() time.Time
	Logger *logger.Logger
}

// Stats counts cache activity since creation
type Stats struct {
	Hits    int
	Misses  int
	Entries int
}

type entry struct {
	records  []models.DisplayRecord
	storedAt time.Time
}

// Cache stores successful fetch results. Failed fetches are never stored, so
// the next call for the same key tries again.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]entry
	group   singleflight.Group
	opts    Options
	hits    int
	misses  int
}

// New creates a cache
func New(opts Options) *Cache {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.AppLogger()
	}
	return &Cache{
		entries: make(map[Key]entry),
		opts:    opts,
	}
}

// GetOrFetch returns the stored records for key or loads them with fetch.
// On failure it returns an empty, non-nil slice along with the error.
// Concurrent misses for one key share a single fetch.
func (c *Cache) GetOrFetch(ctx context.Context, key Key, fetch Fetcher) ([]models.DisplayRecord, error) {
	if !c.opts.Enabled {
		records, err := fetch(ctx)
		if err != nil {
			return []models.DisplayRecord{}, err
		}
		return orEmpty(records), nil
	}

	if records, ok := c.lookup(key); ok {
		return records, nil
	}

	// the shared fetch must not inherit one caller's cancellation; a caller
	// that gives up leaves early and the fetch still fills the entry
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		if records, ok := c.lookup(key); ok {
			return records, nil
		}

		c.mu.Lock()
		c.misses++
		c.mu.Unlock()

		records, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		records = orEmpty(records)

		c.mu.Lock()
		c.entries[key] = entry{records: records, storedAt: c.opts.Now()}
		c.mu.Unlock()

		c.opts.Logger.WithFields(map[string]interface{}{
			"key":     key.String(),
			"records": len(records),
		}).Debug("cache entry stored")
		return records, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return []models.DisplayRecord{}, res.Err
		}
		return clone(res.Val.([]models.DisplayRecord)), nil
	case <-ctx.Done():
		return []models.DisplayRecord{}, ctx.Err()
	}
}

func (c *Cache) lookup(key Key) ([]models.DisplayRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.opts.TTL > 0 && c.opts.Now().Sub(e.storedAt) >= c.opts.TTL {
		delete(c.entries, key)
		return nil, false
	}

	c.hits++
	return clone(e.records), true
}

// Invalidate drops one key
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every key
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]entry)
}

// Len returns the number of stored keys, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counters
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

func orEmpty(records []models.DisplayRecord) []models.DisplayRecord {
	if records == nil {
		return []models.DisplayRecord{}
	}
	return records
}

// clone keeps callers from mutating stored slices
func clone(records []models.DisplayRecord) []models.DisplayRecord {
	out := make([]models.DisplayRecord, len(records))
	copy(out, records)
	return out
}
