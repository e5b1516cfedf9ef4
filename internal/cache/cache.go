package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Skidy89/simple-language-loader/internal/loader"

	"github.com/rs/zerolog/log"
)

// Builder aggregates a directory into a table.
type Builder interface {
	Load(ctx context.Context, dir string) (loader.Table, error)
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits        int
	Misses      int
	Builds      int
	Resident    bool
	Dir         string
	LastBuildAt time.Time
}

// Resident holds at most one aggregated table in memory, together with the
// directory it was built from. It is safe for concurrent use; cache hits only
// take the read lock.
type Resident struct {
	builder Builder
	nowFn   func() time.Time

	mu    sync.RWMutex
	table loader.Table
	dir   string

	statsMu sync.Mutex
	stats   Stats
}

// New creates an empty resident cache backed by builder.
func New(builder Builder) *Resident {
	return &Resident{
		builder: builder,
		nowFn:   time.Now,
	}
}

// LoadOrBuild returns a copy of the cached table for dir, building and storing
// it first if the cache is empty or holds a different directory.
func (c *Resident) LoadOrBuild(ctx context.Context, dir string) (loader.Table, error) {
	key := cacheKey(dir)

	c.mu.RLock()
	if c.table != nil && c.dir == key {
		out := c.table.Clone()
		c.mu.RUnlock()
		c.count(func(s *Stats) { s.Hits++ })
		return out, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have populated the slot while we waited for the lock.
	if c.table != nil && c.dir == key {
		c.count(func(s *Stats) { s.Hits++ })
		return c.table.Clone(), nil
	}
	c.count(func(s *Stats) { s.Misses++ })

	table, err := c.builder.Load(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("build lang cache: %w", err)
	}
	if table == nil {
		table = loader.Table{}
	}

	if c.table != nil && c.dir != key {
		log.Info().Str("previous", c.dir).Str("dir", key).Msg("Replacing cached lang table")
	}
	c.table = table.Clone()
	c.dir = key

	now := c.nowFn()
	c.count(func(s *Stats) {
		s.Builds++
		s.LastBuildAt = now
	})
	log.Debug().Str("dir", key).Int("resources", len(table)).Msg("Populated lang cache")

	return table, nil
}

// LoadUncached always builds a fresh table and leaves the cache untouched.
func (c *Resident) LoadUncached(ctx context.Context, dir string) (loader.Table, error) {
	return c.builder.Load(ctx, dir)
}

// Invalidate drops the cached table. The next LoadOrBuild rebuilds from disk.
func (c *Resident) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = nil
	c.dir = ""
}

// Stats returns a snapshot of the cache counters.
func (c *Resident) Stats() Stats {
	c.mu.RLock()
	resident, dir := c.table != nil, c.dir
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	s := c.stats
	s.Resident = resident
	s.Dir = dir
	return s
}

func (c *Resident) count(fn func(*Stats)) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	fn(&c.stats)
}

func cacheKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
