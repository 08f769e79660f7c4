package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dennisdiepolder/champkpi/internal/metrics"
	"github.com/dennisdiepolder/champkpi/internal/storage"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched table is served before the source is asked again
const DefaultTTL = 10 * time.Minute

type entry struct {
	table     *types.Table
	fetchedAt time.Time
}

// RefreshFunc is called after a table has been re-read from the source
type RefreshFunc func(table *types.Table)

// SnapshotCache keeps the last fetched copy of every table for a bounded
// time. It satisfies storage.Store so callers do not know it is there.
type SnapshotCache struct {
	source  storage.Store
	ttl     time.Duration
	entries map[types.TableName]entry
	mu      sync.RWMutex
	group   singleflight.Group
	hooks   []RefreshFunc
	now     func() time.Time
	logger  zerolog.Logger
}

// NewSnapshotCache wraps source. A ttl of zero disables caching.
func NewSnapshotCache(source storage.Store, ttl time.Duration, logger zerolog.Logger) *SnapshotCache {
	return &SnapshotCache{
		source:  source,
		ttl:     ttl,
		entries: make(map[types.TableName]entry),
		now:     time.Now,
		logger:  logger.With().Str("component", "snapshot_cache").Logger(),
	}
}

// OnRefresh registers fn to run after every successful source read
func (c *SnapshotCache) OnRefresh(fn RefreshFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// Fetch returns the cached table while it is fresh and reads the source otherwise
func (c *SnapshotCache) Fetch(ctx context.Context, table types.TableName) (*types.Table, error) {
	if t, ok := c.fresh(table); ok {
		metrics.Get().RecordCacheHit()
		return t, nil
	}
	metrics.Get().RecordCacheMiss()
	return c.load(ctx, table)
}

// Refresh re-reads a table from the source regardless of its age
func (c *SnapshotCache) Refresh(ctx context.Context, table types.TableName) (*types.Table, error) {
	return c.load(ctx, table)
}

// RefreshAll re-reads every table. Tables that fail keep their previous snapshot.
func (c *SnapshotCache) RefreshAll(ctx context.Context) ([]types.TableName, error) {
	var refreshed []types.TableName
	var errs []error
	for _, table := range types.AllTables {
		if _, err := c.Refresh(ctx, table); err != nil {
			errs = append(errs, err)
			continue
		}
		refreshed = append(refreshed, table)
	}
	return refreshed, errors.Join(errs...)
}

// Invalidate drops a table so the next Fetch reads the source
func (c *SnapshotCache) Invalidate(table types.TableName) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, table)
}

// Age reports how long ago the table was fetched
func (c *SnapshotCache) Age(table types.TableName) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[table]
	if !ok {
		return 0, false
	}
	return c.now().Sub(e.fetchedAt), true
}

func (c *SnapshotCache) fresh(table types.TableName) (*types.Table, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[table]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.table, true
}

// load reads the source once for any number of concurrent callers
func (c *SnapshotCache) load(ctx context.Context, table types.TableName) (*types.Table, error) {
	v, err, _ := c.group.Do(string(table), func() (interface{}, error) {
		start := time.Now()
		t, err := c.source.Fetch(ctx, table)
		rows := 0
		if t != nil {
			rows = len(t.Rows)
		}
		metrics.Get().RecordSourceFetch(string(table), rows, time.Since(start), err)
		if err != nil {
			c.logger.Error().Err(err).Str("table", string(table)).Msg("source fetch failed")
			return nil, err
		}

		c.mu.Lock()
		c.entries[table] = entry{table: t, fetchedAt: c.now()}
		hooks := append([]RefreshFunc(nil), c.hooks...)
		c.mu.Unlock()

		if !t.HasColumn(types.FieldEmployeeID) {
			c.logger.Warn().
				Str("table", string(table)).
				Strs("columns", t.Columns).
				Msg("table has no EMP ID column, lookups will find nothing")
		}

		c.logger.Debug().
			Str("table", string(table)).
			Int("rows", rows).
			Dur("duration", time.Since(start)).
			Msg("table fetched")

		for _, fn := range hooks {
			fn(t)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Table), nil
}
