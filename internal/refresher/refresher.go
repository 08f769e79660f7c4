package refresher

import (
	"context"
	"time"

	"github.com/dennisdiepolder/champkpi/internal/cache"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
)

// Broadcaster delivers snapshot notices to connected dashboards
type Broadcaster interface {
	BroadcastEvent(event types.SnapshotEvent)
}

// Refresher periodically re-reads every table and tells dashboards about it
type Refresher struct {
	cache    *cache.SnapshotCache
	hub      Broadcaster
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewRefresher creates a Refresher and subscribes it to cache reloads, so
// lazy reloads triggered by lookups are announced as well
func NewRefresher(c *cache.SnapshotCache, hub Broadcaster, interval time.Duration, logger zerolog.Logger) *Refresher {
	r := &Refresher{
		cache:    c,
		hub:      hub,
		interval: interval,
		now:      time.Now,
		logger:   logger.With().Str("component", "refresher").Logger(),
	}
	c.OnRefresh(r.notify)
	return r
}

func (r *Refresher) notify(table *types.Table) {
	r.hub.BroadcastEvent(types.SnapshotEvent{
		Type:      types.EventSnapshotRefreshed,
		Table:     table.Name,
		Rows:      len(table.Rows),
		Timestamp: r.now().UTC(),
	})
}

// RefreshOnce reloads all tables and returns how many succeeded
func (r *Refresher) RefreshOnce(ctx context.Context) int {
	tables, err := r.cache.RefreshAll(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Int("refreshed", len(tables)).Msg("snapshot refresh incomplete")
	}
	return len(tables)
}

// Start refreshes on every tick until ctx is cancelled. A non-positive
// interval disables the loop.
func (r *Refresher) Start(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info().Msg("periodic refresh disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("refresher started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("refresher stopped")
			return

		case <-ticker.C:
			n := r.RefreshOnce(ctx)
			r.logger.Debug().Int("tables", n).Msg("snapshot refreshed")
		}
	}
}
