package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pupbiscuit/skydash/internal/domain"
	"github.com/pupbiscuit/skydash/internal/metrics"
)

// persistence is the subset of Store the cache writes through to. Nil
// disables persistence.
type persistence interface {
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error
	LatestSnapshot(ctx context.Context) (*domain.Snapshot, error)
}

// Cache serves snapshots with a freshness window, refetching only when the
// cached one ages out or is explicitly invalidated. The analytics core
// stays pure; all caching lives here, keyed by the single account this
// dashboard serves.
type Cache struct {
	fetcher *Fetcher
	store   persistence
	ttl     time.Duration
	logger  *slog.Logger
	m       *metrics.Metrics
	now     func() time.Time

	mu    sync.Mutex
	snap  *domain.Snapshot
	stale bool
}

// NewCache creates a Cache. store may be nil; m may be nil.
func NewCache(fetcher *Fetcher, store persistence, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		fetcher: fetcher,
		store:   store,
		ttl:     ttl,
		logger:  logger,
		m:       m,
		now:     time.Now,
	}
}

// Snapshot returns a snapshot no older than the freshness window, fetching a
// new one if needed. On cold start a persisted snapshot is reused when it is
// still fresh, so a restart does not force a refetch.
func (c *Cache) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap == nil && c.store != nil {
		persisted, err := c.store.LatestSnapshot(ctx)
		if err != nil {
			c.logger.Warn("failed to load persisted snapshot", "error", err)
		} else if persisted != nil {
			c.snap = persisted
		}
	}

	if c.snap != nil && !c.stale && c.now().Sub(c.snap.FetchedAt) < c.ttl {
		c.observeAge()
		return c.snap, nil
	}

	snap, err := c.fetcher.Fetch(ctx)
	if err != nil {
		if c.m != nil {
			c.m.SnapshotFetches.WithLabelValues("error").Inc()
		}
		// Serve the stale snapshot if we have one; the fetch failure is
		// logged but a dashboard with old data beats an empty one.
		if c.snap != nil {
			c.logger.Error("snapshot refresh failed, serving stale data", "error", err)
			c.observeAge()
			return c.snap, nil
		}
		return nil, err
	}
	if c.m != nil {
		c.m.SnapshotFetches.WithLabelValues("ok").Inc()
	}

	if c.store != nil {
		if err := c.store.SaveSnapshot(ctx, snap); err != nil {
			c.logger.Warn("failed to persist snapshot", "error", err)
		}
	}

	c.snap = snap
	c.stale = false
	c.observeAge()
	return c.snap, nil
}

// Invalidate marks the cached snapshot stale so the next read refetches,
// regardless of age. Called by the firehose when new engagement on own
// posts is observed.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

func (c *Cache) observeAge() {
	if c.m != nil && c.snap != nil {
		c.m.SnapshotAge.Set(c.now().Sub(c.snap.FetchedAt).Seconds())
	}
}
