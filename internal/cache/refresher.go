package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher owns the background refetch loops: pending list every 30s,
// stats and activity every 60s (cadence supplied by the caller). Each key
// gets exactly one loop, and refetches coalesce with any caller-triggered
// refresh through the cache's singleflight group. Close stops every loop.
type Refresher struct {
	cache  *Cache
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefresher constructs a stopped-when-closed refresher bound to c.
func NewRefresher(c *Cache, logger *slog.Logger) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		cache:  c,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every starts a loop refetching key at the given interval until Close.
func (r *Refresher) Every(interval time.Duration, key Key, fetch func(ctx context.Context) (any, error)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(r.ctx, r.cache.refreshTimeout)
				if err := r.cache.Refresh(ctx, key, fetch); err != nil {
					r.logger.Warn("background cache refresh failed",
						"key", key.String(),
						"error", err,
					)
				}
				cancel()
			}
		}
	}()
}

// Close cancels all refresh loops and waits for them to exit.
func (r *Refresher) Close() {
	r.cancel()
	r.wg.Wait()
}
