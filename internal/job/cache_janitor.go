// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"media-catalog-service/internal/config"
	"media-catalog-service/internal/infra/cache"
)

// CacheJanitor periodically sweeps expired entries out of the cache.
// Eviction on write keeps namespaces bounded, but entries that are
// never read again would otherwise sit until capacity pressure pushes
// them out; the janitor reclaims them on a timer.
type CacheJanitor struct {
	store    *cache.Store
	interval time.Duration
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCacheJanitor creates a new CacheJanitor.
func NewCacheJanitor(store *cache.Store, cfg config.JanitorConfig, logger *zap.Logger) *CacheJanitor {
	return &CacheJanitor{
		store:    store,
		interval: cfg.Interval,
		logger:   logger,
	}
}

// Start begins the background sweep loop.
func (j *CacheJanitor) Start(runOnStartup bool) {
	j.ctx, j.cancel = context.WithCancel(context.Background())

	j.logger.Info("starting cache janitor",
		zap.Duration("interval", j.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	j.wg.Add(1)
	go j.run(runOnStartup)
}

// Stop gracefully stops the janitor.
func (j *CacheJanitor) Stop() {
	j.logger.Info("stopping cache janitor")
	j.cancel()
	j.wg.Wait()
	j.logger.Info("cache janitor stopped")
}

// run is the main loop of the janitor.
func (j *CacheJanitor) run(runOnStartup bool) {
	defer j.wg.Done()

	// Run immediately if configured
	if runOnStartup {
		j.sweep()
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

// sweep drops expired entries and reports what remains per namespace.
func (j *CacheJanitor) sweep() {
	removed := j.store.Sweep()

	remaining := 0
	for _, st := range j.store.Stats() {
		remaining += st.Entries
	}

	if removed > 0 {
		j.logger.Info("cache sweep completed",
			zap.Int("removed", removed),
			zap.Int("remaining", remaining),
		)
	} else {
		j.logger.Debug("cache sweep found nothing to remove",
			zap.Int("remaining", remaining),
		)
	}
}
