package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

// Loader is anything that can refetch its state from storage.
type Loader interface {
	Load(ctx context.Context) error
}

// CollectionReloader refreshes the collection from the storage gateway on an
// interval and on demand.
type CollectionReloader struct {
	loader        Loader
	logger        logger.Logger
	interval      time.Duration // 0 => manual reloads only
	stopCh        chan struct{}
	doneCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCollectionReloader creates a reloader. manualTrigger may be shared with
// the /reload handler.
func NewCollectionReloader(
	loader Loader,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CollectionReloader {
	return &CollectionReloader{
		loader:        loader,
		logger:        log.With(logger.Component("reloader")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start performs the initial load in the background, then keeps reloading.
// The collection reports Loading until the first load completes.
func (cr *CollectionReloader) Start(ctx context.Context) {
	go func() {
		defer close(cr.doneCh)

		var tick <-chan time.Time
		if cr.interval > 0 {
			ticker := time.NewTicker(cr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		if err := cr.Reload(ctx); err != nil {
			cr.logger.Error("initial load failed", logger.Error(err))
		}

		for {
			select {
			case <-tick:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload collection", logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload collection", logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the reloader and waits for the loop to exit.
func (cr *CollectionReloader) Stop() {
	close(cr.stopCh)
	<-cr.doneCh
}

// Reload refetches the collection once.
func (cr *CollectionReloader) Reload(ctx context.Context) error {
	start := time.Now()
	if err := cr.loader.Load(ctx); err != nil {
		return fmt.Errorf("collection reload failed: %w", err)
	}
	cr.logger.Debug("collection reloaded", logger.Duration("took", time.Since(start)))
	return nil
}
