package store

import (
	"context"
	"sync"
	"time"

	"isaraya-analytics/internal/logger"
)

// Refresher re-fetches the store snapshot on a fixed interval
type Refresher struct {
	store    *Store
	interval time.Duration
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefresher creates a refresher; each refresh is bounded by interval
func NewRefresher(store *Store, interval time.Duration) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Refresher{
		store:    store,
		interval: interval,
		timeout:  interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the refresh loop
func (r *Refresher) Start() {
	logger.WithComponent("refresher").
		WithField("interval", r.interval.String()).
		Info("Starting snapshot refresher")

	r.wg.Add(1)
	go r.loop()
}

// Stop stops the refresh loop and waits for an in-flight refresh to return
func (r *Refresher) Stop() {
	logger.WithComponent("refresher").Info("Stopping snapshot refresher")

	r.cancel()
	r.wg.Wait()

	logger.WithComponent("refresher").Info("Snapshot refresher stopped")
}

func (r *Refresher) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.refreshOnce()
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Refresher) refreshOnce() {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	if _, err := r.store.Refresh(ctx); err != nil {
		logger.WithComponent("refresher").
			WithError(err).
			Error("Scheduled snapshot refresh failed, keeping previous snapshot")
	}
}
