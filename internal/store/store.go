// Package store holds the marketplace collections the analytics engine reads.
//
// A Store owns one immutable Snapshot at a time. Refresh replaces it as a
// whole, so readers never observe a half-loaded state. Callers must treat the
// slices of a Snapshot as read-only.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"isaraya-analytics/internal/logger"
	"isaraya-analytics/internal/metrics"
	"isaraya-analytics/internal/models"

	"golang.org/x/sync/errgroup"
)

// OrderLister loads every order
type OrderLister interface {
	List(ctx context.Context) ([]models.Order, error)
}

// ProductLister loads every product
type ProductLister interface {
	List(ctx context.Context) ([]models.Product, error)
}

// UserLister loads every user
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// CategoryLister loads every category
type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// Sources are the collaborators a Store loads from
type Sources struct {
	Orders     OrderLister
	Products   ProductLister
	Users      UserLister
	Categories CategoryLister
}

// Snapshot is one consistent view of the marketplace collections
type Snapshot struct {
	Orders     []models.Order
	Products   []models.Product
	Users      []models.User
	Categories []models.Category
	Version    uint64
	FetchedAt  time.Time
}

// Loaded reports whether the snapshot came from a successful refresh
func (s Snapshot) Loaded() bool {
	return s.Version > 0
}

// Store owns the current snapshot
type Store struct {
	sources Sources
	now     func() time.Time

	refreshMu sync.Mutex

	mu       sync.RWMutex
	snapshot Snapshot
	hooks    []func(Snapshot)
}

// New creates an empty store; call Refresh to load it
func New(sources Sources) *Store {
	return &Store{
		sources: sources,
		now:     time.Now,
	}
}

// OnRefresh registers fn to run after every successful refresh
func (s *Store) OnRefresh(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, fn)
}

// Snapshot returns the current snapshot, the zero value before the first
// successful refresh
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// Refresh loads all four collections concurrently and swaps in the new
// snapshot. On failure the previous snapshot is kept and returned alongside
// the error.
func (s *Store) Refresh(ctx context.Context) (Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()

	var (
		orders     []models.Order
		products   []models.Product
		users      []models.User
		categories []models.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.sources.Orders.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.sources.Products.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.sources.Users.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.sources.Categories.List(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.SnapshotRefreshes.WithLabelValues("failed").Inc()
		return s.Snapshot(), fmt.Errorf("failed to refresh snapshot: %w", err)
	}

	s.mu.Lock()
	next := Snapshot{
		Orders:     orders,
		Products:   products,
		Users:      users,
		Categories: categories,
		Version:    s.snapshot.Version + 1,
		FetchedAt:  s.now(),
	}
	s.snapshot = next
	hooks := append([]func(Snapshot){}, s.hooks...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(next)
	}

	metrics.SnapshotRefreshes.WithLabelValues("success").Inc()
	metrics.SnapshotVersion.Set(float64(next.Version))

	logger.WithComponent("store").
		WithField("version", next.Version).
		WithField("orders", len(orders)).
		WithField("products", len(products)).
		WithField("users", len(users)).
		WithField("categories", len(categories)).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Snapshot refreshed")

	return next, nil
}
