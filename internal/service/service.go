// Package service provides business logic implementation
package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"isaraya-analytics/internal/analytics"
	"isaraya-analytics/internal/errors"
	"isaraya-analytics/internal/logger"
	"isaraya-analytics/internal/models"
	"isaraya-analytics/internal/store"

	"golang.org/x/sync/errgroup"
)

// AnalyticsService serves sales aggregations over the current snapshot
type AnalyticsService interface {
	TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error)
	MerchantTopProducts(ctx context.Context, merchantID string, limit int) ([]models.TopProduct, error)
	AdminStats(ctx context.Context) (*models.AggregatedStats, error)
	Dashboard(ctx context.Context, limit int) (*models.Dashboard, error)
	Refresh(ctx context.Context) (*models.SnapshotInfo, error)
	ClearCache(ctx context.Context) error
	CacheStats(ctx context.Context) analytics.CacheStats
}

// HealthService handles health check logic
type HealthService interface {
	Check(ctx context.Context) (*models.HealthCheck, error)
}

// SnapshotStore is the part of store.Store the services depend on
type SnapshotStore interface {
	Snapshot() store.Snapshot
	Refresh(ctx context.Context) (store.Snapshot, error)
	OnRefresh(fn func(store.Snapshot))
}

// Pinger reports database reachability
type Pinger interface {
	Health(ctx context.Context) error
}

// Services contains all service implementations
type Services struct {
	Analytics AnalyticsService
	Health    HealthService
}

// Dependencies contains service dependencies
type Dependencies struct {
	DB     Pinger
	Store  SnapshotStore
	Engine *analytics.Engine
}

// NewServices creates a new services instance
func NewServices(deps *Dependencies) *Services {
	return &Services{
		Analytics: NewAnalyticsService(deps),
		Health:    NewHealthService(deps),
	}
}

// analyticsService implements AnalyticsService
type analyticsService struct {
	store  SnapshotStore
	engine *analytics.Engine
}

// NewAnalyticsService creates a new analytics service. Every successful
// snapshot refresh empties the engine cache.
func NewAnalyticsService(deps *Dependencies) AnalyticsService {
	engine := deps.Engine
	deps.Store.OnRefresh(func(store.Snapshot) {
		engine.ClearCache()
	})

	return &analyticsService{
		store:  deps.Store,
		engine: engine,
	}
}

func (s *analyticsService) snapshot() (store.Snapshot, error) {
	snap := s.store.Snapshot()
	if !snap.Loaded() {
		return snap, errors.ErrSnapshotUnavailable
	}
	return snap, nil
}

func (s *analyticsService) TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	top, err := s.engine.ComputeTopProducts(snap.Orders, snap.Products, snap.Users, limit)
	if err != nil {
		logger.WithContext(ctx).WithError(err).WithField("limit", limit).Error("Failed to compute top products")
		return nil, err
	}

	return top, nil
}

func (s *analyticsService) MerchantTopProducts(ctx context.Context, merchantID string, limit int) ([]models.TopProduct, error) {
	merchantID = strings.TrimSpace(merchantID)
	if merchantID == "" {
		return nil, errors.NewValidationError("merchant id is required")
	}

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	// Line items for other sellers' products no longer resolve and drop out.
	var owned []models.Product
	for _, p := range snap.Products {
		if p.SellerID == merchantID {
			owned = append(owned, p)
		}
	}

	ctx = context.WithValue(ctx, logger.MerchantIDKey, merchantID)

	top, err := s.engine.ComputeTopProducts(snap.Orders, owned, snap.Users, limit)
	if err != nil {
		logger.WithContext(ctx).WithError(err).WithField("limit", limit).Error("Failed to compute merchant top products")
		return nil, err
	}

	logger.WithContext(ctx).
		WithField("products", len(owned)).
		WithField("results", len(top)).
		Debug("Merchant top products computed")

	return top, nil
}

func (s *analyticsService) AdminStats(ctx context.Context) (*models.AggregatedStats, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	stats, err := s.engine.ComputeAdminStats(snap.Orders, snap.Products, snap.Users, snap.Categories)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("Failed to compute admin stats")
		return nil, err
	}

	return stats, nil
}

func (s *analyticsService) Dashboard(ctx context.Context, limit int) (*models.Dashboard, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	dashboard := &models.Dashboard{SnapshotVersion: snap.Version}

	var g errgroup.Group
	g.Go(func() error {
		top, err := s.engine.ComputeTopProducts(snap.Orders, snap.Products, snap.Users, limit)
		dashboard.TopProducts = top
		return err
	})
	g.Go(func() error {
		stats, err := s.engine.ComputeAdminStats(snap.Orders, snap.Products, snap.Users, snap.Categories)
		dashboard.Stats = stats
		return err
	})

	if err := g.Wait(); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("limit", limit).Error("Failed to compute dashboard")
		return nil, err
	}

	return dashboard, nil
}

func (s *analyticsService) Refresh(ctx context.Context) (*models.SnapshotInfo, error) {
	snap, err := s.store.Refresh(ctx)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("Failed to refresh snapshot")
		return nil, errors.NewAppErrorWithCause(
			errors.ErrCodeServiceUnavailable,
			"Failed to refresh marketplace data",
			http.StatusServiceUnavailable,
			err,
		)
	}

	logger.WithContext(ctx).WithField("version", snap.Version).Info("Snapshot refreshed on request")

	return &models.SnapshotInfo{
		Version:    snap.Version,
		FetchedAt:  snap.FetchedAt,
		Orders:     len(snap.Orders),
		Products:   len(snap.Products),
		Users:      len(snap.Users),
		Categories: len(snap.Categories),
	}, nil
}

func (s *analyticsService) ClearCache(ctx context.Context) error {
	s.engine.ClearCache()
	logger.WithContext(ctx).Info("Analytics cache cleared")
	return nil
}

func (s *analyticsService) CacheStats(ctx context.Context) analytics.CacheStats {
	return s.engine.CacheStats()
}

// healthService implements HealthService
type healthService struct {
	db    Pinger
	store SnapshotStore
	now   func() time.Time
}

// NewHealthService creates a new health service
func NewHealthService(deps *Dependencies) HealthService {
	return &healthService{
		db:    deps.DB,
		store: deps.Store,
		now:   time.Now,
	}
}

var startTime = time.Now()

func (s *healthService) Check(ctx context.Context) (*models.HealthCheck, error) {
	checks := make(map[string]string)

	if err := s.db.Health(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
	} else {
		checks["database"] = "healthy"
	}

	snap := s.store.Snapshot()
	if snap.Loaded() {
		checks["snapshot"] = "healthy"
	} else {
		checks["snapshot"] = "unhealthy: not loaded"
	}

	status := "healthy"
	for _, check := range checks {
		if check != "healthy" {
			status = "unhealthy"
			break
		}
	}

	now := s.now()
	health := &models.HealthCheck{
		Status:          status,
		Version:         "1.0.0",
		Checks:          checks,
		SnapshotVersion: snap.Version,
		Uptime:          time.Since(startTime).String(),
		Timestamp:       now,
	}
	if snap.Loaded() {
		health.SnapshotAge = now.Sub(snap.FetchedAt).Round(time.Second).String()
	}

	return health, nil
}
