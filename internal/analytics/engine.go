// Package analytics implements the sales aggregation engine behind the
// client, merchant and admin dashboards: top product rankings and admin
// statistics computed from already-fetched orders, products and users,
// memoized under a fingerprint of the inputs.
package analytics

import (
	"sync/atomic"
	"time"

	"isaraya-analytics/internal/logger"
	"isaraya-analytics/internal/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	defaultPeriod    = 30 * 24 * time.Hour
	defaultStatsTopN = 5
)

// Engine computes sales aggregates. It never mutates its inputs and is safe
// for concurrent use; concurrent calls with identical inputs run one fold.
type Engine struct {
	cache     Cache
	now       func() time.Time
	period    time.Duration
	statsTopN int

	group        singleflight.Group
	computations atomic.Int64
}

// Option configures an Engine
type Option func(*Engine)

// WithCache replaces the default MemoryCache
func WithCache(c Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithClock sets the reference clock used for growth periods
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithPeriod sets the length of one growth period
func WithPeriod(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.period = d
		}
	}
}

// WithStatsTopN sets the length of the top product list in admin stats
func WithStatsTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.statsTopN = n
		}
	}
}

// NewEngine creates an engine with an empty cache
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cache:     NewMemoryCache(),
		now:       time.Now,
		period:    defaultPeriod,
		statsTopN: defaultStatsTopN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ClearCache drops every memoized result
func (e *Engine) ClearCache() {
	e.cache.Clear()
	metrics.AnalyticsCacheEntries.Set(0)
	logger.WithComponent("analytics").Debug("Result cache cleared")
}

// CacheStats returns the current entry count and fingerprints
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

// Computations returns how many folds have actually run
func (e *Engine) Computations() int64 {
	return e.computations.Load()
}

// memoize returns the cached value for fingerprint or runs compute and
// stores its result. The check-compute-store sequence is collapsed per
// fingerprint so concurrent callers share one computation.
func (e *Engine) memoize(op, fingerprint string, compute func() any) any {
	if v, ok := e.cache.Get(fingerprint); ok {
		metrics.AnalyticsCacheHits.WithLabelValues(op).Inc()
		logger.WithOperation(op, fingerprint).Debug("Cache hit")
		return v
	}

	v, _, _ := e.group.Do(fingerprint, func() (interface{}, error) {
		if v, ok := e.cache.Get(fingerprint); ok {
			metrics.AnalyticsCacheHits.WithLabelValues(op).Inc()
			return v, nil
		}

		metrics.AnalyticsCacheMisses.WithLabelValues(op).Inc()
		start := time.Now()

		result := compute()
		e.computations.Add(1)
		e.cache.Put(fingerprint, result)

		elapsed := time.Since(start)
		metrics.AnalyticsComputations.WithLabelValues(op).Inc()
		metrics.AnalyticsComputationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
		metrics.AnalyticsCacheEntries.Set(float64(e.cache.Stats().Entries))

		logger.WithOperation(op, fingerprint).
			WithField("duration_us", elapsed.Microseconds()).
			Debug("Cache miss, result computed")

		return result, nil
	})

	return v
}
