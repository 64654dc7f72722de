package analytics

import (
	"sort"
	"time"

	"isaraya-analytics/internal/models"

	"github.com/shopspring/decimal"
)

const uncategorizedName = "Uncategorized"

var hundred = decimal.NewFromInt(100)

// ComputeAdminStats derives the admin dashboard statistics. Empty orders or
// users produce zeroed stats. Missing products or categories only omit the
// breakdowns that need them. Orders from users absent from users are not
// counted as buyers but still contribute revenue and status counts.
func (e *Engine) ComputeAdminStats(orders []models.Order, products []models.Product, users []models.User, categories []models.Category) (*models.AggregatedStats, error) {
	fp := AdminStatsFingerprint(orders, products, users, categories, e.statsTopN)
	v := e.memoize(OpAdminStats, fp, func() any {
		return e.buildAdminStats(orders, products, users, categories)
	})
	return cloneStats(v.(*models.AggregatedStats)), nil
}

func (e *Engine) buildAdminStats(orders []models.Order, products []models.Product, users []models.User, categories []models.Category) *models.AggregatedStats {
	stats := emptyStats()
	if len(orders) == 0 || len(users) == 0 {
		return stats
	}

	now := e.now()
	currentStart := now.Add(-e.period)
	priorStart := now.Add(-2 * e.period)

	knownUsers := make(map[string]struct{}, len(users))
	for _, u := range users {
		knownUsers[u.ID] = struct{}{}
		for _, role := range u.Roles {
			if _, ok := stats.UsersByRole[role]; ok {
				stats.UsersByRole[role]++
			}
		}
	}
	stats.TotalUsers = len(users)

	buyers := make(map[string]struct{})
	for _, order := range orders {
		stats.TotalOrders++
		stats.TotalRevenue = stats.TotalRevenue.Add(order.Total)

		status := order.Status
		if !status.IsKnown() {
			status = models.OrderStatusUnknown
		}
		stats.OrdersByStatus[status]++

		if _, ok := knownUsers[order.UserID]; ok {
			buyers[order.UserID] = struct{}{}
		}

		switch {
		case inPeriod(order.CreatedAt, currentStart, now):
			stats.CurrentPeriodOrders++
			stats.CurrentPeriodRevenue = stats.CurrentPeriodRevenue.Add(order.Total)
		case inPeriod(order.CreatedAt, priorStart, currentStart):
			stats.PriorPeriodOrders++
			stats.PriorPeriodRevenue = stats.PriorPeriodRevenue.Add(order.Total)
		}
	}
	stats.DistinctBuyers = len(buyers)

	stats.RevenueGrowth = Growth(stats.CurrentPeriodRevenue, stats.PriorPeriodRevenue)
	stats.OrderGrowth = Growth(
		decimal.NewFromInt(int64(stats.CurrentPeriodOrders)),
		decimal.NewFromInt(int64(stats.PriorPeriodOrders)),
	)

	stats.TotalProducts = len(products)
	if len(products) > 0 && len(categories) > 0 {
		stats.ProductsByCategory = countByCategory(products, categories)
	}

	stats.TopProducts = rankTopProducts(orders, products, users, e.statsTopN)

	return stats
}

// Growth returns (current - prior) / prior * 100 rounded to two decimals.
// A zero or negative prior value yields 0 so the result is always finite.
func Growth(current, prior decimal.Decimal) float64 {
	if !prior.IsPositive() {
		return 0
	}
	return current.Sub(prior).Div(prior).Mul(hundred).Round(2).InexactFloat64()
}

// inPeriod reports whether t falls in the half-open window (start, end]
func inPeriod(t, start, end time.Time) bool {
	return t.After(start) && !t.After(end)
}

func countByCategory(products []models.Product, categories []models.Category) []models.CategoryCount {
	counts := make(map[string]int, len(categories))
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		counts[c.ID] = 0
		names[c.ID] = c.Name
	}

	for _, p := range products {
		if _, ok := names[p.CategoryID]; ok {
			counts[p.CategoryID]++
			continue
		}
		counts[""]++
		names[""] = uncategorizedName
	}

	breakdown := make([]models.CategoryCount, 0, len(counts))
	for id, n := range counts {
		breakdown = append(breakdown, models.CategoryCount{
			CategoryID: id,
			Name:       names[id],
			Products:   n,
		})
	}

	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Products != breakdown[j].Products {
			return breakdown[i].Products > breakdown[j].Products
		}
		return breakdown[i].CategoryID < breakdown[j].CategoryID
	})

	return breakdown
}

func emptyStats() *models.AggregatedStats {
	byStatus := make(map[models.OrderStatus]int, len(models.OrderStatuses)+1)
	for _, s := range models.OrderStatuses {
		byStatus[s] = 0
	}
	byStatus[models.OrderStatusUnknown] = 0

	byRole := make(map[models.Role]int, len(models.Roles))
	for _, r := range models.Roles {
		byRole[r] = 0
	}

	return &models.AggregatedStats{
		TotalRevenue:         decimal.Zero,
		OrdersByStatus:       byStatus,
		CurrentPeriodRevenue: decimal.Zero,
		PriorPeriodRevenue:   decimal.Zero,
		UsersByRole:          byRole,
		TopProducts:          []models.TopProduct{},
	}
}

// cloneStats copies the maps and slices of s so callers cannot reach into
// a cached value
func cloneStats(s *models.AggregatedStats) *models.AggregatedStats {
	out := *s

	out.OrdersByStatus = make(map[models.OrderStatus]int, len(s.OrdersByStatus))
	for k, v := range s.OrdersByStatus {
		out.OrdersByStatus[k] = v
	}

	out.UsersByRole = make(map[models.Role]int, len(s.UsersByRole))
	for k, v := range s.UsersByRole {
		out.UsersByRole[k] = v
	}

	if s.ProductsByCategory != nil {
		out.ProductsByCategory = append([]models.CategoryCount(nil), s.ProductsByCategory...)
	}
	out.TopProducts = append(make([]models.TopProduct, 0, len(s.TopProducts)), s.TopProducts...)

	return &out
}
