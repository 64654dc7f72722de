package analytics

import (
	"fmt"
	"sort"

	"isaraya-analytics/internal/errors"
	"isaraya-analytics/internal/models"

	"github.com/shopspring/decimal"
)

// ComputeTopProducts ranks products by revenue across every line item of
// orders, using each line item's recorded unit price. Line items whose
// product is missing from products are dropped. Ties on revenue break on
// quantity sold (desc), then product id (asc).
//
// limit must be at least 1. Empty orders yield an empty, non-nil slice.
func (e *Engine) ComputeTopProducts(orders []models.Order, products []models.Product, users []models.User, limit int) ([]models.TopProduct, error) {
	if limit < 1 {
		return nil, errors.NewInvalidParameterError("limit", fmt.Sprintf("limit must be at least 1, got %d", limit))
	}

	fp := TopProductsFingerprint(orders, products, users, limit)
	v := e.memoize(OpTopProducts, fp, func() any {
		return rankTopProducts(orders, products, users, limit)
	})

	ranked := v.([]models.TopProduct)
	out := make([]models.TopProduct, len(ranked))
	copy(out, ranked)
	return out, nil
}

type productRollup struct {
	quantity int
	revenue  decimal.Decimal
}

func rankTopProducts(orders []models.Order, products []models.Product, users []models.User, limit int) []models.TopProduct {
	if len(orders) == 0 {
		return []models.TopProduct{}
	}

	productsByID := make(map[string]models.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	sellerNames := make(map[string]string, len(users))
	for _, u := range users {
		sellerNames[u.ID] = u.DisplayName()
	}

	rollups := make(map[string]*productRollup)
	for _, order := range orders {
		for _, item := range order.Items {
			if _, ok := productsByID[item.ProductID]; !ok {
				continue
			}
			r, ok := rollups[item.ProductID]
			if !ok {
				r = &productRollup{revenue: decimal.Zero}
				rollups[item.ProductID] = r
			}
			r.quantity += item.Quantity
			r.revenue = r.revenue.Add(item.Subtotal())
		}
	}

	ranked := make([]models.TopProduct, 0, len(rollups))
	for id, r := range rollups {
		product := productsByID[id]

		average := decimal.Zero
		if r.quantity > 0 {
			average = r.revenue.DivRound(decimal.NewFromInt(int64(r.quantity)), 2)
		}

		ranked = append(ranked, models.TopProduct{
			ProductID:    id,
			Name:         product.Name,
			TotalSold:    r.quantity,
			Revenue:      r.revenue,
			AveragePrice: average,
			SellerName:   sellerNames[product.SellerID],
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Revenue.Cmp(ranked[j].Revenue); c != 0 {
			return c > 0
		}
		if ranked[i].TotalSold != ranked[j].TotalSold {
			return ranked[i].TotalSold > ranked[j].TotalSold
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}
