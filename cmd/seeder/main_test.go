package main

import (
	"math/rand"
	"testing"
	"time"

	"isaraya-analytics/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	data := generate(rand.New(rand.NewSource(7)), now)

	assert.Len(t, data.Users, clientCount+merchantCount+adminCount)
	assert.Len(t, data.Categories, len(categoryNames))
	assert.Len(t, data.Products, productCount)
	require.Len(t, data.Orders, orderCount)

	merchants := make(map[string]bool)
	for _, u := range data.Users {
		if u.HasRole(models.RoleMerchant) {
			merchants[u.ID] = true
		}
	}
	for _, p := range data.Products {
		assert.True(t, merchants[p.SellerID], "product %s sold by a merchant", p.ID)
		assert.True(t, p.Price.IsPositive())
	}

	earliest := now.AddDate(0, 0, -historyDays)
	for _, o := range data.Orders {
		require.NotEmpty(t, o.Items)
		total := decimal.Zero
		for _, item := range o.Items {
			assert.Positive(t, item.Quantity)
			total = total.Add(item.Subtotal())
		}
		assert.True(t, total.Equal(o.Total), "order %s total matches its items", o.ID)
		assert.True(t, o.Status.IsKnown())
		assert.False(t, o.CreatedAt.Before(earliest))
		assert.True(t, o.CreatedAt.Before(now))
	}
}
