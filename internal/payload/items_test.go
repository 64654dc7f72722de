package payload

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaggedShapes(t *testing.T) {
	raw := `[
		{"productId":"p1","quantity":2,"price":"10.50"},
		{"product":{"id":"p2","price":7},"quantity":3,"unitPrice":6.5},
		{"product":{"_id":"p3","price":4},"quantity":1},
		{"product":"p4","qty":5,"unit_price":1.25},
		{"product_id":"p5","quantity":"4","price":2}
	]`

	items, err := ParseTagged([]byte(raw))
	require.NoError(t, err)
	require.Len(t, items, 5)

	want := []struct {
		shape ItemShape
		id    string
		qty   int
		price string
	}{
		{ItemShapeFlat, "p1", 2, "10.5"},
		{ItemShapeNested, "p2", 3, "6.5"},
		{ItemShapeNested, "p3", 1, "4"},
		{ItemShapeRef, "p4", 5, "1.25"},
		{ItemShapeFlat, "p5", 4, "2"},
	}
	for i, w := range want {
		assert.Equal(t, w.shape, items[i].Shape, "item %d", i)
		assert.Equal(t, w.id, items[i].LineItem.ProductID, "item %d", i)
		assert.Equal(t, w.qty, items[i].LineItem.Quantity, "item %d", i)
		assert.True(t, decimal.RequireFromString(w.price).Equal(items[i].LineItem.UnitPrice), "item %d: %s", i, items[i].LineItem.UnitPrice)
	}
}

func TestParseItemsEnvelopes(t *testing.T) {
	for _, raw := range []string{
		`{"items":[{"productId":"p1","quantity":1,"price":3}]}`,
		`{"orderItems":[{"productId":"p1","quantity":1,"price":3}]}`,
		`{"products":[{"product":"p1","qty":1,"price":3}]}`,
	} {
		items, err := ParseItems([]byte(raw))
		require.NoError(t, err, raw)
		require.Len(t, items, 1, raw)
		assert.Equal(t, "p1", items[0].ProductID)
	}
}

func TestParseItemsSkipsUnusableElements(t *testing.T) {
	raw := `[
		{"quantity":2,"price":1},
		{"productId":"p1","quantity":0,"price":1},
		{"productId":"p2","quantity":-1,"price":1},
		{"product":{"price":5},"quantity":1},
		{"productId":"p3"}
	]`

	items, err := ParseItems([]byte(raw))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p3", items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity, "missing quantity counts as one")
	assert.True(t, items[0].UnitPrice.IsZero())
}

func TestParseItemsEmpty(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "[]", "{}"} {
		items, err := ParseItems([]byte(raw))
		require.NoError(t, err, raw)
		assert.Empty(t, items, raw)
	}
}

func TestParseItemsMalformed(t *testing.T) {
	for _, raw := range []string{
		`"items"`,
		`[{"productId":"p1","quantity":"two"}]`,
		`[{"productId":"p1"`,
		`{"items":42}`,
	} {
		_, err := ParseItems([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformed, raw)
	}
}

func TestItemShapeString(t *testing.T) {
	assert.Equal(t, "flat", ItemShapeFlat.String())
	assert.Equal(t, "nested", ItemShapeNested.String())
	assert.Equal(t, "ref", ItemShapeRef.String())
	assert.Equal(t, "unknown", ItemShape(0).String())
}
