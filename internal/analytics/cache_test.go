package analytics

import (
	"testing"
	"time"

	"isaraya-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return created }

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("b", 2)
	c.Put("a", 1)
	c.Put("b", 3)

	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	entry, ok := c.Entry("a")
	require.True(t, ok)
	assert.Equal(t, "a", entry.Fingerprint)
	assert.Equal(t, created, entry.CreatedAt)

	assert.Equal(t, CacheStats{Entries: 2, Fingerprints: []string{"a", "b"}}, c.Stats())

	c.Clear()
	assert.Equal(t, CacheStats{Entries: 0, Fingerprints: []string{}}, c.Stats())
}

// countingCache records traffic through the Cache interface
type countingCache struct {
	*MemoryCache
	gets, puts int
}

func (c *countingCache) Get(fp string) (any, bool) {
	c.gets++
	return c.MemoryCache.Get(fp)
}

func (c *countingCache) Put(fp string, v any) {
	c.puts++
	c.MemoryCache.Put(fp, v)
}

func TestEngineUsesInjectedCache(t *testing.T) {
	orders, products, users := fixture()
	cache := &countingCache{MemoryCache: NewMemoryCache()}
	engine := NewEngine(WithCache(cache))

	_, err := engine.ComputeTopProducts(orders, products, users, 2)
	require.NoError(t, err)
	_, err = engine.ComputeTopProducts(orders, products, users, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.puts)
	assert.Equal(t, 3, cache.gets, "miss, re-check under singleflight, hit")
}

func TestFingerprintIsDeterministic(t *testing.T) {
	orders, products, users := fixture()

	a := TopProductsFingerprint(orders, products, users, 5)
	b := TopProductsFingerprint(orders, products, users, 5)
	assert.Equal(t, a, b)
	assert.Regexp(t, `^top-products:[0-9a-f]{16}$`, a)

	assert.NotEqual(t, a, TopProductsFingerprint(orders, products, users, 6))
}

func TestFingerprintTracksReadFields(t *testing.T) {
	orders, products, users := fixture()
	base := TopProductsFingerprint(orders, products, users, 5)

	mutations := map[string]func(o []models.Order, p []models.Product, u []models.User){
		"line item quantity": func(o []models.Order, _ []models.Product, _ []models.User) { o[0].Items[0].Quantity++ },
		"line item price":    func(o []models.Order, _ []models.Product, _ []models.User) { o[0].Items[0].UnitPrice = dec("1") },
		"order status":       func(o []models.Order, _ []models.Product, _ []models.User) { o[0].Status = models.OrderStatusReturned },
		"product name":       func(_ []models.Order, p []models.Product, _ []models.User) { p[1].Name = "Tote" },
		"product seller":     func(_ []models.Order, p []models.Product, _ []models.User) { p[1].SellerID = "u-buyer" },
		"user name":          func(_ []models.Order, _ []models.Product, u []models.User) { u[1].LastName = "Market" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			o, p, u := fixture()
			mutate(o, p, u)
			assert.NotEqual(t, base, TopProductsFingerprint(o, p, u, 5))
		})
	}
}

func TestFingerprintFieldBoundaries(t *testing.T) {
	a := []models.Product{{ID: "ab", Name: "c"}}
	b := []models.Product{{ID: "a", Name: "bc"}}
	assert.NotEqual(t, TopProductsFingerprint(nil, a, nil, 1), TopProductsFingerprint(nil, b, nil, 1))
}

func TestFingerprintContextsDiffer(t *testing.T) {
	orders, products, users := fixture()
	assert.NotEqual(t,
		TopProductsFingerprint(orders, products, users, 5),
		AdminStatsFingerprint(orders, products, users, nil, 5),
	)
}
