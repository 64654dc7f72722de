package routes_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"isaraya-analytics/internal/analytics"
	"isaraya-analytics/internal/config"
	"isaraya-analytics/internal/database"
	"isaraya-analytics/internal/handlers"
	"isaraya-analytics/internal/logger"
	"isaraya-analytics/internal/models"
	"isaraya-analytics/internal/repository"
	"isaraya-analytics/internal/routes"
	"isaraya-analytics/internal/service"
	"isaraya-analytics/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB connects to the test database, skipping when none is reachable
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "5433"),
		User:     envOr("TEST_DB_USER", "postgres"),
		Password: envOr("TEST_DB_PASSWORD", "postgres"),
		DBName:   envOr("TEST_DB_NAME", "isaraya_test"),
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  2,
	}

	db, err := database.New(cfg)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))

	_, err = db.ExecContext(ctx, `
		DELETE FROM orders;
		DELETE FROM products;
		DELETE FROM categories;
		DELETE FROM users;
	`)
	require.NoError(t, err)

	return db
}

type testServer struct {
	*httptest.Server
	engine *analytics.Engine
	store  *store.Store
}

func setupTestServer(t *testing.T) (*testServer, *database.DB) {
	logger.Init("debug", "text")
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	seedMarketplace(t, db)

	snapshots := store.New(store.Sources{
		Orders:     repository.NewOrderRepository(db.DB),
		Products:   repository.NewProductRepository(db.DB),
		Users:      repository.NewUserRepository(db.DB),
		Categories: repository.NewCategoryRepository(db.DB),
	})
	engine := analytics.NewEngine(analytics.WithStatsTopN(3))

	services := service.NewServices(&service.Dependencies{DB: db, Store: snapshots, Engine: engine})

	_, err := snapshots.Refresh(context.Background())
	require.NoError(t, err)

	server := httptest.NewServer(routes.SetupRoutes(handlers.New(services, 5)))

	t.Cleanup(func() {
		server.Close()
		db.Close()
	})

	return &testServer{Server: server, engine: engine, store: snapshots}, db
}

func seedMarketplace(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	users := []models.User{
		{ID: "u-1", FirstName: "Ada", LastName: "Obi", Roles: []models.Role{models.RoleClient}},
		{ID: "m-1", FirstName: "Kemi", LastName: "Store", Roles: []models.Role{models.RoleMerchant}},
		{ID: "m-2", FirstName: "Tunde", LastName: "Goods", Roles: []models.Role{models.RoleMerchant, models.RoleClient}},
		{ID: "a-1", FirstName: "Root", LastName: "Admin", Roles: []models.Role{models.RoleAdmin}},
	}
	categories := []models.Category{{ID: "c-1", Name: "Fashion"}, {ID: "c-2", Name: "Home"}}
	products := []models.Product{
		{ID: "p-shoe", Name: "Shoe", Price: decimal.NewFromInt(50), SellerID: "m-1", CategoryID: "c-1"},
		{ID: "p-bag", Name: "Bag", Price: decimal.NewFromInt(80), SellerID: "m-2", CategoryID: "c-1"},
		{ID: "p-mug", Name: "Mug", Price: decimal.NewFromInt(10), SellerID: "m-2"},
	}
	orders := []models.Order{
		{
			ID: "o-1", UserID: "u-1", Status: models.OrderStatusDelivered, CreatedAt: now.Add(-48 * time.Hour),
			Items: []models.LineItem{
				{ProductID: "p-shoe", Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
				{ProductID: "p-mug", Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
			},
			Total: decimal.NewFromInt(130),
		},
		{
			ID: "o-2", UserID: "m-2", Status: models.OrderStatusPending, CreatedAt: now.Add(-40 * 24 * time.Hour),
			Items: []models.LineItem{{ProductID: "p-bag", Quantity: 1, UnitPrice: decimal.NewFromInt(80)}},
			Total: decimal.NewFromInt(80),
		},
	}

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := repository.NewUserRepository(db.DB).BulkCreate(ctx, tx, users); err != nil {
			return err
		}
		if err := repository.NewCategoryRepository(db.DB).BulkCreate(ctx, tx, categories); err != nil {
			return err
		}
		if err := repository.NewProductRepository(db.DB).BulkCreate(ctx, tx, products); err != nil {
			return err
		}
		return repository.NewOrderRepository(db.DB).BulkCreate(ctx, tx, orders)
	})
	require.NoError(t, err)

	// Older clients wrote nested items with camelCase keys and string prices.
	_, err = db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, items, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		"o-3", "u-1",
		`{"orderItems":[{"product":{"_id":"p-shoe","price":"55.00"},"qty":1}]}`,
		"55.00", "return-in-progress", now.Add(-time.Hour),
	)
	require.NoError(t, err)
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if v != nil {
		require.NoError(t, json.Unmarshal(body, v), string(body))
	}
	return resp.StatusCode
}

func TestTopProductsFromDatabase(t *testing.T) {
	server, _ := setupTestServer(t)

	var body struct {
		TopProducts []models.TopProduct `json:"top_products"`
	}
	status := getJSON(t, server.URL+"/analytics/top-products?limit=2", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.TopProducts, 2)

	shoe := body.TopProducts[0]
	assert.Equal(t, "p-shoe", shoe.ProductID)
	assert.Equal(t, 3, shoe.TotalSold)
	assert.True(t, decimal.NewFromInt(155).Equal(shoe.Revenue))
	assert.Equal(t, "Kemi Store", shoe.SellerName)
	assert.Equal(t, "p-bag", body.TopProducts[1].ProductID)
}

func TestMerchantTopProductsFromDatabase(t *testing.T) {
	server, _ := setupTestServer(t)

	var body struct {
		TopProducts []models.TopProduct `json:"top_products"`
	}
	status := getJSON(t, server.URL+"/analytics/merchants/m-2/top-products", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.TopProducts, 2)
	assert.Equal(t, "p-bag", body.TopProducts[0].ProductID)
	assert.Equal(t, "p-mug", body.TopProducts[1].ProductID)
}

func TestAdminStatsFromDatabase(t *testing.T) {
	server, _ := setupTestServer(t)

	var stats models.AggregatedStats
	status := getJSON(t, server.URL+"/analytics/admin-stats", &stats)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 3, stats.TotalOrders)
	assert.True(t, decimal.NewFromInt(265).Equal(stats.TotalRevenue))
	assert.Equal(t, 1, stats.OrdersByStatus[models.OrderStatusReturnInProgress])
	assert.Equal(t, 2, stats.DistinctBuyers)
	assert.Equal(t, 2, stats.CurrentPeriodOrders)
	assert.Equal(t, 1, stats.PriorPeriodOrders)
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Len(t, stats.TopProducts, 3)
}

func TestConcurrentTopProductsShareOneComputation(t *testing.T) {
	server, _ := setupTestServer(t)

	const numRequests = 50

	var wg sync.WaitGroup
	statuses := make(chan int, numRequests)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := http.Get(server.URL + "/analytics/top-products")
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}

	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, http.StatusOK, status)
	}
	assert.Equal(t, int64(1), server.engine.Computations())
}

func TestRefreshPicksUpNewOrders(t *testing.T) {
	server, db := setupTestServer(t)

	var before models.AggregatedStats
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/analytics/admin-stats", &before))

	_, err := db.Exec(`
		INSERT INTO orders (id, user_id, items, total, status, created_at)
		VALUES ('o-4', 'u-1', '[{"productId":"p-bag","quantity":2,"unitPrice":80}]', 160, 'PAYMENT_SUCCESSFUL', NOW())`)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/analytics/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint64(2), server.store.Snapshot().Version)

	var after models.AggregatedStats
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/analytics/admin-stats", &after))
	assert.Equal(t, before.TotalOrders+1, after.TotalOrders)
	assert.True(t, before.TotalRevenue.Add(decimal.NewFromInt(160)).Equal(after.TotalRevenue))
}
