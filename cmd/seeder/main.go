// Package main provides a data seeder for generating marketplace data
package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"isaraya-analytics/internal/config"
	"isaraya-analytics/internal/database"
	"isaraya-analytics/internal/logger"
	"isaraya-analytics/internal/models"
	"isaraya-analytics/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	clientCount   = 400
	merchantCount = 20
	adminCount    = 2
	productCount  = 300
	orderCount    = 20000
	batchSize     = 500
	historyDays   = 75
)

var categoryNames = []string{"Fashion", "Electronics", "Home", "Beauty", "Groceries", "Sports"}

var firstNames = []string{"Ada", "Kemi", "Tunde", "Ngozi", "Bola", "Chidi", "Zainab", "Femi", "Amaka", "Segun"}

var lastNames = []string{"Obi", "Adeyemi", "Okafor", "Bello", "Eze", "Lawal", "Nwosu", "Balogun"}

var productWords = []string{"Classic", "Premium", "Everyday", "Compact", "Deluxe", "Eco", "Smart", "Vintage"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	logger.Init("info", "text")

	logger.Info("Starting data seeder")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	data := generate(rng, time.Now())

	if err := seed(ctx, db, data); err != nil {
		logger.Fatalf("Failed to seed data: %v", err)
	}

	logger.Info("Data seeding completed successfully")
}

// dataset is one generated marketplace
type dataset struct {
	Users      []models.User
	Categories []models.Category
	Products   []models.Product
	Orders     []models.Order
}

func seed(ctx context.Context, db *database.DB, data *dataset) error {
	users := repository.NewUserRepository(db.DB)
	categories := repository.NewCategoryRepository(db.DB)
	products := repository.NewProductRepository(db.DB)
	orders := repository.NewOrderRepository(db.DB)

	logger.Info("Seeding users, categories and products...")

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(data.Users); start += batchSize {
			if err := users.BulkCreate(ctx, tx, data.Users[start:min(start+batchSize, len(data.Users))]); err != nil {
				return err
			}
		}
		if err := categories.BulkCreate(ctx, tx, data.Categories); err != nil {
			return err
		}
		for start := 0; start < len(data.Products); start += batchSize {
			if err := products.BulkCreate(ctx, tx, data.Products[start:min(start+batchSize, len(data.Products))]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	logger.Info("Seeding orders...")

	for start := 0; start < len(data.Orders); start += batchSize {
		batch := data.Orders[start:min(start+batchSize, len(data.Orders))]
		if err := db.WithTx(ctx, func(tx *sql.Tx) error {
			return orders.BulkCreate(ctx, tx, batch)
		}); err != nil {
			return fmt.Errorf("failed to create order batch: %w", err)
		}

		if (start+len(batch))%5000 == 0 {
			logger.Infof("Seeded %d orders", start+len(batch))
		}
	}

	logger.Infof("Successfully seeded %d users, %d products and %d orders",
		len(data.Users), len(data.Products), len(data.Orders))
	return nil
}

// generate builds a marketplace whose orders span historyDays before now.
// A few orders reference products missing from the catalog, matching what
// deleted listings leave behind.
func generate(rng *rand.Rand, now time.Time) *dataset {
	data := &dataset{}

	newUser := func(roles ...models.Role) models.User {
		return models.User{
			ID:        uuid.New().String(),
			FirstName: firstNames[rng.Intn(len(firstNames))],
			LastName:  lastNames[rng.Intn(len(lastNames))],
			Roles:     roles,
		}
	}

	var clients, merchants []models.User
	for i := 0; i < clientCount; i++ {
		clients = append(clients, newUser(models.RoleClient))
	}
	for i := 0; i < merchantCount; i++ {
		merchants = append(merchants, newUser(models.RoleMerchant, models.RoleClient))
	}
	data.Users = append(data.Users, clients...)
	data.Users = append(data.Users, merchants...)
	for i := 0; i < adminCount; i++ {
		data.Users = append(data.Users, newUser(models.RoleAdmin))
	}

	for _, name := range categoryNames {
		data.Categories = append(data.Categories, models.Category{ID: uuid.New().String(), Name: name})
	}

	for i := 0; i < productCount; i++ {
		category := data.Categories[rng.Intn(len(data.Categories))]
		product := models.Product{
			ID:       uuid.New().String(),
			Name:     fmt.Sprintf("%s %s %d", productWords[rng.Intn(len(productWords))], category.Name, i+1),
			Price:    decimal.New(int64(rng.Intn(49900)+100), -2),
			SellerID: merchants[rng.Intn(len(merchants))].ID,
		}
		// Roughly one product in twenty is left uncategorized.
		if rng.Intn(20) != 0 {
			product.CategoryID = category.ID
		}
		data.Products = append(data.Products, product)
	}

	start := now.AddDate(0, 0, -historyDays)
	span := int64(now.Sub(start))

	for i := 0; i < orderCount; i++ {
		order := models.Order{
			ID:        uuid.New().String(),
			UserID:    data.Users[rng.Intn(len(data.Users))].ID,
			Status:    models.OrderStatuses[rng.Intn(len(models.OrderStatuses))],
			CreatedAt: start.Add(time.Duration(rng.Int63n(span))),
		}

		for n := rng.Intn(4) + 1; n > 0; n-- {
			product := data.Products[rng.Intn(len(data.Products))]
			item := models.LineItem{
				ProductID: product.ID,
				Quantity:  rng.Intn(5) + 1,
				UnitPrice: product.Price,
			}
			if rng.Intn(200) == 0 {
				item.ProductID = uuid.New().String()
			}
			order.Items = append(order.Items, item)
			order.Total = order.Total.Add(item.Subtotal())
		}

		data.Orders = append(data.Orders, order)
	}

	return data
}
