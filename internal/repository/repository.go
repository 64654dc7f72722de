// Package repository provides read access to the marketplace collections
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"isaraya-analytics/internal/logger"
	"isaraya-analytics/internal/metrics"
	"isaraya-analytics/internal/models"
	"isaraya-analytics/internal/payload"

	"github.com/lib/pq"
)

// OrderRepository handles order data operations
type OrderRepository interface {
	List(ctx context.Context) ([]models.Order, error)
	BulkCreate(ctx context.Context, tx *sql.Tx, orders []models.Order) error
}

// ProductRepository handles product data operations
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	BulkCreate(ctx context.Context, tx *sql.Tx, products []models.Product) error
}

// UserRepository handles user data operations
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	BulkCreate(ctx context.Context, tx *sql.Tx, users []models.User) error
}

// CategoryRepository handles category data operations
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	BulkCreate(ctx context.Context, tx *sql.Tx, categories []models.Category) error
}

// bulkInsertQuery builds "INSERT INTO table (cols) VALUES ($1,..),(..)" for rows rows
func bulkInsertQuery(table string, columns []string, rows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	n := len(columns)
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for j := 0; j < n; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*n+j+1)
		}
		b.WriteString(")")
	}

	b.WriteString(" ON CONFLICT (id) DO NOTHING")
	return b.String()
}

// orderRepository implements OrderRepository
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) List(ctx context.Context) ([]models.Order, error) {
	metrics.DatabaseQueriesTotal.WithLabelValues("orders_list").Inc()

	query := `
		SELECT id, user_id, items, total, status, created_at
		FROM orders
		ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var (
			order  models.Order
			items  []byte
			status string
		)
		if err := rows.Scan(&order.ID, &order.UserID, &items, &order.Total, &status, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		order.Status = models.ParseOrderStatus(status)
		order.Items = decodeItems(order.ID, items)
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// decodeItems parses the items column; a malformed payload keeps the order
// with no items so its total and status still count
func decodeItems(orderID string, raw []byte) []models.LineItem {
	items, err := payload.ParseItems(raw)
	if err != nil {
		logger.WithComponent("repository").
			WithError(err).
			WithField("order_id", orderID).
			Warn("Discarding malformed order items")
		return nil
	}
	return items
}

func (r *orderRepository) BulkCreate(ctx context.Context, tx *sql.Tx, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	columns := []string{"id", "user_id", "items", "total", "status", "created_at"}
	args := make([]interface{}, 0, len(orders)*len(columns))
	for _, o := range orders {
		items, err := json.Marshal(o.Items)
		if err != nil {
			return fmt.Errorf("failed to marshal items for order %s: %w", o.ID, err)
		}
		args = append(args, o.ID, o.UserID, string(items), o.Total, string(o.Status), o.CreatedAt)
	}

	if _, err := tx.ExecContext(ctx, bulkInsertQuery("orders", columns, len(orders)), args...); err != nil {
		return fmt.Errorf("failed to bulk create orders: %w", err)
	}

	return nil
}

// productRepository implements ProductRepository
type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context) ([]models.Product, error) {
	metrics.DatabaseQueriesTotal.WithLabelValues("products_list").Inc()

	query := `
		SELECT id, name, price, seller_id, category_id
		FROM products
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			product    models.Product
			categoryID sql.NullString
		)
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.SellerID, &categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		product.CategoryID = categoryID.String
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

func (r *productRepository) BulkCreate(ctx context.Context, tx *sql.Tx, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	columns := []string{"id", "name", "price", "seller_id", "category_id"}
	args := make([]interface{}, 0, len(products)*len(columns))
	for _, p := range products {
		categoryID := sql.NullString{String: p.CategoryID, Valid: p.CategoryID != ""}
		args = append(args, p.ID, p.Name, p.Price, p.SellerID, categoryID)
	}

	if _, err := tx.ExecContext(ctx, bulkInsertQuery("products", columns, len(products)), args...); err != nil {
		return fmt.Errorf("failed to bulk create products: %w", err)
	}

	return nil
}

// userRepository implements UserRepository
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	metrics.DatabaseQueriesTotal.WithLabelValues("users_list").Inc()

	query := `
		SELECT id, first_name, last_name, roles
		FROM users
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var (
			user  models.User
			roles []string
		)
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, pq.Array(&roles)); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Roles = parseRoles(roles)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// parseRoles keeps the recognized roles, dropping unknown names
func parseRoles(raw []string) []models.Role {
	roles := make([]models.Role, 0, len(raw))
	for _, s := range raw {
		if role, ok := models.ParseRole(s); ok {
			roles = append(roles, role)
		}
	}
	return roles
}

func (r *userRepository) BulkCreate(ctx context.Context, tx *sql.Tx, users []models.User) error {
	if len(users) == 0 {
		return nil
	}

	columns := []string{"id", "first_name", "last_name", "roles"}
	args := make([]interface{}, 0, len(users)*len(columns))
	for _, u := range users {
		roles := make([]string, len(u.Roles))
		for i, role := range u.Roles {
			roles[i] = string(role)
		}
		args = append(args, u.ID, u.FirstName, u.LastName, pq.Array(roles))
	}

	if _, err := tx.ExecContext(ctx, bulkInsertQuery("users", columns, len(users)), args...); err != nil {
		return fmt.Errorf("failed to bulk create users: %w", err)
	}

	return nil
}

// categoryRepository implements CategoryRepository
type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	metrics.DatabaseQueriesTotal.WithLabelValues("categories_list").Inc()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) BulkCreate(ctx context.Context, tx *sql.Tx, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	columns := []string{"id", "name"}
	args := make([]interface{}, 0, len(categories)*len(columns))
	for _, c := range categories {
		args = append(args, c.ID, c.Name)
	}

	if _, err := tx.ExecContext(ctx, bulkInsertQuery("categories", columns, len(categories)), args...); err != nil {
		return fmt.Errorf("failed to bulk create categories: %w", err)
	}

	return nil
}
