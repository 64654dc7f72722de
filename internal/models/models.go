// Package models defines the marketplace entities read by the analytics engine
// and the derived values it produces
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a marketplace order as supplied by the backend
type Order struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Items     []LineItem      `json:"items" db:"items"`
	Total     decimal.Decimal `json:"total" db:"total"`
	Status    OrderStatus     `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// LineItem is one product+quantity+unit price entry within an order.
// UnitPrice is the price recorded at the time of sale.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns UnitPrice * Quantity
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Product represents a catalog product
type Product struct {
	ID         string          `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"` // current price, not used for revenue
	SellerID   string          `json:"seller_id" db:"seller_id"`
	CategoryID string          `json:"category_id" db:"category_id"`
}

// User represents a marketplace account
type User struct {
	ID        string `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Roles     []Role `json:"roles" db:"roles"`
}

// DisplayName returns "First Last", or the ID when both names are blank
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.ID
	}
	return name
}

// HasRole reports whether the user holds role
func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Category represents a product category
type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Role represents a user role
type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleMerchant Role = "MERCHANT"
	RoleAdmin    Role = "ADMIN"
)

// Roles lists every known role
var Roles = []Role{RoleClient, RoleMerchant, RoleAdmin}

// ParseRole normalizes a role name; ok is false for unknown roles
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// TopProduct is a ranked product with its sales rollup
type TopProduct struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	TotalSold    int             `json:"total_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	AveragePrice decimal.Decimal `json:"average_price"`
	SellerName   string          `json:"seller_name"`
}

// CategoryCount is the number of products listed under one category
type CategoryCount struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Products   int    `json:"products"`
}

// AggregatedStats holds the derived admin dashboard statistics
type AggregatedStats struct {
	TotalRevenue         decimal.Decimal     `json:"total_revenue"`
	TotalOrders          int                 `json:"total_orders"`
	OrdersByStatus       map[OrderStatus]int `json:"orders_by_status"`
	DistinctBuyers       int                 `json:"distinct_buyers"`
	CurrentPeriodRevenue decimal.Decimal     `json:"current_period_revenue"`
	PriorPeriodRevenue   decimal.Decimal     `json:"prior_period_revenue"`
	RevenueGrowth        float64             `json:"revenue_growth"`
	CurrentPeriodOrders  int                 `json:"current_period_orders"`
	PriorPeriodOrders    int                 `json:"prior_period_orders"`
	OrderGrowth          float64             `json:"order_growth"`
	UsersByRole          map[Role]int        `json:"users_by_role"`
	TotalUsers           int                 `json:"total_users"`
	TotalProducts        int                 `json:"total_products"`
	ProductsByCategory   []CategoryCount     `json:"products_by_category,omitempty"`
	TopProducts          []TopProduct        `json:"top_products"`
}

// Dashboard bundles the top product ranking with the admin stats
type Dashboard struct {
	TopProducts     []TopProduct     `json:"top_products"`
	Stats           *AggregatedStats `json:"stats"`
	SnapshotVersion uint64           `json:"snapshot_version"`
}

// HealthCheck represents the health status of the service
type HealthCheck struct {
	Status          string            `json:"status"`
	Version         string            `json:"version"`
	Checks          map[string]string `json:"checks"`
	SnapshotVersion uint64            `json:"snapshot_version"`
	SnapshotAge     string            `json:"snapshot_age,omitempty"`
	Uptime          string            `json:"uptime"`
	Timestamp       time.Time         `json:"timestamp"`
}

// SnapshotInfo describes the marketplace data the analytics are computed over
type SnapshotInfo struct {
	Version    uint64    `json:"version"`
	FetchedAt  time.Time `json:"fetched_at"`
	Orders     int       `json:"orders"`
	Products   int       `json:"products"`
	Users      int       `json:"users"`
	Categories int       `json:"categories"`
}
