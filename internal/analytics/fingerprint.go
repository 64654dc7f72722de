package analytics

import (
	"encoding/binary"
	"fmt"

	"isaraya-analytics/internal/models"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// Operation labels used as fingerprint contexts
const (
	OpTopProducts = "top-products"
	OpAdminStats  = "admin-stats"
)

// fingerprinter folds the fields a computation reads into a 64-bit xxhash.
// Every value is length- or width-prefixed so adjacent fields cannot alias.
//
// Only fields the aggregation reads are hashed, so e.g. a change to a
// product's current price leaves the fingerprint (and the cached ranking,
// which uses recorded line item prices) untouched.
type fingerprinter struct {
	d   *xxhash.Digest
	buf [8]byte
}

func newFingerprinter(context string) *fingerprinter {
	f := &fingerprinter{d: xxhash.New()}
	f.writeString(context)
	return f
}

func (f *fingerprinter) writeInt(v int64) {
	binary.LittleEndian.PutUint64(f.buf[:], uint64(v))
	_, _ = f.d.Write(f.buf[:])
}

func (f *fingerprinter) writeString(s string) {
	f.writeInt(int64(len(s)))
	_, _ = f.d.WriteString(s)
}

func (f *fingerprinter) writeDecimal(d decimal.Decimal) {
	f.writeString(d.String())
}

func (f *fingerprinter) orders(orders []models.Order) {
	f.writeInt(int64(len(orders)))
	for _, o := range orders {
		f.writeString(o.ID)
		f.writeString(o.UserID)
		f.writeString(string(o.Status))
		f.writeDecimal(o.Total)
		f.writeInt(o.CreatedAt.UnixNano())
		f.writeInt(int64(len(o.Items)))
		for _, li := range o.Items {
			f.writeString(li.ProductID)
			f.writeInt(int64(li.Quantity))
			f.writeDecimal(li.UnitPrice)
		}
	}
}

func (f *fingerprinter) products(products []models.Product) {
	f.writeInt(int64(len(products)))
	for _, p := range products {
		f.writeString(p.ID)
		f.writeString(p.Name)
		f.writeString(p.SellerID)
		f.writeString(p.CategoryID)
	}
}

func (f *fingerprinter) users(users []models.User) {
	f.writeInt(int64(len(users)))
	for _, u := range users {
		f.writeString(u.ID)
		f.writeString(u.FirstName)
		f.writeString(u.LastName)
		f.writeInt(int64(len(u.Roles)))
		for _, r := range u.Roles {
			f.writeString(string(r))
		}
	}
}

func (f *fingerprinter) categories(categories []models.Category) {
	f.writeInt(int64(len(categories)))
	for _, c := range categories {
		f.writeString(c.ID)
		f.writeString(c.Name)
	}
}

func (f *fingerprinter) sum(context string) string {
	return fmt.Sprintf("%s:%016x", context, f.d.Sum64())
}

// TopProductsFingerprint identifies the inputs of a top products computation
func TopProductsFingerprint(orders []models.Order, products []models.Product, users []models.User, limit int) string {
	f := newFingerprinter(OpTopProducts)
	f.writeInt(int64(limit))
	f.orders(orders)
	f.products(products)
	f.users(users)
	return f.sum(OpTopProducts)
}

// AdminStatsFingerprint identifies the inputs of an admin stats computation.
// topN is the length of the embedded top product list.
func AdminStatsFingerprint(orders []models.Order, products []models.Product, users []models.User, categories []models.Category, topN int) string {
	f := newFingerprinter(OpAdminStats)
	f.writeInt(int64(topN))
	f.orders(orders)
	f.products(products)
	f.users(users)
	f.categories(categories)
	return f.sum(OpAdminStats)
}
