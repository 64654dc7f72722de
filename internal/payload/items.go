// Package payload parses loosely shaped order item JSON into line items.
//
// Orders written by different client generations store their items in one of
// three shapes. Each element is classified into exactly one ItemShape at the
// boundary so nothing downstream has to inspect raw JSON.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"isaraya-analytics/internal/models"

	"github.com/shopspring/decimal"
)

// ItemShape identifies the wire shape a line item was parsed from
type ItemShape int

const (
	// ItemShapeFlat: {"productId":"p1","quantity":2,"price":"10.50"}
	ItemShapeFlat ItemShape = iota + 1
	// ItemShapeNested: {"product":{"id":"p1","price":10.5},"quantity":2,"unitPrice":10.5}
	ItemShapeNested
	// ItemShapeRef: {"product":"p1","qty":2,"unit_price":10.5}
	ItemShapeRef
)

func (s ItemShape) String() string {
	switch s {
	case ItemShapeFlat:
		return "flat"
	case ItemShapeNested:
		return "nested"
	case ItemShapeRef:
		return "ref"
	default:
		return "unknown"
	}
}

// ErrMalformed is returned when the payload is not valid item JSON
var ErrMalformed = errors.New("malformed order items payload")

// Item is a parsed line item tagged with its source shape
type Item struct {
	Shape    ItemShape
	LineItem models.LineItem
}

type rawItem struct {
	ProductID      *string          `json:"productId"`
	ProductIDSnake *string          `json:"product_id"`
	Product        json.RawMessage  `json:"product"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Qty            *decimal.Decimal `json:"qty"`
	Price          *decimal.Decimal `json:"price"`
	UnitPrice      *decimal.Decimal `json:"unitPrice"`
	UnitPriceSnake *decimal.Decimal `json:"unit_price"`
}

type rawProduct struct {
	ID    string           `json:"id"`
	OID   string           `json:"_id"`
	Price *decimal.Decimal `json:"price"`
}

type rawEnvelope struct {
	Items      json.RawMessage `json:"items"`
	OrderItems json.RawMessage `json:"orderItems"`
	Products   json.RawMessage `json:"products"`
}

// ParseItems returns the line items in raw. See ParseTagged for the rules.
func ParseItems(raw []byte) ([]models.LineItem, error) {
	tagged, err := ParseTagged(raw)
	if err != nil {
		return nil, err
	}

	items := make([]models.LineItem, 0, len(tagged))
	for _, t := range tagged {
		items = append(items, t.LineItem)
	}
	return items, nil
}

// ParseTagged parses raw, a JSON array of items in any mix of shapes or an
// object wrapping that array under "items", "orderItems" or "products".
// Empty input and JSON null yield no items. Elements without a product
// reference or with a non-positive quantity are skipped; a missing quantity
// counts as 1 and a missing price as 0.
func ParseTagged(raw []byte) ([]Item, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
	case '{':
		var env rawEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch {
		case len(env.Items) > 0:
			raw = env.Items
		case len(env.OrderItems) > 0:
			raw = env.OrderItems
		default:
			raw = env.Products
		}
		return ParseTagged(raw)
	default:
		return nil, fmt.Errorf("%w: expected array or object", ErrMalformed)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	items := make([]Item, 0, len(elems))
	for i, elem := range elems {
		item, ok, err := parseItem(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformed, i, err)
		}
		if ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func parseItem(elem json.RawMessage) (Item, bool, error) {
	var r rawItem
	if err := json.Unmarshal(elem, &r); err != nil {
		return Item{}, false, err
	}

	var (
		shape        ItemShape
		productID    string
		productPrice *decimal.Decimal
	)

	product := bytes.TrimSpace(r.Product)
	switch {
	case len(product) > 0 && product[0] == '{':
		var p rawProduct
		if err := json.Unmarshal(product, &p); err != nil {
			return Item{}, false, err
		}
		shape = ItemShapeNested
		productID = firstNonEmpty(p.ID, p.OID)
		productPrice = p.Price
	case len(product) > 0 && product[0] == '"':
		if err := json.Unmarshal(product, &productID); err != nil {
			return Item{}, false, err
		}
		shape = ItemShapeRef
	case r.ProductID != nil || r.ProductIDSnake != nil:
		shape = ItemShapeFlat
		productID = firstNonEmpty(deref(r.ProductID), deref(r.ProductIDSnake))
	}

	if productID == "" {
		return Item{}, false, nil
	}

	quantity := int64(1)
	if q := firstDecimal(r.Quantity, r.Qty); q != nil {
		quantity = q.IntPart()
	}
	if quantity <= 0 {
		return Item{}, false, nil
	}

	price := decimal.Zero
	if p := firstDecimal(r.UnitPrice, r.UnitPriceSnake, r.Price, productPrice); p != nil {
		price = *p
	}

	return Item{
		Shape: shape,
		LineItem: models.LineItem{
			ProductID: productID,
			Quantity:  int(quantity),
			UnitPrice: price,
		},
	}, true, nil
}

func firstDecimal(values ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
