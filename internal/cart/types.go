// Package cart aggregates line items into totals and keeps the per-session
// cart state.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateLineItem = errors.New("duplicate line item id")
	ErrLineItemNotFound  = errors.New("line item not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrLoginRequired     = errors.New("login required for checkout")
	ErrCacheMiss         = errors.New("cart cache miss")
)

// ProductRef is the product a line item points at. The backend returns a
// null reference for deleted products.
type ProductRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
}

type LineItem struct {
	ID        string          `json:"id"`
	Product   *ProductRef     `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Totals struct {
	Lines    int             `json:"lines"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Snapshot is an immutable view of the cart at one point in time.
type Snapshot struct {
	Items  []LineItem `json:"items"`
	Totals Totals     `json:"totals"`
}
