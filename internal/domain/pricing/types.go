// Package pricing computes line and order totals from product, variant,
// add-on, and discount input. All arithmetic runs at full decimal
// precision; rounding happens once, on final totals.
package pricing

import (
	"github.com/shopspring/decimal"

	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
)

// Temperature selects the product price variant.
type Temperature string

const (
	TemperatureNone Temperature = "none"
	TemperatureHot  Temperature = "hot"
	TemperatureCold Temperature = "cold"
)

// Valid reports whether the temperature is known.
func (t Temperature) Valid() bool {
	switch t {
	case TemperatureNone, TemperatureHot, TemperatureCold:
		return true
	}
	return false
}

// PaymentMethod identifies how an order is paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether the payment method is known.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// IsCash reports whether tendered-amount validation applies.
func (p PaymentMethod) IsCash() bool {
	return p == PaymentCash
}

// AddOn is an owned value object attached to one order line.
// Each line holds its own copy; add-ons are never shared references.
type AddOn struct {
	Name     string      `db:"name" json:"name"`
	Price    types.Money `db:"price" json:"price"`
	Quantity int         `db:"quantity" json:"quantity"`
}

// Discount reduces one line. Amount is authoritative; Percentage is
// informational only and never recomputed into Amount, so the charged
// value cannot drift from what was quoted.
type Discount struct {
	Type       string          `db:"discount_type" json:"type"`
	Percentage decimal.Decimal `db:"percentage" json:"percentage"`
	Amount     types.Money     `db:"amount" json:"amount"`
}

// CartItem is the checkout input for one line, as submitted by the cart
// collaborator. SubmittedPrice is only a consistency check against the
// server-side price; it is never authoritative.
type CartItem struct {
	ProductID      id.ID        `json:"productId"`
	Temperature    Temperature  `json:"temperature"`
	Quantity       int          `json:"quantity"`
	AddOns         []AddOn      `json:"addOns,omitempty"`
	Discount       *Discount    `json:"discount,omitempty"`
	SubmittedPrice *types.Money `json:"submittedPrice,omitempty"`
}

// PricedLine is the result of pricing one cart item against trusted
// product data. Name, category and prices are historical snapshots.
type PricedLine struct {
	ProductID id.ID  `json:"productId"`
	Name      string `json:"name"`
	Category  string `json:"category"`

	// Price is the effective charged unit price after variant selection.
	Price types.Money `json:"price"`

	// BasePrice is retained alongside the effective price.
	BasePrice types.Money `json:"basePrice"`

	Temperature Temperature `json:"temperature"`
	Quantity    int         `json:"quantity"`
	AddOns      []AddOn     `json:"addOns,omitempty"`
	Discount    *Discount   `json:"discount,omitempty"`

	// Subtotal is before discount, Total after (floored at zero).
	// Both rounded to 2 decimal places.
	Subtotal types.Money `json:"subtotal"`
	Total    types.Money `json:"total"`
}
