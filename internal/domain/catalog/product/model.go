// Package product provides the menu product catalog.
package product

import (
	"context"
	"time"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
)

// DefaultLowStockThreshold is applied when a product is created without one.
const DefaultLowStockThreshold = 10

// Product represents a sellable menu item.
// Stock is a denormalized counter decremented at order commit;
// it is independent of the ingredient ledger.
type Product struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// BasePrice is charged when no temperature variant applies.
	BasePrice types.Money `db:"base_price" json:"basePrice"`

	// HotPrice and ColdPrice override BasePrice for the matching variant.
	HotPrice  *types.Money `db:"hot_price" json:"hotPrice,omitempty"`
	ColdPrice *types.Money `db:"cold_price" json:"coldPrice,omitempty"`

	Category string `db:"category" json:"category"`

	// Stock invariant: never negative.
	Stock             int `db:"stock" json:"stock"`
	LowStockThreshold int `db:"low_stock_threshold" json:"lowStockThreshold"`

	Active bool `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a product with defaults applied.
func New(name, category string, basePrice types.Money) *Product {
	now := time.Now()
	return &Product{
		ID:                id.New(),
		Name:              name,
		BasePrice:         basePrice,
		Category:          category,
		LowStockThreshold: DefaultLowStockThreshold,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if p.BasePrice.IsNegative() {
		return apperror.NewValidation("base price cannot be negative").
			WithDetail("field", "basePrice")
	}

	if p.HotPrice != nil && p.HotPrice.IsNegative() {
		return apperror.NewValidation("hot price cannot be negative").
			WithDetail("field", "hotPrice")
	}

	if p.ColdPrice != nil && p.ColdPrice.IsNegative() {
		return apperror.NewValidation("cold price cannot be negative").
			WithDetail("field", "coldPrice")
	}

	if p.Stock < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}

	if p.LowStockThreshold < 0 {
		return apperror.NewValidation("low stock threshold cannot be negative").
			WithDetail("field", "lowStockThreshold")
	}

	return nil
}

// IsLowStock reports whether the product is at or below its threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
