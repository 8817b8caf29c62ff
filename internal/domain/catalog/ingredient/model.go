// Package ingredient provides the raw-material catalog.
// Ingredient.Quantity is a materialized projection of the stock ledger:
// it must always equal the sum of signed movement deltas since creation.
package ingredient

import (
	"context"
	"time"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
)

// Ingredient represents a raw material tracked by the stock ledger.
type Ingredient struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// Quantity is the ledger projection. It mutates only in the same
	// atomic unit as a movement insert.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Unit of measure (units, kg, g, l, ml).
	Unit string `db:"unit" json:"unit"`

	Supplier          *string        `db:"supplier" json:"supplier,omitempty"`
	LowStockThreshold types.Quantity `db:"low_stock_threshold" json:"lowStockThreshold"`

	// UnitCost is the current replace-cost set by the last purchase.
	UnitCost         *types.Money `db:"unit_cost" json:"unitCost,omitempty"`
	LastPurchaseCost *types.Money `db:"last_purchase_cost" json:"lastPurchaseCost,omitempty"`
	LastPurchaseDate *time.Time   `db:"last_purchase_date" json:"lastPurchaseDate,omitempty"`

	Active bool `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an ingredient with zero stock. All on-hand quantity
// arrives through ledger movements.
func New(name, unit string) *Ingredient {
	now := time.Now()
	return &Ingredient{
		ID:        id.New(),
		Name:      name,
		Unit:      unit,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks ingredient invariants.
func (i *Ingredient) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if i.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}

	if i.LowStockThreshold.IsNegative() {
		return apperror.NewValidation("low stock threshold cannot be negative").
			WithDetail("field", "lowStockThreshold")
	}

	if i.UnitCost != nil && i.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	return nil
}

// TotalCost is the derived valuation: quantity × unit cost.
// Returns zero when no cost has been established yet.
func (i *Ingredient) TotalCost() types.Money {
	if i.UnitCost == nil {
		return types.Zero()
	}
	return i.Quantity.Decimal().Mul(*i.UnitCost)
}

// IsLowStock reports whether quantity is at or below the threshold.
func (i *Ingredient) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}
