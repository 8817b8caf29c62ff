// Package reports derives low-stock and valuation reports from ledger
// and catalog state. Reports are dashboards, not settlement records:
// they read a possibly slightly stale snapshot and never block writers.
package reports

import (
	"time"

	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
)

// --- Low stock ---

// LowStockIngredient is an ingredient at or below its threshold.
type LowStockIngredient struct {
	ID                id.ID          `db:"id" json:"id"`
	Name              string         `db:"name" json:"name"`
	Quantity          types.Quantity `db:"quantity" json:"quantity"`
	Unit              string         `db:"unit" json:"unit"`
	LowStockThreshold types.Quantity `db:"low_stock_threshold" json:"lowStockThreshold"`
	Supplier          *string        `db:"supplier" json:"supplier,omitempty"`
}

// LowStockProduct is a product at or below its threshold.
type LowStockProduct struct {
	ID                id.ID  `db:"id" json:"id"`
	Name              string `db:"name" json:"name"`
	Category          string `db:"category" json:"category"`
	Stock             int    `db:"stock" json:"stock"`
	LowStockThreshold int    `db:"low_stock_threshold" json:"lowStockThreshold"`
}

// LowStockReport lists depleted items, most depleted first.
type LowStockReport struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	Ingredients []LowStockIngredient `json:"ingredients"`
	Products    []LowStockProduct    `json:"products"`
}

// --- Valuation ---

// IngredientValuationRow is the raw input for valuation bucketing:
// one active ingredient's supplier, quantity and current unit cost.
type IngredientValuationRow struct {
	Supplier *string        `db:"supplier" json:"supplier,omitempty"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`
	UnitCost *types.Money   `db:"unit_cost" json:"unitCost,omitempty"`
}

// SupplierValue is one valuation bucket.
type SupplierValue struct {
	Supplier   string      `json:"supplier"`
	TotalValue types.Money `json:"totalValue"`
	ItemCount  int         `json:"itemCount"`
}

// ValuationReport is the on-hand inventory value across active
// ingredients, grouped by supplier.
type ValuationReport struct {
	GeneratedAt     time.Time       `json:"generatedAt"`
	TotalValue      types.Money     `json:"totalValue"`
	ValueBySupplier []SupplierValue `json:"valueBySupplier"`
	TotalItems      int             `json:"totalItems"`
}

// UnspecifiedSupplier is the bucket name for ingredients without a supplier.
const UnspecifiedSupplier = "unspecified"
