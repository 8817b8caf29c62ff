package reports

import (
	"context"
)

// Repository defines read-only report data access.
type Repository interface {
	// GetLowStockIngredients returns ingredients with quantity at or
	// below their threshold, ascending by quantity.
	GetLowStockIngredients(ctx context.Context) ([]LowStockIngredient, error)

	// GetLowStockProducts returns products with stock at or below
	// their threshold, ascending by stock.
	GetLowStockProducts(ctx context.Context) ([]LowStockProduct, error)

	// GetValuationRows returns one row per active ingredient.
	GetValuationRows(ctx context.Context) ([]IngredientValuationRow, error)
}
