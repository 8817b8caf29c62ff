package memory

import (
	"context"
	"slices"
	"strings"

	"lemonpos/internal/domain/reports"
)

// ReportRepo implements reports.Repository on the memory store.
type ReportRepo struct {
	s *Store
}

func (r *ReportRepo) GetLowStockIngredients(ctx context.Context) ([]reports.LowStockIngredient, error) {
	defer r.s.lock(ctx)()

	result := make([]reports.LowStockIngredient, 0, 16)
	for _, i := range r.s.ingredients {
		if !i.Active || !i.IsLowStock() {
			continue
		}
		result = append(result, reports.LowStockIngredient{
			ID:                i.ID,
			Name:              i.Name,
			Quantity:          i.Quantity,
			Unit:              i.Unit,
			LowStockThreshold: i.LowStockThreshold,
			Supplier:          cloneStringPtr(i.Supplier),
		})
	}

	slices.SortFunc(result, func(a, b reports.LowStockIngredient) int {
		if a.Quantity == b.Quantity {
			return strings.Compare(a.Name, b.Name)
		}
		if a.Quantity < b.Quantity {
			return -1
		}
		return 1
	})

	return result, nil
}

func (r *ReportRepo) GetLowStockProducts(ctx context.Context) ([]reports.LowStockProduct, error) {
	defer r.s.lock(ctx)()

	result := make([]reports.LowStockProduct, 0, 16)
	for _, p := range r.s.products {
		if !p.Active || !p.IsLowStock() {
			continue
		}
		result = append(result, reports.LowStockProduct{
			ID:                p.ID,
			Name:              p.Name,
			Category:          p.Category,
			Stock:             p.Stock,
			LowStockThreshold: p.LowStockThreshold,
		})
	}

	slices.SortFunc(result, func(a, b reports.LowStockProduct) int {
		if a.Stock == b.Stock {
			return strings.Compare(a.Name, b.Name)
		}
		return a.Stock - b.Stock
	})

	return result, nil
}

func (r *ReportRepo) GetValuationRows(ctx context.Context) ([]reports.IngredientValuationRow, error) {
	defer r.s.lock(ctx)()

	result := make([]reports.IngredientValuationRow, 0, len(r.s.ingredients))
	for _, i := range r.s.ingredients {
		if !i.Active {
			continue
		}
		result = append(result, reports.IngredientValuationRow{
			Supplier: cloneStringPtr(i.Supplier),
			Quantity: i.Quantity,
			UnitCost: cloneMoneyPtr(i.UnitCost),
		})
	}

	return result, nil
}

// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)
