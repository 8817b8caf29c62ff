package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lemonpos/internal/core/types"
)

// Service builds inventory reports on demand.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LowStock returns ingredients and products at or below their
// thresholds, most depleted first. Repeated calls without intervening
// writes return identical results.
func (s *Service) LowStock(ctx context.Context) (*LowStockReport, error) {
	ingredients, err := s.repo.GetLowStockIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock ingredients: %w", err)
	}

	products, err := s.repo.GetLowStockProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}

	return &LowStockReport{
		GeneratedAt: time.Now(),
		Ingredients: ingredients,
		Products:    products,
	}, nil
}

// Valuation computes on-hand inventory value over active ingredients,
// bucketed by supplier. Ingredients without an established unit cost
// contribute zero value but are still counted.
func (s *Service) Valuation(ctx context.Context) (*ValuationReport, error) {
	rows, err := s.repo.GetValuationRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("valuation rows: %w", err)
	}

	type bucket struct {
		total types.Money
		count int
	}
	buckets := make(map[string]*bucket)
	total := types.Zero()

	for _, row := range rows {
		value := types.Zero()
		if row.UnitCost != nil {
			value = row.Quantity.Decimal().Mul(*row.UnitCost)
		}

		name := UnspecifiedSupplier
		if row.Supplier != nil && *row.Supplier != "" {
			name = *row.Supplier
		}

		b, ok := buckets[name]
		if !ok {
			b = &bucket{total: types.Zero()}
			buckets[name] = b
		}
		b.total = b.total.Add(value)
		b.count++
		total = total.Add(value)
	}

	bySupplier := make([]SupplierValue, 0, len(buckets))
	for name, b := range buckets {
		bySupplier = append(bySupplier, SupplierValue{
			Supplier:   name,
			TotalValue: types.RoundMoney(b.total),
			ItemCount:  b.count,
		})
	}

	// Named suppliers alphabetically, the unspecified bucket last.
	sort.Slice(bySupplier, func(i, j int) bool {
		a, b := bySupplier[i].Supplier, bySupplier[j].Supplier
		if a == UnspecifiedSupplier {
			return false
		}
		if b == UnspecifiedSupplier {
			return true
		}
		return a < b
	})

	return &ValuationReport{
		GeneratedAt:     time.Now(),
		TotalValue:      types.RoundMoney(total),
		ValueBySupplier: bySupplier,
		TotalItems:      len(rows),
	}, nil
}
