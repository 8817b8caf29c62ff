// Package report_repo provides read-only PostgreSQL queries for
// inventory reports. Plain reads, no locks: reports tolerate a
// slightly stale snapshot.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"lemonpos/internal/domain/reports"
	"lemonpos/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetLowStockIngredients returns active ingredients at or below their
// threshold, most depleted first.
func (r *ReportRepo) GetLowStockIngredients(ctx context.Context) ([]reports.LowStockIngredient, error) {
	sql := `
		SELECT id, name, quantity, unit, low_stock_threshold, supplier
		FROM cat_ingredients
		WHERE active = true
		  AND quantity <= low_stock_threshold
		ORDER BY quantity, name
	`

	var rows []reports.LowStockIngredient
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql); err != nil {
		return nil, fmt.Errorf("low stock ingredients: %w", err)
	}

	return rows, nil
}

// GetLowStockProducts returns active products at or below their
// threshold, most depleted first.
func (r *ReportRepo) GetLowStockProducts(ctx context.Context) ([]reports.LowStockProduct, error) {
	sql := `
		SELECT id, name, category, stock, low_stock_threshold
		FROM cat_products
		WHERE active = true
		  AND stock <= low_stock_threshold
		ORDER BY stock, name
	`

	var rows []reports.LowStockProduct
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql); err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}

	return rows, nil
}

// GetValuationRows returns one row per active ingredient.
func (r *ReportRepo) GetValuationRows(ctx context.Context) ([]reports.IngredientValuationRow, error) {
	sql := `
		SELECT supplier, quantity, unit_cost
		FROM cat_ingredients
		WHERE active = true
	`

	var rows []reports.IngredientValuationRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql); err != nil {
		return nil, fmt.Errorf("valuation rows: %w", err)
	}

	return rows, nil
}

// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)
