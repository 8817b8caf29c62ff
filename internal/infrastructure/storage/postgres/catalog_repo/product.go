// Package catalog_repo provides PostgreSQL implementations for the
// product and ingredient catalogs.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/domain/catalog/product"
	"lemonpos/internal/infrastructure/storage/postgres"
)

const productsTable = "cat_products"

var productColumns = []string{
	"id", "name", "base_price", "hot_price", "cold_price",
	"category", "stock", "low_stock_threshold", "active",
	"created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.Name, p.BasePrice, p.HotPrice, p.ColdPrice,
			p.Category, p.Stock, p.LowStockThreshold, p.Active,
			p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("product", "name", p.Name)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// Update modifies catalog fields. Stock is excluded: it only moves
// through DecrementStock/IncrementStock.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		Set("name", p.Name).
		Set("base_price", p.BasePrice).
		Set("hot_price", p.HotPrice).
		Set("cold_price", p.ColdPrice).
		Set("category", p.Category).
		Set("low_stock_threshold", p.LowStockThreshold).
		Set("active", p.Active).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID.String())
	}

	return nil
}

// GetByID retrieves a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// List retrieves products with filtering and pagination.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable)

	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}

	q = q.OrderBy("category", "name")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

// DecrementStock subtracts quantity with a non-negativity guard in a
// single statement, so concurrent commits cannot oversell.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID id.ID, quantity int) error {
	sql := `
		UPDATE cat_products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
	`

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either missing or insufficient; distinguish for the caller.
		p, getErr := r.GetByID(ctx, productID)
		if getErr != nil {
			return getErr
		}
		return apperror.NewInsufficientStock("product", productID.String(), float64(quantity), float64(p.Stock))
	}

	return nil
}

// IncrementStock adds received quantity to stock.
func (r *ProductRepo) IncrementStock(ctx context.Context, productID id.ID, quantity int) error {
	sql := `
		UPDATE cat_products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1
	`

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, productID, quantity)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}

	return nil
}

// Ensure interface compliance.
var _ product.Repository = (*ProductRepo)(nil)
