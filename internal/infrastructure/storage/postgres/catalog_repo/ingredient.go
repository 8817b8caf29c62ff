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
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/infrastructure/storage/postgres"
)

const ingredientsTable = "cat_ingredients"

var ingredientColumns = []string{
	"id", "name", "quantity", "unit", "supplier", "low_stock_threshold",
	"unit_cost", "last_purchase_cost", "last_purchase_date", "active",
	"created_at", "updated_at",
}

// IngredientRepo implements ingredient.Repository.
type IngredientRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewIngredientRepo creates a new ingredient repository.
func NewIngredientRepo(txManager *postgres.TxManager) *IngredientRepo {
	return &IngredientRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new ingredient.
func (r *IngredientRepo) Create(ctx context.Context, i *ingredient.Ingredient) error {
	q := r.builder.Insert(ingredientsTable).
		Columns(ingredientColumns...).
		Values(
			i.ID, i.Name, i.Quantity, i.Unit, i.Supplier, i.LowStockThreshold,
			i.UnitCost, i.LastPurchaseCost, i.LastPurchaseDate, i.Active,
			i.CreatedAt, i.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("ingredient", "name", i.Name)
		}
		return fmt.Errorf("insert ingredient: %w", err)
	}

	return nil
}

// Update modifies catalog fields. Quantity and cost columns are
// excluded: only the ledger writes them, via ApplyProjection.
func (r *IngredientRepo) Update(ctx context.Context, i *ingredient.Ingredient) error {
	q := r.builder.Update(ingredientsTable).
		Set("name", i.Name).
		Set("unit", i.Unit).
		Set("supplier", i.Supplier).
		Set("low_stock_threshold", i.LowStockThreshold).
		Set("active", i.Active).
		Set("updated_at", i.UpdatedAt).
		Where(squirrel.Eq{"id": i.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("ingredient", i.ID.String())
	}

	return nil
}

// GetByID retrieves an ingredient by id.
func (r *IngredientRepo) GetByID(ctx context.Context, ingredientID id.ID) (*ingredient.Ingredient, error) {
	q := r.builder.Select(ingredientColumns...).
		From(ingredientsTable).
		Where(squirrel.Eq{"id": ingredientID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var i ingredient.Ingredient
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &i, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ingredient", ingredientID.String())
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}

	return &i, nil
}

// List retrieves ingredients with filtering and pagination.
func (r *IngredientRepo) List(ctx context.Context, filter ingredient.ListFilter) ([]ingredient.Ingredient, error) {
	q := r.builder.Select(ingredientColumns...).
		From(ingredientsTable)

	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}
	if filter.Supplier != nil {
		q = q.Where(squirrel.Eq{"supplier": *filter.Supplier})
	}

	q = q.OrderBy("name")

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

	var ingredients []ingredient.Ingredient
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &ingredients, sql, args...); err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	return ingredients, nil
}

// Ensure interface compliance.
var _ ingredient.Repository = (*IngredientRepo)(nil)
