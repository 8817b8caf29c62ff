// Package ledger_repo provides the PostgreSQL implementation of the
// stock ledger. Movements live in an append-only register table; the
// ingredient row carries the materialized projection.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/infrastructure/storage/postgres"
)

const (
	movementsTable   = "reg_stock_movements"
	ingredientsTable = "cat_ingredients"
)

var movementColumns = []string{
	"id", "ingredient_id", "movement_type", "direction", "quantity",
	"unit_cost_at_time", "reason", "notes", "created_by", "created_at",
}

var ingredientColumns = []string{
	"id", "name", "quantity", "unit", "supplier", "low_stock_threshold",
	"unit_cost", "last_purchase_cost", "last_purchase_date", "active",
	"created_at", "updated_at",
}

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// InsertMovement appends one immutable ledger row.
func (r *LedgerRepo) InsertMovement(ctx context.Context, m *ledger.StockMovement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.IngredientID, m.Type, m.Direction, m.Quantity,
			m.UnitCostAtTime, m.Reason, m.Notes, m.CreatedBy, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// GetIngredientForUpdate loads the ingredient with a row lock held
// until the enclosing transaction ends. Concurrent appends on the
// same ingredient serialize here.
func (r *LedgerRepo) GetIngredientForUpdate(ctx context.Context, ingredientID id.ID) (*ingredient.Ingredient, error) {
	sql := `
		SELECT id, name, quantity, unit, supplier, low_stock_threshold,
		       unit_cost, last_purchase_cost, last_purchase_date, active,
		       created_at, updated_at
		FROM cat_ingredients
		WHERE id = $1
		FOR UPDATE
	`

	var i ingredient.Ingredient
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &i, sql, ingredientID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ingredient", ingredientID.String())
		}
		return nil, fmt.Errorf("get ingredient for update: %w", err)
	}

	return &i, nil
}

// ApplyProjection writes the ledger-owned columns back to the
// ingredient row. Catalog fields are untouched.
func (r *LedgerRepo) ApplyProjection(ctx context.Context, ing *ingredient.Ingredient) error {
	q := r.builder.Update(ingredientsTable).
		Set("quantity", ing.Quantity).
		Set("unit_cost", ing.UnitCost).
		Set("last_purchase_cost", ing.LastPurchaseCost).
		Set("last_purchase_date", ing.LastPurchaseDate).
		Set("updated_at", ing.UpdatedAt).
		Where(squirrel.Eq{"id": ing.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("apply projection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("ingredient", ing.ID.String())
	}

	return nil
}

// GetHistory returns movements for one ingredient, newest first.
func (r *LedgerRepo) GetHistory(ctx context.Context, ingredientID id.ID, filter ledger.MovementFilter) ([]ledger.StockMovement, error) {
	q := r.movementSelect(filter).
		Where(squirrel.Eq{"ingredient_id": ingredientID})

	return r.selectMovements(ctx, q)
}

// GetAll returns movements across all ingredients, newest first.
func (r *LedgerRepo) GetAll(ctx context.Context, filter ledger.MovementFilter) ([]ledger.StockMovement, error) {
	return r.selectMovements(ctx, r.movementSelect(filter))
}

func (r *LedgerRepo) movementSelect(filter ledger.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementColumns...).
		From(movementsTable)

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
	}

	q = q.OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return q
}

func (r *LedgerRepo) selectMovements(ctx context.Context, q squirrel.SelectBuilder) ([]ledger.StockMovement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.StockMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// SumSignedDeltas re-derives on-hand quantity from the full ledger.
func (r *LedgerRepo) SumSignedDeltas(ctx context.Context, ingredientID id.ID) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(
			SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END),
			0
		)
		FROM reg_stock_movements
		WHERE ingredient_id = $1
	`

	var sumScaled int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, ingredientID).Scan(&sumScaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("sum signed deltas: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(sumScaled), nil
}

// ListIngredientIDs returns every catalog ingredient id for the
// reconciliation sweep.
func (r *LedgerRepo) ListIngredientIDs(ctx context.Context) ([]id.ID, error) {
	q := r.builder.Select("id").
		From(ingredientsTable).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list ingredient ids: %w", err)
	}

	return ids, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)
