package ledger

import (
	"context"
	"time"

	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/ingredient"
)

// Repository defines storage operations for the stock ledger.
// Movement inserts and projection writes happen inside the transaction
// managed by the service; implementations must serialize concurrent
// appends on the same ingredient (row lock or equivalent).
type Repository interface {
	// InsertMovement appends an immutable ledger entry.
	InsertMovement(ctx context.Context, m *StockMovement) error

	// GetIngredientForUpdate loads the ingredient with an exclusive lock
	// held until the enclosing transaction ends.
	GetIngredientForUpdate(ctx context.Context, ingredientID id.ID) (*ingredient.Ingredient, error)

	// ApplyProjection persists the ingredient's quantity and cost fields
	// mutated by a movement.
	ApplyProjection(ctx context.Context, ing *ingredient.Ingredient) error

	// GetHistory returns movements for one ingredient, newest first.
	GetHistory(ctx context.Context, ingredientID id.ID, filter MovementFilter) ([]StockMovement, error)

	// GetAll returns movements across all ingredients, newest first.
	GetAll(ctx context.Context, filter MovementFilter) ([]StockMovement, error)

	// SumSignedDeltas re-sums the ledger for one ingredient (repair pass).
	SumSignedDeltas(ctx context.Context, ingredientID id.ID) (types.Quantity, error)

	// ListIngredientIDs returns all ingredient ids known to the catalog,
	// for the periodic reconciliation sweep.
	ListIngredientIDs(ctx context.Context) ([]id.ID, error)
}

// MovementFilter constrains movement queries.
type MovementFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Type     *MovementType
	Limit    int
	Offset   int
}
