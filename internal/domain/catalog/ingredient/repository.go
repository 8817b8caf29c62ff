package ingredient

import (
	"context"

	"lemonpos/internal/core/id"
)

// Repository defines persistence operations for ingredients.
// Quantity and cost fields are written only by the stock ledger
// (see internal/domain/ledger); catalog updates must not touch them.
type Repository interface {
	Create(ctx context.Context, i *Ingredient) error
	Update(ctx context.Context, i *Ingredient) error
	GetByID(ctx context.Context, ingredientID id.ID) (*Ingredient, error)
	List(ctx context.Context, filter ListFilter) ([]Ingredient, error)
}

// ListFilter constrains ingredient listings.
type ListFilter struct {
	ActiveOnly bool
	Supplier   *string
	Limit      int
	Offset     int
}
