package memory

import (
	"context"
	"slices"
	"strings"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/ledger"
)

// LedgerRepo implements ledger.Repository on the memory store.
// GetIngredientForUpdate relies on the store's global transaction
// lock for serialization; there is no per-row lock to take.
type LedgerRepo struct {
	s *Store
}

func (r *LedgerRepo) InsertMovement(ctx context.Context, m *ledger.StockMovement) error {
	defer r.s.lock(ctx)()

	r.s.movements = append(r.s.movements, cloneMovement(*m))
	return nil
}

func (r *LedgerRepo) GetIngredientForUpdate(ctx context.Context, ingredientID id.ID) (*ingredient.Ingredient, error) {
	defer r.s.lock(ctx)()

	i, exists := r.s.ingredients[ingredientID]
	if !exists {
		return nil, apperror.NewNotFound("ingredient", ingredientID.String())
	}

	copied := cloneIngredient(i)
	return &copied, nil
}

func (r *LedgerRepo) ApplyProjection(ctx context.Context, ing *ingredient.Ingredient) error {
	defer r.s.lock(ctx)()

	stored, exists := r.s.ingredients[ing.ID]
	if !exists {
		return apperror.NewNotFound("ingredient", ing.ID.String())
	}

	stored.Quantity = ing.Quantity
	stored.UnitCost = cloneMoneyPtr(ing.UnitCost)
	stored.LastPurchaseCost = cloneMoneyPtr(ing.LastPurchaseCost)
	stored.LastPurchaseDate = cloneTimePtr(ing.LastPurchaseDate)
	stored.UpdatedAt = ing.UpdatedAt
	r.s.ingredients[ing.ID] = stored
	return nil
}

func (r *LedgerRepo) GetHistory(ctx context.Context, ingredientID id.ID, filter ledger.MovementFilter) ([]ledger.StockMovement, error) {
	defer r.s.lock(ctx)()

	return r.collect(filter, func(m ledger.StockMovement) bool {
		return m.IngredientID == ingredientID
	}), nil
}

func (r *LedgerRepo) GetAll(ctx context.Context, filter ledger.MovementFilter) ([]ledger.StockMovement, error) {
	defer r.s.lock(ctx)()

	return r.collect(filter, func(ledger.StockMovement) bool { return true }), nil
}

// collect filters and returns movements newest first. Caller holds
// the lock.
func (r *LedgerRepo) collect(filter ledger.MovementFilter, match func(ledger.StockMovement) bool) []ledger.StockMovement {
	result := make([]ledger.StockMovement, 0, 32)
	for _, m := range r.s.movements {
		if !match(m) {
			continue
		}
		if filter.FromDate != nil && m.CreatedAt.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && m.CreatedAt.After(*filter.ToDate) {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		result = append(result, cloneMovement(m))
	}

	slices.SortFunc(result, func(a, b ledger.StockMovement) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID.String(), a.ID.String())
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})

	return paginate(result, filter.Limit, filter.Offset)
}

func (r *LedgerRepo) SumSignedDeltas(ctx context.Context, ingredientID id.ID) (types.Quantity, error) {
	defer r.s.lock(ctx)()

	var sum types.Quantity
	for _, m := range r.s.movements {
		if m.IngredientID != ingredientID {
			continue
		}
		sum += m.SignedDelta()
	}

	return sum, nil
}

func (r *LedgerRepo) ListIngredientIDs(ctx context.Context) ([]id.ID, error) {
	defer r.s.lock(ctx)()

	ids := make([]id.ID, 0, len(r.s.ingredients))
	for ingredientID := range r.s.ingredients {
		ids = append(ids, ingredientID)
	}

	slices.SortFunc(ids, func(a, b id.ID) int {
		return strings.Compare(a.String(), b.String())
	})

	return ids, nil
}

func cloneMovement(m ledger.StockMovement) ledger.StockMovement {
	m.UnitCostAtTime = cloneMoneyPtr(m.UnitCostAtTime)
	m.Reason = cloneStringPtr(m.Reason)
	m.Notes = cloneStringPtr(m.Notes)
	m.CreatedBy = cloneStringPtr(m.CreatedBy)
	return m
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)
