package ledger

import (
	"time"

	"lemonpos/internal/domain/catalog/ingredient"
)

// CostingPolicy decides the unit cost stamped on each movement and the
// cost fields carried on the ingredient.
//
// Purchase uses simple replace-cost: the movement's unit cost becomes the
// ingredient's current cost, and last-purchase fields follow. Every other
// type snapshots the ingredient's current cost onto the movement and
// freezes it there.
type CostingPolicy struct{}

// Apply stamps costs on the movement and mutates the ingredient's cost
// fields. Must run inside the same transaction as the movement insert.
func (CostingPolicy) Apply(ing *ingredient.Ingredient, m *StockMovement, now time.Time) {
	if m.Type == MovementPurchase {
		if m.UnitCostAtTime != nil {
			cost := *m.UnitCostAtTime
			ing.UnitCost = &cost
			ing.LastPurchaseCost = &cost
			purchasedAt := now
			ing.LastPurchaseDate = &purchasedAt
		}
		return
	}

	if ing.UnitCost != nil {
		cost := *ing.UnitCost
		m.UnitCostAtTime = &cost
	}
}
