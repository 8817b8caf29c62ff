// Package ledger provides the append-only stock movement ledger.
// The ledger is the source of truth for ingredient quantity;
// Ingredient.Quantity is a projection updated in the same transaction
// as each movement insert. Corrections are compensating entries,
// never edits.
package ledger

import (
	"time"

	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
)

// MovementType classifies a stock delta.
type MovementType string

const (
	MovementPurchase   MovementType = "purchase"
	MovementSale       MovementType = "sale"
	MovementAdjustment MovementType = "adjustment"
	MovementWaste      MovementType = "waste"
	MovementReturn     MovementType = "return"
)

// Direction marks whether a movement adds to or subtracts from stock.
// Purchase/Return imply in, Sale/Waste imply out. Adjustment carries
// its direction explicitly; sign is never overloaded onto quantity.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// ImpliedDirection returns the direction fixed by the movement type.
// Adjustment has no implied direction; ok is false.
func (t MovementType) ImpliedDirection() (Direction, bool) {
	switch t {
	case MovementPurchase, MovementReturn:
		return DirectionIn, true
	case MovementSale, MovementWaste:
		return DirectionOut, true
	}
	return "", false
}

// Valid reports whether the movement type is known.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementAdjustment, MovementWaste, MovementReturn:
		return true
	}
	return false
}

// StockMovement is an immutable ledger entry. Quantity is always a
// positive magnitude; Direction carries the sign.
type StockMovement struct {
	ID           id.ID        `db:"id" json:"id"`
	IngredientID id.ID        `db:"ingredient_id" json:"ingredientId"`
	Type         MovementType `db:"movement_type" json:"movementType"`
	Direction    Direction    `db:"direction" json:"direction"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`

	// UnitCostAtTime freezes the ingredient's cost at record time.
	// Later cost changes never alter past movement valuations.
	UnitCostAtTime *types.Money `db:"unit_cost_at_time" json:"unitCostAtTime,omitempty"`

	Reason    *string   `db:"reason" json:"reason,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedBy *string   `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SignedDelta returns the quantity with direction applied.
func (m *StockMovement) SignedDelta() types.Quantity {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// AppendCommand describes a movement to record.
type AppendCommand struct {
	IngredientID id.ID
	Type         MovementType

	// Quantity must be a positive magnitude.
	Quantity types.Quantity

	// UnitCost is required semantics only for Purchase, where it becomes
	// the ingredient's new replace-cost.
	UnitCost *types.Money

	// Direction is required for Adjustment and ignored otherwise.
	Direction Direction

	// AllowNegative lets a manual Adjustment drive the projection below
	// zero for corrections. All other types are rejected at zero.
	AllowNegative bool

	Reason    *string
	Notes     *string
	CreatedBy *string
}
