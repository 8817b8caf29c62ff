package dto

import (
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/ledger"
)

// AppendMovementRequest records one stock movement for an ingredient.
// Quantity is a positive magnitude; direction comes from the type, or
// explicitly for adjustments.
type AppendMovementRequest struct {
	Type          ledger.MovementType `json:"type" binding:"required"`
	Quantity      types.Quantity      `json:"quantity" binding:"required"`
	UnitCost      *types.Money        `json:"unitCost"`
	Direction     ledger.Direction    `json:"direction"`
	AllowNegative bool                `json:"allowNegative"`
	Reason        *string             `json:"reason"`
	Notes         *string             `json:"notes"`
}

// ToCommand builds the ledger command. CreatedBy comes from the
// request actor, not the body.
func (r AppendMovementRequest) ToCommand(ingredientID id.ID, createdBy *string) ledger.AppendCommand {
	return ledger.AppendCommand{
		IngredientID:  ingredientID,
		Type:          r.Type,
		Quantity:      r.Quantity,
		UnitCost:      r.UnitCost,
		Direction:     r.Direction,
		AllowNegative: r.AllowNegative,
		Reason:        r.Reason,
		Notes:         r.Notes,
		CreatedBy:     createdBy,
	}
}

// ReconcileResponse reports one reconciliation sweep.
type ReconcileResponse struct {
	Repaired int `json:"repaired"`
}
