package ledger

import (
	"context"
	"fmt"
	"time"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/tx"
	"lemonpos/pkg/logger"
)

// Service is the stock ledger: it appends movements and keeps the
// ingredient quantity projection consistent with the ledger.
type Service struct {
	repo      Repository
	txManager tx.Manager
	costing   CostingPolicy
}

// NewService creates a new stock ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// AppendMovement validates and records one stock movement. The movement
// insert and the projection update are a single atomic unit; concurrent
// appends on the same ingredient serialize on the ingredient row.
//
// A movement that would drive the projection below zero fails with
// InsufficientStock and leaves quantity unchanged. Adjustment may opt
// into a negative result via AppendCommand.AllowNegative.
func (s *Service) AppendMovement(ctx context.Context, cmd AppendCommand) (*StockMovement, error) {
	if !cmd.Type.Valid() {
		return nil, apperror.NewValidation("unknown movement type").
			WithDetail("field", "movementType").
			WithDetail("value", string(cmd.Type))
	}

	if !cmd.Quantity.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	direction, implied := cmd.Type.ImpliedDirection()
	if !implied {
		// Adjustment: direction must be stated, never inferred from sign.
		if cmd.Direction != DirectionIn && cmd.Direction != DirectionOut {
			return nil, apperror.NewValidation("adjustment requires an explicit direction").
				WithDetail("field", "direction")
		}
		direction = cmd.Direction
	}

	if cmd.UnitCost != nil && cmd.UnitCost.IsNegative() {
		return nil, apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	movement := &StockMovement{
		ID:           id.New(),
		IngredientID: cmd.IngredientID,
		Type:         cmd.Type,
		Direction:    direction,
		Quantity:     cmd.Quantity,
		Reason:       cmd.Reason,
		Notes:        cmd.Notes,
		CreatedBy:    cmd.CreatedBy,
		CreatedAt:    time.Now(),
	}

	if cmd.Type == MovementPurchase && cmd.UnitCost != nil {
		cost := *cmd.UnitCost
		movement.UnitCostAtTime = &cost
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ing, err := s.repo.GetIngredientForUpdate(ctx, cmd.IngredientID)
		if err != nil {
			return err
		}

		newQuantity := ing.Quantity + movement.SignedDelta()
		if newQuantity.IsNegative() {
			allowed := cmd.Type == MovementAdjustment && cmd.AllowNegative
			if !allowed {
				return apperror.NewInsufficientStock(
					"ingredient",
					ing.ID.String(),
					cmd.Quantity.Float64(),
					ing.Quantity.Float64(),
				)
			}
		}

		s.costing.Apply(ing, movement, movement.CreatedAt)

		ing.Quantity = newQuantity
		ing.UpdatedAt = movement.CreatedAt

		if err := s.repo.InsertMovement(ctx, movement); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}
		if err := s.repo.ApplyProjection(ctx, ing); err != nil {
			return fmt.Errorf("apply projection: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock movement recorded",
		"movement_id", movement.ID,
		"ingredient_id", movement.IngredientID,
		"type", movement.Type,
		"direction", movement.Direction,
		"quantity", movement.Quantity,
	)

	return movement, nil
}

// GetHistory returns one ingredient's movements, newest first.
func (s *Service) GetHistory(ctx context.Context, ingredientID id.ID, filter MovementFilter) ([]StockMovement, error) {
	movements, err := s.repo.GetHistory(ctx, ingredientID, filter)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return movements, nil
}

// GetAll returns movements across all ingredients, newest first.
func (s *Service) GetAll(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	movements, err := s.repo.GetAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get movements: %w", err)
	}
	return movements, nil
}

// ReconcileProjection re-sums the ledger for one ingredient and repairs
// the projection if it drifted. Returns true when a repair was applied.
func (s *Service) ReconcileProjection(ctx context.Context, ingredientID id.ID) (bool, error) {
	var repaired bool

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ing, err := s.repo.GetIngredientForUpdate(ctx, ingredientID)
		if err != nil {
			return err
		}

		sum, err := s.repo.SumSignedDeltas(ctx, ingredientID)
		if err != nil {
			return fmt.Errorf("sum deltas: %w", err)
		}

		if sum == ing.Quantity {
			return nil
		}

		logger.Warn(ctx, "projection drift detected",
			"ingredient_id", ingredientID,
			"projected", ing.Quantity,
			"ledger_sum", sum,
		)

		ing.Quantity = sum
		ing.UpdatedAt = time.Now()
		if err := s.repo.ApplyProjection(ctx, ing); err != nil {
			return fmt.Errorf("repair projection: %w", err)
		}
		repaired = true
		return nil
	})

	return repaired, err
}

// ReconcileAll sweeps every ingredient. Used by the maintenance worker.
func (s *Service) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.repo.ListIngredientIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list ingredients: %w", err)
	}

	repairs := 0
	for _, ingredientID := range ids {
		repaired, err := s.ReconcileProjection(ctx, ingredientID)
		if err != nil {
			return repairs, fmt.Errorf("reconcile %s: %w", ingredientID, err)
		}
		if repaired {
			repairs++
		}
	}

	return repairs, nil
}
