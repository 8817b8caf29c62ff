package ingredient

import (
	"context"
	"fmt"
	"time"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/pkg/logger"
)

// Service provides business operations for the ingredient catalog.
type Service struct {
	repo Repository
}

// NewService creates a new ingredient catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new ingredient.
// Initial quantity is always zero; stock arrives via ledger movements.
func (s *Service) Create(ctx context.Context, i *Ingredient) error {
	if err := i.Validate(ctx); err != nil {
		return err
	}

	i.Quantity = 0
	if err := s.repo.Create(ctx, i); err != nil {
		return fmt.Errorf("create ingredient: %w", err)
	}

	logger.Info(ctx, "ingredient created", "id", i.ID, "name", i.Name)
	return nil
}

// Update persists catalog changes. Quantity and cost fields are owned by
// the ledger and preserved from stored state.
func (s *Service) Update(ctx context.Context, i *Ingredient) error {
	if err := i.Validate(ctx); err != nil {
		return err
	}

	stored, err := s.repo.GetByID(ctx, i.ID)
	if err != nil {
		return err
	}
	i.Quantity = stored.Quantity
	i.UnitCost = stored.UnitCost
	i.LastPurchaseCost = stored.LastPurchaseCost
	i.LastPurchaseDate = stored.LastPurchaseDate

	i.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, i); err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}

	logger.Info(ctx, "ingredient updated", "id", i.ID)
	return nil
}

// Deactivate soft-removes an ingredient. The ledger history remains.
func (s *Service) Deactivate(ctx context.Context, ingredientID id.ID) error {
	i, err := s.repo.GetByID(ctx, ingredientID)
	if err != nil {
		return err
	}
	if !i.Active {
		return apperror.NewConflict("ingredient is already inactive").
			WithDetail("id", ingredientID)
	}

	i.Active = false
	i.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, i); err != nil {
		return fmt.Errorf("deactivate ingredient: %w", err)
	}

	logger.Info(ctx, "ingredient deactivated", "id", ingredientID)
	return nil
}

// GetByID retrieves an ingredient.
func (s *Service) GetByID(ctx context.Context, ingredientID id.ID) (*Ingredient, error) {
	return s.repo.GetByID(ctx, ingredientID)
}

// List retrieves ingredients matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Ingredient, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}
