package product

import (
	"context"
	"fmt"
	"time"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/pkg/logger"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo Repository
}

// NewService creates a new product catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if p.LowStockThreshold == 0 {
		p.LowStockThreshold = DefaultLowStockThreshold
	}

	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name)
	return nil
}

// Update validates and persists product changes.
// Persisted order items keep their snapshots; edits never reach them.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	logger.Info(ctx, "product updated", "id", p.ID)
	return nil
}

// Deactivate soft-removes a product from the menu.
func (s *Service) Deactivate(ctx context.Context, productID id.ID) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Active {
		return apperror.NewConflict("product is already inactive").
			WithDetail("id", productID)
	}

	p.Active = false
	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	logger.Info(ctx, "product deactivated", "id", productID)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List retrieves products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// Receive adds delivered stock to a product.
func (s *Service) Receive(ctx context.Context, productID id.ID, quantity int) error {
	if quantity <= 0 {
		return apperror.NewValidation("receive quantity must be positive").
			WithDetail("field", "quantity")
	}
	return s.repo.IncrementStock(ctx, productID, quantity)
}
