package product

import (
	"context"

	"lemonpos/internal/core/id"
)

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)

	// DecrementStock atomically subtracts quantity from stock with a
	// non-negativity guard. Returns InsufficientStock if the decrement
	// would drive stock below zero, leaving stock unchanged.
	DecrementStock(ctx context.Context, productID id.ID, quantity int) error

	// IncrementStock adds received quantity to stock.
	IncrementStock(ctx context.Context, productID id.ID, quantity int) error
}

// ListFilter constrains product listings.
type ListFilter struct {
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}
