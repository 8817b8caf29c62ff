package order

import (
	"context"
	"time"

	"lemonpos/internal/core/id"
)

// Repository defines persistence operations for orders.
// Orders are insert-only; the single permitted mutation is status.
type Repository interface {
	// Create persists the order with all items, add-ons and discounts
	// as one unit. Must be called inside the commit transaction.
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// List returns orders newest first.
	List(ctx context.Context, filter ListFilter) ([]Order, error)

	UpdateStatus(ctx context.Context, orderID id.ID, status Status) error
}

// ListFilter constrains order listings. Dates compare against the
// order's local business timestamp.
type ListFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Status   *Status
	Limit    int
	Offset   int
}
