package memory

import (
	"context"
	"slices"
	"strings"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/domain/order"
	"lemonpos/internal/domain/pricing"
)

// OrderRepo implements order.Repository on the memory store.
type OrderRepo struct {
	s *Store
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.orders[o.ID]; exists {
		return apperror.NewDuplicate("order", "number", o.Number)
	}

	r.s.orders[o.ID] = cloneOrder(*o)
	r.s.orderSeq = append(r.s.orderSeq, o.ID)
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	defer r.s.lock(ctx)()

	o, exists := r.s.orders[orderID]
	if !exists {
		return nil, apperror.NewNotFound("order", orderID.String())
	}

	copied := cloneOrder(o)
	return &copied, nil
}

func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	defer r.s.lock(ctx)()

	result := make([]order.Order, 0, len(r.s.orders))
	for _, orderID := range r.s.orderSeq {
		o, exists := r.s.orders[orderID]
		if !exists {
			continue
		}
		if filter.FromDate != nil && o.Timestamp.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && o.Timestamp.After(*filter.ToDate) {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		result = append(result, cloneOrder(o))
	}

	slices.SortFunc(result, func(a, b order.Order) int {
		if a.Timestamp.Equal(b.Timestamp) {
			return strings.Compare(b.Number, a.Number)
		}
		if a.Timestamp.After(b.Timestamp) {
			return -1
		}
		return 1
	})

	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status order.Status) error {
	defer r.s.lock(ctx)()

	o, exists := r.s.orders[orderID]
	if !exists {
		return apperror.NewNotFound("order", orderID.String())
	}

	o.Status = status
	r.s.orders[orderID] = o
	return nil
}

func cloneOrder(o order.Order) order.Order {
	items := make([]order.Item, len(o.Items))
	for i, item := range o.Items {
		addOns := make([]pricing.AddOn, len(item.AddOns))
		copy(addOns, item.AddOns)
		item.AddOns = addOns
		if item.Discount != nil {
			disc := *item.Discount
			item.Discount = &disc
		}
		items[i] = item
	}
	o.Items = items
	o.CreatedBy = cloneStringPtr(o.CreatedBy)
	return o
}

// Ensure interface compliance.
var _ order.Repository = (*OrderRepo)(nil)
