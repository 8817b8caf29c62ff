package order

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/tx"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/product"
	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/domain/pricing"
	"lemonpos/pkg/logger"
	"lemonpos/pkg/numerator"
)

// IngredientUsage is an explicit ingredient consumption supplied by the
// caller at checkout. There is no automatic bill-of-materials expansion:
// product stock and the ingredient ledger stay independent unless the
// caller states the usage.
type IngredientUsage struct {
	IngredientID id.ID          `json:"ingredientId"`
	Quantity     types.Quantity `json:"quantity"`
}

// CommitRequest is the full checkout input from the cart collaborator.
type CommitRequest struct {
	Items            []pricing.CartItem    `json:"items"`
	PaymentMethod    pricing.PaymentMethod `json:"paymentMethod"`
	ServiceType      ServiceType           `json:"serviceType"`
	ServiceFee       types.Money           `json:"serviceFee"`
	AmountReceived   types.Money           `json:"amountReceived"`
	Customer         CustomerInfo          `json:"customerInfo"`
	IngredientUsages []IngredientUsage     `json:"ingredientUsages,omitempty"`
	CreatedBy        *string               `json:"createdBy,omitempty"`
}

// Coordinator orchestrates a checkout: validates stock, prices the cart
// server-side, and writes the order, product stock decrements and sale
// movements as one atomic unit. Any failure rolls the whole commit back.
type Coordinator struct {
	products  product.Repository
	orders    Repository
	stock     *ledger.Service
	engine    *pricing.Engine
	numbers   numerator.Generator
	txManager tx.Manager

	// loc is the store timezone for local business timestamps.
	loc *time.Location
}

// NewCoordinator creates an order commit coordinator.
func NewCoordinator(
	products product.Repository,
	orders Repository,
	stock *ledger.Service,
	engine *pricing.Engine,
	numbers numerator.Generator,
	txManager tx.Manager,
	loc *time.Location,
) *Coordinator {
	if loc == nil {
		loc = time.Local
	}
	return &Coordinator{
		products:  products,
		orders:    orders,
		stock:     stock,
		engine:    engine,
		numbers:   numbers,
		txManager: txManager,
		loc:       loc,
	}
}

// Commit validates and persists a checkout, returning the frozen order.
func (c *Coordinator) Commit(ctx context.Context, req CommitRequest) (*Order, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	// Number generation runs outside the commit transaction; a gap on
	// rollback is acceptable for register orders.
	number, err := c.numbers.GetNextNumber(ctx, numerator.DefaultConfig("ORD"), time.Now().In(c.loc))
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	var committed *Order
	err = c.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lines, err := c.priceCart(ctx, req.Items)
		if err != nil {
			return err
		}

		total := c.engine.OrderTotal(lines, req.ServiceFee)
		change, err := c.engine.Change(total, req.AmountReceived, req.PaymentMethod)
		if err != nil {
			return err
		}

		if err := c.decrementProductStock(ctx, req.Items); err != nil {
			return err
		}

		if err := c.recordSaleMovements(ctx, number, req); err != nil {
			return err
		}

		o := &Order{
			ID:             id.New(),
			Number:         number,
			Timestamp:      time.Now().In(c.loc),
			Total:          total,
			PaymentMethod:  req.PaymentMethod,
			ServiceType:    req.ServiceType,
			ServiceFee:     req.ServiceFee,
			CustomerInfo:   req.Customer,
			Status:         StatusCompleted,
			AmountReceived: req.AmountReceived,
			Change:         change,
			CreatedBy:      req.CreatedBy,
		}
		o.Items = make([]Item, 0, len(lines))
		for _, line := range lines {
			o.Items = append(o.Items, itemFromPricedLine(line))
		}

		if err := c.orders.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		committed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order committed",
		"order_id", committed.ID,
		"number", committed.Number,
		"total", committed.Total,
		"items", len(committed.Items),
	)

	return committed, nil
}

func (c *Coordinator) validate(req CommitRequest) error {
	if len(req.Items) == 0 {
		return apperror.NewValidation("order must contain at least one item").
			WithDetail("field", "items")
	}
	if !req.PaymentMethod.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("value", string(req.PaymentMethod))
	}
	if !req.ServiceType.Valid() {
		return apperror.NewValidation("unknown service type").
			WithDetail("value", string(req.ServiceType))
	}
	if req.ServiceFee.IsNegative() {
		return apperror.NewValidation("service fee cannot be negative").
			WithDetail("field", "serviceFee")
	}
	if req.AmountReceived.IsNegative() {
		return apperror.NewValidation("amount received cannot be negative").
			WithDetail("field", "amountReceived")
	}
	for _, usage := range req.IngredientUsages {
		if !usage.Quantity.IsPositive() {
			return apperror.NewValidation("ingredient usage quantity must be positive").
				WithDetail("ingredient_id", usage.IngredientID)
		}
	}
	return nil
}

// priceCart resolves every cart line against trusted product state and
// recomputes prices server-side. A client-submitted price is only a
// consistency check; mismatches are flagged for audit and the server
// price wins.
func (c *Coordinator) priceCart(ctx context.Context, items []pricing.CartItem) ([]pricing.PricedLine, error) {
	lines := make([]pricing.PricedLine, 0, len(items))
	for _, item := range items {
		p, err := c.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewNotFound("product", item.ProductID)
			}
			return nil, err
		}
		if !p.Active {
			return nil, apperror.NewNotFound("product", item.ProductID)
		}

		line, err := c.engine.PriceLine(p, item)
		if err != nil {
			return nil, err
		}

		if item.SubmittedPrice != nil && !item.SubmittedPrice.Equal(line.Price) {
			logger.Warn(ctx, "client price mismatch, using server price",
				"product_id", p.ID,
				"submitted", item.SubmittedPrice,
				"server", line.Price,
			)
		}

		lines = append(lines, line)
	}
	return lines, nil
}

// decrementProductStock applies per-product quantity decrements with a
// non-negativity guard. Products are processed in id order so
// concurrent commits acquire row locks consistently.
func (c *Coordinator) decrementProductStock(ctx context.Context, items []pricing.CartItem) error {
	quantities := make(map[id.ID]int, len(items))
	for _, item := range items {
		quantities[item.ProductID] += item.Quantity
	}

	ids := make([]id.ID, 0, len(quantities))
	for productID := range quantities {
		ids = append(ids, productID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	for _, productID := range ids {
		if err := c.products.DecrementStock(ctx, productID, quantities[productID]); err != nil {
			return err
		}
	}
	return nil
}

// recordSaleMovements appends a Sale movement per stated ingredient
// usage. The ledger reuses the enclosing transaction, so an oversold
// ingredient aborts the whole commit. Usages are applied in ingredient
// id order, the same row-lock discipline as product decrements.
func (c *Coordinator) recordSaleMovements(ctx context.Context, number string, req CommitRequest) error {
	if len(req.IngredientUsages) == 0 {
		return nil
	}

	usages := make([]IngredientUsage, len(req.IngredientUsages))
	copy(usages, req.IngredientUsages)
	sort.Slice(usages, func(i, j int) bool {
		return usages[i].IngredientID.String() < usages[j].IngredientID.String()
	})

	reason := fmt.Sprintf("order %s", number)
	for _, usage := range usages {
		_, err := c.stock.AppendMovement(ctx, ledger.AppendCommand{
			IngredientID: usage.IngredientID,
			Type:         ledger.MovementSale,
			Quantity:     usage.Quantity,
			Reason:       &reason,
			CreatedBy:    req.CreatedBy,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a committed order with items.
func (c *Coordinator) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	return c.orders.GetByID(ctx, orderID)
}

// List retrieves committed orders, newest first.
func (c *Coordinator) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return c.orders.List(ctx, filter)
}

// UpdateStatus flips the one mutable order field.
func (c *Coordinator) UpdateStatus(ctx context.Context, orderID id.ID, status Status) error {
	if !status.Valid() {
		return apperror.NewValidation("unknown order status").
			WithDetail("value", string(status))
	}
	if err := c.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	logger.Info(ctx, "order status updated", "order_id", orderID, "status", status)
	return nil
}
