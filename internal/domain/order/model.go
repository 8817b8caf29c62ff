// Package order provides the order model and the commit coordinator.
// An order is created exactly once at checkout and frozen; only its
// status may change afterwards.
package order

import (
	"time"

	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/pricing"
)

// ServiceType distinguishes dine-in from take-out orders.
type ServiceType string

const (
	ServiceDineIn  ServiceType = "dine_in"
	ServiceTakeOut ServiceType = "take_out"
)

// Valid reports whether the service type is known.
func (s ServiceType) Valid() bool {
	return s == ServiceDineIn || s == ServiceTakeOut
}

// Status is the order lifecycle state.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// Valid reports whether the status is known.
func (s Status) Valid() bool {
	return s == StatusCompleted || s == StatusPending
}

// CustomerInfo is optional free-form customer identification.
type CustomerInfo struct {
	Name  string `db:"customer_name" json:"name,omitempty"`
	Phone string `db:"customer_phone" json:"phone,omitempty"`
}

// Item is one product line within an order. Name, category and prices
// are historical snapshots: later product edits never retroactively
// change a persisted item.
type Item struct {
	ProductID id.ID  `db:"product_id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Category  string `db:"category" json:"category"`

	// Price is the effective charged unit price; BasePrice the
	// product's base at commit time.
	Price     types.Money `db:"price" json:"price"`
	BasePrice types.Money `db:"base_price" json:"basePrice"`

	Temperature pricing.Temperature `db:"temperature" json:"temperature"`
	Quantity    int                 `db:"quantity" json:"quantity"`

	// AddOns and Discount are owned copies, not shared references.
	AddOns   []pricing.AddOn   `db:"-" json:"addOns,omitempty"`
	Discount *pricing.Discount `db:"-" json:"discount,omitempty"`

	Subtotal types.Money `db:"subtotal" json:"subtotal"`
	Total    types.Money `db:"total" json:"total"`
}

// Order is a committed checkout.
type Order struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	// Timestamp is local business time, deliberately not UTC, so store
	// reports never straddle a day boundary.
	Timestamp time.Time `db:"timestamp" json:"timestamp"`

	Items []Item `db:"-" json:"items"`

	Total          types.Money           `db:"total" json:"total"`
	PaymentMethod  pricing.PaymentMethod `db:"payment_method" json:"paymentMethod"`
	ServiceType    ServiceType           `db:"service_type" json:"serviceType"`
	ServiceFee     types.Money           `db:"service_fee" json:"serviceFee"`
	CustomerInfo   CustomerInfo          `db:"-" json:"customerInfo"`
	Status         Status                `db:"status" json:"status"`
	AmountReceived types.Money           `db:"amount_received" json:"amountReceived"`
	Change         types.Money           `db:"change" json:"change"`

	CreatedBy *string `db:"created_by" json:"createdBy,omitempty"`
}

// itemFromPricedLine freezes a priced line into an owned order item.
func itemFromPricedLine(line pricing.PricedLine) Item {
	addOns := make([]pricing.AddOn, len(line.AddOns))
	copy(addOns, line.AddOns)

	var disc *pricing.Discount
	if line.Discount != nil {
		copied := *line.Discount
		disc = &copied
	}

	return Item{
		ProductID:   line.ProductID,
		Name:        line.Name,
		Category:    line.Category,
		Price:       line.Price,
		BasePrice:   line.BasePrice,
		Temperature: line.Temperature,
		Quantity:    line.Quantity,
		AddOns:      addOns,
		Discount:    disc,
		Subtotal:    line.Subtotal,
		Total:       line.Total,
	}
}
