package dto

import (
	"time"

	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/catalog/product"
)

// --- Products ---

// CreateProductRequest for creating menu products.
type CreateProductRequest struct {
	Name              string       `json:"name" binding:"required"`
	BasePrice         types.Money  `json:"basePrice" binding:"required"`
	HotPrice          *types.Money `json:"hotPrice"`
	ColdPrice         *types.Money `json:"coldPrice"`
	Category          string       `json:"category" binding:"required"`
	Stock             int          `json:"stock"`
	LowStockThreshold *int         `json:"lowStockThreshold"`
}

// ToModel builds a new product from the request.
func (r CreateProductRequest) ToModel() *product.Product {
	p := product.New(r.Name, r.Category, r.BasePrice)
	p.HotPrice = r.HotPrice
	p.ColdPrice = r.ColdPrice
	p.Stock = r.Stock
	if r.LowStockThreshold != nil {
		p.LowStockThreshold = *r.LowStockThreshold
	}
	return p
}

// UpdateProductRequest for updating menu products.
// Stock is deliberately absent: it moves only through receive and
// order commit.
type UpdateProductRequest struct {
	Name              string       `json:"name" binding:"required"`
	BasePrice         types.Money  `json:"basePrice" binding:"required"`
	HotPrice          *types.Money `json:"hotPrice"`
	ColdPrice         *types.Money `json:"coldPrice"`
	Category          string       `json:"category" binding:"required"`
	LowStockThreshold int          `json:"lowStockThreshold"`
	Active            *bool        `json:"active"`
}

// Apply copies request fields onto the stored product.
func (r UpdateProductRequest) Apply(p *product.Product) {
	p.Name = r.Name
	p.BasePrice = r.BasePrice
	p.HotPrice = r.HotPrice
	p.ColdPrice = r.ColdPrice
	p.Category = r.Category
	p.LowStockThreshold = r.LowStockThreshold
	if r.Active != nil {
		p.Active = *r.Active
	}
	p.UpdatedAt = time.Now()
}

// ReceiveStockRequest for product stock receipts.
type ReceiveStockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// --- Ingredients ---

// CreateIngredientRequest for creating ingredients. Quantity is not
// accepted: stock arrives only through ledger movements.
type CreateIngredientRequest struct {
	Name              string         `json:"name" binding:"required"`
	Unit              string         `json:"unit" binding:"required"`
	Supplier          *string        `json:"supplier"`
	LowStockThreshold types.Quantity `json:"lowStockThreshold"`
}

// ToModel builds a new ingredient from the request.
func (r CreateIngredientRequest) ToModel() *ingredient.Ingredient {
	i := ingredient.New(r.Name, r.Unit)
	i.Supplier = r.Supplier
	i.LowStockThreshold = r.LowStockThreshold
	return i
}

// UpdateIngredientRequest for updating ingredient catalog fields.
type UpdateIngredientRequest struct {
	Name              string         `json:"name" binding:"required"`
	Unit              string         `json:"unit" binding:"required"`
	Supplier          *string        `json:"supplier"`
	LowStockThreshold types.Quantity `json:"lowStockThreshold"`
	Active            *bool          `json:"active"`
}

// Apply copies request fields onto the stored ingredient.
// Ledger-owned fields are preserved by the service layer.
func (r UpdateIngredientRequest) Apply(i *ingredient.Ingredient) {
	i.Name = r.Name
	i.Unit = r.Unit
	i.Supplier = r.Supplier
	i.LowStockThreshold = r.LowStockThreshold
	if r.Active != nil {
		i.Active = *r.Active
	}
	i.UpdatedAt = time.Now()
}
