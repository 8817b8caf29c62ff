package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/catalog/product"
)

// ProductRepo implements product.Repository on the memory store.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.products[p.ID]; exists {
		return apperror.NewDuplicate("product", "id", p.ID.String())
	}

	r.s.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	defer r.s.lock(ctx)()

	stored, exists := r.s.products[p.ID]
	if !exists {
		return apperror.NewNotFound("product", p.ID.String())
	}

	next := cloneProduct(*p)
	next.Stock = stored.Stock // stock moves only through Increment/Decrement
	r.s.products[p.ID] = next
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	defer r.s.lock(ctx)()

	p, exists := r.s.products[productID]
	if !exists {
		return nil, apperror.NewNotFound("product", productID.String())
	}

	copied := cloneProduct(p)
	return &copied, nil
}

func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	defer r.s.lock(ctx)()

	result := make([]product.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.ActiveOnly && !p.Active {
			continue
		}
		result = append(result, cloneProduct(p))
	}

	slices.SortFunc(result, func(a, b product.Product) int {
		if a.Category == b.Category {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.Category, b.Category)
	})

	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *ProductRepo) DecrementStock(ctx context.Context, productID id.ID, quantity int) error {
	defer r.s.lock(ctx)()

	p, exists := r.s.products[productID]
	if !exists {
		return apperror.NewNotFound("product", productID.String())
	}

	if p.Stock < quantity {
		return apperror.NewInsufficientStock("product", productID.String(), float64(quantity), float64(p.Stock))
	}

	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	r.s.products[productID] = p
	return nil
}

func (r *ProductRepo) IncrementStock(ctx context.Context, productID id.ID, quantity int) error {
	defer r.s.lock(ctx)()

	p, exists := r.s.products[productID]
	if !exists {
		return apperror.NewNotFound("product", productID.String())
	}

	p.Stock += quantity
	p.UpdatedAt = time.Now()
	r.s.products[productID] = p
	return nil
}

// IngredientRepo implements ingredient.Repository on the memory store.
type IngredientRepo struct {
	s *Store
}

func (r *IngredientRepo) Create(ctx context.Context, i *ingredient.Ingredient) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.ingredients[i.ID]; exists {
		return apperror.NewDuplicate("ingredient", "id", i.ID.String())
	}

	r.s.ingredients[i.ID] = cloneIngredient(*i)
	return nil
}

func (r *IngredientRepo) Update(ctx context.Context, i *ingredient.Ingredient) error {
	defer r.s.lock(ctx)()

	stored, exists := r.s.ingredients[i.ID]
	if !exists {
		return apperror.NewNotFound("ingredient", i.ID.String())
	}

	// Ledger-owned fields are preserved from stored state.
	next := cloneIngredient(*i)
	next.Quantity = stored.Quantity
	next.UnitCost = cloneMoneyPtr(stored.UnitCost)
	next.LastPurchaseCost = cloneMoneyPtr(stored.LastPurchaseCost)
	next.LastPurchaseDate = cloneTimePtr(stored.LastPurchaseDate)
	r.s.ingredients[i.ID] = next
	return nil
}

func (r *IngredientRepo) GetByID(ctx context.Context, ingredientID id.ID) (*ingredient.Ingredient, error) {
	defer r.s.lock(ctx)()

	i, exists := r.s.ingredients[ingredientID]
	if !exists {
		return nil, apperror.NewNotFound("ingredient", ingredientID.String())
	}

	copied := cloneIngredient(i)
	return &copied, nil
}

func (r *IngredientRepo) List(ctx context.Context, filter ingredient.ListFilter) ([]ingredient.Ingredient, error) {
	defer r.s.lock(ctx)()

	result := make([]ingredient.Ingredient, 0, len(r.s.ingredients))
	for _, i := range r.s.ingredients {
		if filter.ActiveOnly && !i.Active {
			continue
		}
		if filter.Supplier != nil && (i.Supplier == nil || *i.Supplier != *filter.Supplier) {
			continue
		}
		result = append(result, cloneIngredient(i))
	}

	slices.SortFunc(result, func(a, b ingredient.Ingredient) int {
		return strings.Compare(a.Name, b.Name)
	})

	return paginate(result, filter.Limit, filter.Offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func cloneProduct(p product.Product) product.Product {
	p.HotPrice = cloneMoneyPtr(p.HotPrice)
	p.ColdPrice = cloneMoneyPtr(p.ColdPrice)
	return p
}

func cloneIngredient(i ingredient.Ingredient) ingredient.Ingredient {
	i.Supplier = cloneStringPtr(i.Supplier)
	i.UnitCost = cloneMoneyPtr(i.UnitCost)
	i.LastPurchaseCost = cloneMoneyPtr(i.LastPurchaseCost)
	i.LastPurchaseDate = cloneTimePtr(i.LastPurchaseDate)
	return i
}

func cloneMoneyPtr(m *types.Money) *types.Money {
	if m == nil {
		return nil
	}
	copied := *m
	return &copied
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

// Ensure interface compliance.
var (
	_ product.Repository    = (*ProductRepo)(nil)
	_ ingredient.Repository = (*IngredientRepo)(nil)
)
