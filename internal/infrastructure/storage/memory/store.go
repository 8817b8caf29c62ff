// Package memory provides an in-memory store for dev/demo mode and
// tests. It implements the same repository interfaces as the postgres
// layer plus tx.Manager: a transaction takes the global lock, works on
// live state and rolls back by restoring a snapshot on error.
package memory

import (
	"context"
	"sync"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/tx"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/catalog/product"
	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/domain/order"
)

// Store holds all state behind one mutex. Transactions hold the lock
// for their whole duration, so concurrent commits serialize exactly
// like row locks would in postgres.
type Store struct {
	mu          sync.Mutex
	products    map[id.ID]product.Product
	ingredients map[id.ID]ingredient.Ingredient
	movements   []ledger.StockMovement
	orders      map[id.ID]order.Order
	orderSeq    []id.ID
}

// New creates an empty store.
func New() *Store {
	return &Store{
		products:    make(map[id.ID]product.Product),
		ingredients: make(map[id.ID]ingredient.Ingredient),
		movements:   make([]ledger.StockMovement, 0, 128),
		orders:      make(map[id.ID]order.Order),
		orderSeq:    make([]id.ID, 0, 64),
	}
}

// Repository accessors.

func (s *Store) Products() *ProductRepo       { return &ProductRepo{s: s} }
func (s *Store) Ingredients() *IngredientRepo { return &IngredientRepo{s: s} }
func (s *Store) Ledger() *LedgerRepo          { return &LedgerRepo{s: s} }
func (s *Store) Orders() *OrderRepo           { return &OrderRepo{s: s} }
func (s *Store) Reports() *ReportRepo         { return &ReportRepo{s: s} }

// txKey marks a context as already inside a transaction.
type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(struct{})
	return ok
}

// lock acquires the store mutex unless the context already holds it
// through an enclosing transaction. Returns the unlock func.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// RunInTransaction executes fn exclusively. On error all state is
// restored from a snapshot taken at entry. Nested calls reuse the
// enclosing transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		s.restore(snap)
		// Same contract as the postgres manager: a plain error
		// escaping the transaction surfaces as a retryable
		// persistence failure, domain errors pass through.
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewPersistence(err)
	}

	return nil
}

// ReadOnly executes fn under the lock without rollback semantics.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

type storeSnapshot struct {
	products    map[id.ID]product.Product
	ingredients map[id.ID]ingredient.Ingredient
	movements   []ledger.StockMovement
	orders      map[id.ID]order.Order
	orderSeq    []id.ID
}

// snapshot copies top-level containers. Entries themselves are copied
// on read/write by the repos, so a shallow container copy suffices.
func (s *Store) snapshot() storeSnapshot {
	products := make(map[id.ID]product.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	ingredients := make(map[id.ID]ingredient.Ingredient, len(s.ingredients))
	for k, v := range s.ingredients {
		ingredients[k] = v
	}
	movements := make([]ledger.StockMovement, len(s.movements))
	copy(movements, s.movements)
	orders := make(map[id.ID]order.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = v
	}
	orderSeq := make([]id.ID, len(s.orderSeq))
	copy(orderSeq, s.orderSeq)

	return storeSnapshot{
		products:    products,
		ingredients: ingredients,
		movements:   movements,
		orders:      orders,
		orderSeq:    orderSeq,
	}
}

func (s *Store) restore(snap storeSnapshot) {
	s.products = snap.products
	s.ingredients = snap.ingredients
	s.movements = snap.movements
	s.orders = snap.orders
	s.orderSeq = snap.orderSeq
}

// Ensure interface compliance.
var (
	_ tx.Manager         = (*Store)(nil)
	_ tx.ReadOnlyManager = (*Store)(nil)
)
