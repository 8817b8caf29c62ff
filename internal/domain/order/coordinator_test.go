package order_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/catalog/product"
	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/domain/order"
	"lemonpos/internal/domain/pricing"
	"lemonpos/internal/infrastructure/storage/memory"
	"lemonpos/pkg/numerator"
)

type commitFixture struct {
	store       *memory.Store
	stock       *ledger.Service
	coordinator *order.Coordinator
}

func newCommitFixture(t *testing.T) *commitFixture {
	t.Helper()
	store := memory.New()
	stock := ledger.NewService(store.Ledger(), store)
	coordinator := order.NewCoordinator(
		store.Products(),
		store.Orders(),
		stock,
		pricing.NewEngine(),
		numerator.NewMock(),
		store,
		time.UTC,
	)
	return &commitFixture{store: store, stock: stock, coordinator: coordinator}
}

func (f *commitFixture) addProduct(t *testing.T, name string, price string, stock int) *product.Product {
	t.Helper()
	p := product.New(name, "coffee", types.MustMoney(price))
	p.Stock = stock
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *commitFixture) addIngredient(t *testing.T, name string, quantity float64) *ingredient.Ingredient {
	t.Helper()
	ing := ingredient.New(name, "kg")
	require.NoError(t, f.store.Ingredients().Create(context.Background(), ing))
	if quantity > 0 {
		cost := types.MustMoney("1.00")
		_, err := f.stock.AppendMovement(context.Background(), ledger.AppendCommand{
			IngredientID: ing.ID,
			Type:         ledger.MovementPurchase,
			Quantity:     types.NewQuantityFromFloat64(quantity),
			UnitCost:     &cost,
		})
		require.NoError(t, err)
	}
	return ing
}

func TestCommit_HappyPath(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.50", 10)

	o, err := f.coordinator.Commit(ctx, order.CommitRequest{
		Items: []pricing.CartItem{
			{ProductID: p.ID, Quantity: 2},
		},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(o.Number, "ORD-"))
	assert.Equal(t, order.StatusCompleted, o.Status)
	assert.True(t, o.Total.Equal(types.MustMoney("7.00")))
	assert.True(t, o.Change.Equal(types.MustMoney("3.00")))
	require.Len(t, o.Items, 1)
	assert.Equal(t, p.ID, o.Items[0].ProductID)
	assert.Equal(t, "Latte", o.Items[0].Name)

	// Stock decremented within the commit.
	got, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)

	// Order is retrievable.
	persisted, err := f.coordinator.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Number, persisted.Number)
	require.Len(t, persisted.Items, 1)
}

func TestCommit_ServiceFeeAddedToTotal(t *testing.T) {
	f := newCommitFixture(t)
	p := f.addProduct(t, "Latte", "3.00", 5)

	o, err := f.coordinator.Commit(context.Background(), order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  pricing.PaymentCard,
		ServiceType:    order.ServiceTakeOut,
		ServiceFee:     types.MustMoney("0.75"),
		AmountReceived: types.Zero(),
	})
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(types.MustMoney("3.75")))
	// Non-cash: change is always zero.
	assert.True(t, o.Change.IsZero())
}

func TestCommit_InsufficientProductStockRollsBackEverything(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	first := f.addProduct(t, "Latte", "3.00", 10)
	second := f.addProduct(t, "Mocha", "4.00", 1)

	_, err := f.coordinator.Commit(ctx, order.CommitRequest{
		Items: []pricing.CartItem{
			{ProductID: first.ID, Quantity: 2},
			{ProductID: second.ID, Quantity: 5},
		},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("100.00"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The first product's decrement was rolled back with the rest.
	got, err := f.store.Products().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	orders, err := f.coordinator.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCommit_OversoldIngredientAbortsCommit(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.00", 10)
	ing := f.addIngredient(t, "Milk", 1)

	_, err := f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
		IngredientUsages: []order.IngredientUsage{
			{IngredientID: ing.ID, Quantity: types.NewQuantityFromFloat64(2)},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Product stock restored, ingredient projection untouched, no order.
	gotProduct, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, gotProduct.Stock)

	gotIngredient, err := f.store.Ingredients().GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(1), gotIngredient.Quantity)

	orders, err := f.coordinator.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCommit_IngredientUsageRecordsSaleMovement(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.00", 10)
	ing := f.addIngredient(t, "Milk", 5)

	o, err := f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
		IngredientUsages: []order.IngredientUsage{
			{IngredientID: ing.ID, Quantity: types.NewQuantityFromFloat64(0.5)},
		},
	})
	require.NoError(t, err)

	got, err := f.store.Ingredients().GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(4.5), got.Quantity)

	history, err := f.stock.GetHistory(ctx, ing.ID, ledger.MovementFilter{Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, history)
	latest := history[0]
	assert.Equal(t, ledger.MovementSale, latest.Type)
	require.NotNil(t, latest.Reason)
	assert.Contains(t, *latest.Reason, o.Number)
}

func TestCommit_ItemsAreFrozenSnapshots(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.00", 10)

	o, err := f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
	})
	require.NoError(t, err)

	// Rename and reprice the product after the commit.
	edited, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	edited.Name = "Flat White"
	edited.BasePrice = types.MustMoney("9.99")
	require.NoError(t, f.store.Products().Update(ctx, edited))

	persisted, err := f.coordinator.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, persisted.Items, 1)
	assert.Equal(t, "Latte", persisted.Items[0].Name)
	assert.True(t, persisted.Items[0].Price.Equal(types.MustMoney("3.00")))
	assert.True(t, persisted.Total.Equal(types.MustMoney("3.00")))
}

func TestCommit_ServerPriceWinsOverSubmitted(t *testing.T) {
	f := newCommitFixture(t)
	p := f.addProduct(t, "Latte", "3.00", 10)

	submitted := types.MustMoney("0.01")
	o, err := f.coordinator.Commit(context.Background(), order.CommitRequest{
		Items: []pricing.CartItem{
			{ProductID: p.ID, Quantity: 1, SubmittedPrice: &submitted},
		},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
	})
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(types.MustMoney("3.00")))
}

func TestCommit_Rejections(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.00", 10)

	// Empty cart.
	_, err := f.coordinator.Commit(ctx, order.CommitRequest{
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
	})
	require.Error(t, err)

	// Unknown product.
	_, err = f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: id.New(), Quantity: 1}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
	})
	assert.True(t, apperror.IsNotFound(err))

	// Inactive product is treated as not found.
	inactive := f.addProduct(t, "Retired", "2.00", 10)
	got, err := f.store.Products().GetByID(ctx, inactive.ID)
	require.NoError(t, err)
	got.Active = false
	require.NoError(t, f.store.Products().Update(ctx, got))

	_, err = f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: inactive.ID, Quantity: 1}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
	})
	assert.True(t, apperror.IsNotFound(err))

	// Insufficient cash tender.
	_, err = f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("1.00"),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNegativeChange, appErr.Code)

	// Unknown payment method and service type.
	_, err = f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  "barter",
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
	})
	require.Error(t, err)

	_, err = f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    "delivery",
		AmountReceived: types.MustMoney("10.00"),
	})
	require.Error(t, err)
}

func TestCommit_SequentialNumbersAreUnique(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.00", 100)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		o, err := f.coordinator.Commit(ctx, order.CommitRequest{
			Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
			PaymentMethod:  pricing.PaymentCash,
			ServiceType:    order.ServiceDineIn,
			AmountReceived: types.MustMoney("10.00"),
		})
		require.NoError(t, err)
		assert.False(t, seen[o.Number], "duplicate number %s", o.Number)
		seen[o.Number] = true
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.00", 10)

	o, err := f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
	})
	require.NoError(t, err)

	require.NoError(t, f.coordinator.UpdateStatus(ctx, o.ID, order.StatusPending))

	got, err := f.coordinator.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)

	// Unknown status rejected, unknown order not found.
	require.Error(t, f.coordinator.UpdateStatus(ctx, o.ID, "shipped"))
	assert.True(t, apperror.IsNotFound(f.coordinator.UpdateStatus(ctx, id.New(), order.StatusCompleted)))
}

func TestList_NewestFirstWithFilters(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.00", 10)

	for i := 0; i < 3; i++ {
		_, err := f.coordinator.Commit(ctx, order.CommitRequest{
			Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
			PaymentMethod:  pricing.PaymentCash,
			ServiceType:    order.ServiceDineIn,
			AmountReceived: types.MustMoney("10.00"),
		})
		require.NoError(t, err)
	}

	orders, err := f.coordinator.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for i := 1; i < len(orders); i++ {
		assert.False(t, orders[i-1].Timestamp.Before(orders[i].Timestamp))
	}

	status := order.StatusPending
	filtered, err := f.coordinator.List(ctx, order.ListFilter{Status: &status})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	future := time.Now().Add(24 * time.Hour)
	filtered, err = f.coordinator.List(ctx, order.ListFilter{FromDate: &future})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

// brokenOrderRepo fails Create the way a dropped connection would.
type brokenOrderRepo struct {
	order.Repository
}

func (r brokenOrderRepo) Create(ctx context.Context, o *order.Order) error {
	return errors.New("connection reset by peer")
}

func TestCommit_StorageFailureIsRetryable(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.50", 10)

	coordinator := order.NewCoordinator(
		f.store.Products(),
		brokenOrderRepo{Repository: f.store.Orders()},
		f.stock,
		pricing.NewEngine(),
		numerator.NewMock(),
		f.store,
		time.UTC,
	)

	_, err := coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDatabase, appErr.Code)
	assert.True(t, apperror.IsRetryable(err))

	// Rolled back cleanly: stock restored, nothing persisted.
	got, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	orders, err := f.store.Orders().List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCommit_UsagesAppliedInIngredientIDOrder(t *testing.T) {
	f := newCommitFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Latte", "3.50", 10)
	a := f.addIngredient(t, "Milk", 5)
	b := f.addIngredient(t, "Beans", 5)

	lo, hi := a, b
	if hi.ID.String() < lo.ID.String() {
		lo, hi = hi, lo
	}

	// Submitted in descending id order; applied ascending.
	_, err := f.coordinator.Commit(ctx, order.CommitRequest{
		Items:          []pricing.CartItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  pricing.PaymentCash,
		ServiceType:    order.ServiceDineIn,
		AmountReceived: types.MustMoney("10.00"),
		IngredientUsages: []order.IngredientUsage{
			{IngredientID: hi.ID, Quantity: types.NewQuantityFromFloat64(1)},
			{IngredientID: lo.ID, Quantity: types.NewQuantityFromFloat64(1)},
		},
	})
	require.NoError(t, err)

	saleType := ledger.MovementSale
	movements, err := f.stock.GetAll(ctx, ledger.MovementFilter{Type: &saleType})
	require.NoError(t, err)
	require.Len(t, movements, 2)

	// Newest first: the higher-id ingredient was appended last.
	assert.Equal(t, hi.ID, movements[0].IngredientID)
	assert.Equal(t, lo.ID, movements[1].IngredientID)
}
