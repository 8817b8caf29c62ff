package ingredient_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/infrastructure/storage/memory"
)

func newIngredientService() (*memory.Store, *ingredient.Service) {
	store := memory.New()
	return store, ingredient.NewService(store.Ingredients())
}

func TestCreate_StartsAtZeroQuantity(t *testing.T) {
	_, service := newIngredientService()
	ctx := context.Background()

	ing := ingredient.New("Coffee Beans", "kg")
	// Stock only ever arrives through ledger movements.
	ing.Quantity = types.NewQuantityFromFloat64(50)
	require.NoError(t, service.Create(ctx, ing))

	got, err := service.GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	assert.Nil(t, got.UnitCost)
}

func TestCreate_RejectsInvalid(t *testing.T) {
	_, service := newIngredientService()
	ctx := context.Background()

	require.Error(t, service.Create(ctx, ingredient.New("", "kg")))
	require.Error(t, service.Create(ctx, ingredient.New("Coffee Beans", "")))

	ing := ingredient.New("Coffee Beans", "kg")
	ing.LowStockThreshold = types.NewQuantityFromFloat64(-1)
	require.Error(t, service.Create(ctx, ing))
}

func TestUpdate_PreservesLedgerOwnedFields(t *testing.T) {
	store, service := newIngredientService()
	ctx := context.Background()

	ing := ingredient.New("Coffee Beans", "kg")
	require.NoError(t, service.Create(ctx, ing))

	// Stock the ingredient through the ledger.
	stock := ledger.NewService(store.Ledger(), store)
	cost := types.MustMoney("12.00")
	_, err := stock.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(8),
		UnitCost:     &cost,
	})
	require.NoError(t, err)

	edited, err := service.GetByID(ctx, ing.ID)
	require.NoError(t, err)
	edited.Name = "Arabica Beans"
	edited.Supplier = strPtr("Supplier A")
	// Attempts to write ledger-owned fields are discarded.
	edited.Quantity = types.NewQuantityFromFloat64(999)
	edited.UnitCost = nil
	require.NoError(t, service.Update(ctx, edited))

	got, err := service.GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arabica Beans", got.Name)
	require.NotNil(t, got.Supplier)
	assert.Equal(t, "Supplier A", *got.Supplier)
	assert.Equal(t, types.NewQuantityFromFloat64(8), got.Quantity)
	require.NotNil(t, got.UnitCost)
	assert.True(t, got.UnitCost.Equal(cost))
}

func TestDeactivate_KeepsHistory(t *testing.T) {
	store, service := newIngredientService()
	ctx := context.Background()

	ing := ingredient.New("Coffee Beans", "kg")
	require.NoError(t, service.Create(ctx, ing))

	stock := ledger.NewService(store.Ledger(), store)
	cost := types.MustMoney("10.00")
	_, err := stock.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(3),
		UnitCost:     &cost,
	})
	require.NoError(t, err)

	require.NoError(t, service.Deactivate(ctx, ing.ID))

	got, err := service.GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	history, err := stock.GetHistory(ctx, ing.ID, ledger.MovementFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// A second deactivation is a conflict, not a no-op.
	err = service.Deactivate(ctx, ing.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestList_SupplierFilter(t *testing.T) {
	_, service := newIngredientService()
	ctx := context.Background()

	a := ingredient.New("Arabica", "kg")
	a.Supplier = strPtr("Supplier A")
	require.NoError(t, service.Create(ctx, a))

	b := ingredient.New("Robusta", "kg")
	b.Supplier = strPtr("Supplier B")
	require.NoError(t, service.Create(ctx, b))

	require.NoError(t, service.Create(ctx, ingredient.New("Ice", "kg")))

	supplier := "Supplier A"
	filtered, err := service.List(ctx, ingredient.ListFilter{Supplier: &supplier})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Arabica", filtered[0].Name)

	all, err := service.List(ctx, ingredient.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTotalCost(t *testing.T) {
	ing := ingredient.New("Coffee Beans", "kg")
	assert.True(t, ing.TotalCost().IsZero())

	cost := types.MustMoney("4.00")
	ing.UnitCost = &cost
	ing.Quantity = types.NewQuantityFromFloat64(2.5)
	assert.True(t, ing.TotalCost().Equal(types.MustMoney("10.00")))
}

func TestUpdate_NotFound(t *testing.T) {
	_, service := newIngredientService()

	ing := ingredient.New("Ghost", "kg")
	err := service.Update(context.Background(), ing)
	assert.True(t, apperror.IsNotFound(err))
}

func strPtr(s string) *string { return &s }
