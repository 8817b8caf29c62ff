package reports_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/catalog/product"
	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/domain/reports"
	"lemonpos/internal/infrastructure/storage/memory"
)

type reportsFixture struct {
	store   *memory.Store
	stock   *ledger.Service
	service *reports.Service
}

func newReportsFixture(t *testing.T) *reportsFixture {
	t.Helper()
	store := memory.New()
	return &reportsFixture{
		store:   store,
		stock:   ledger.NewService(store.Ledger(), store),
		service: reports.NewService(store.Reports()),
	}
}

// addIngredient stocks an ingredient through a real purchase so the
// projection and cost fields come from the ledger, not fixture hacks.
func (f *reportsFixture) addIngredient(t *testing.T, name string, supplier *string, quantity float64, unitCost string, threshold float64) *ingredient.Ingredient {
	t.Helper()
	ctx := context.Background()

	ing := ingredient.New(name, "kg")
	ing.Supplier = supplier
	ing.LowStockThreshold = types.NewQuantityFromFloat64(threshold)
	require.NoError(t, f.store.Ingredients().Create(ctx, ing))

	if quantity > 0 {
		cmd := ledger.AppendCommand{
			IngredientID: ing.ID,
			Type:         ledger.MovementPurchase,
			Quantity:     types.NewQuantityFromFloat64(quantity),
		}
		if unitCost != "" {
			cost := types.MustMoney(unitCost)
			cmd.UnitCost = &cost
		}
		_, err := f.stock.AppendMovement(ctx, cmd)
		require.NoError(t, err)
	}
	return ing
}

func strPtr(s string) *string { return &s }

func TestValuation_BucketsBySupplier(t *testing.T) {
	f := newReportsFixture(t)

	f.addIngredient(t, "Arabica", strPtr("Supplier A"), 20, "1.00", 1)
	f.addIngredient(t, "Robusta", strPtr("Supplier B"), 20, "1.00", 1)
	// No supplier and no established cost: zero value, still counted.
	f.addIngredient(t, "Ice", nil, 50, "", 1)

	report, err := f.service.Valuation(context.Background())
	require.NoError(t, err)

	assert.True(t, report.TotalValue.Equal(types.MustMoney("40.00")), "total = %s", report.TotalValue)
	assert.Equal(t, 3, report.TotalItems)

	require.Len(t, report.ValueBySupplier, 3)
	assert.Equal(t, "Supplier A", report.ValueBySupplier[0].Supplier)
	assert.True(t, report.ValueBySupplier[0].TotalValue.Equal(types.MustMoney("20.00")))
	assert.Equal(t, 1, report.ValueBySupplier[0].ItemCount)

	assert.Equal(t, "Supplier B", report.ValueBySupplier[1].Supplier)

	// The unspecified bucket always sorts last.
	last := report.ValueBySupplier[2]
	assert.Equal(t, reports.UnspecifiedSupplier, last.Supplier)
	assert.True(t, last.TotalValue.IsZero())
	assert.Equal(t, 1, last.ItemCount)
}

func TestValuation_ExcludesInactiveIngredients(t *testing.T) {
	f := newReportsFixture(t)
	ctx := context.Background()

	f.addIngredient(t, "Arabica", strPtr("Supplier A"), 10, "2.00", 1)
	retired := f.addIngredient(t, "Old Blend", strPtr("Supplier A"), 10, "2.00", 1)

	got, err := f.store.Ingredients().GetByID(ctx, retired.ID)
	require.NoError(t, err)
	got.Active = false
	require.NoError(t, f.store.Ingredients().Update(ctx, got))

	report, err := f.service.Valuation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalItems)
	assert.True(t, report.TotalValue.Equal(types.MustMoney("20.00")))
}

func TestValuation_StableAcrossReads(t *testing.T) {
	f := newReportsFixture(t)
	f.addIngredient(t, "Arabica", strPtr("Supplier A"), 7, "3.00", 1)

	ctx := context.Background()
	first, err := f.service.Valuation(ctx)
	require.NoError(t, err)
	second, err := f.service.Valuation(ctx)
	require.NoError(t, err)

	assert.True(t, first.TotalValue.Equal(second.TotalValue))
	assert.Equal(t, first.TotalItems, second.TotalItems)
	assert.Equal(t, first.ValueBySupplier, second.ValueBySupplier)
}

func TestLowStock_ThresholdAndOrdering(t *testing.T) {
	f := newReportsFixture(t)
	ctx := context.Background()

	// quantity <= threshold is low, strictly above is not.
	f.addIngredient(t, "Arabica", nil, 2, "1.00", 5)
	f.addIngredient(t, "Robusta", nil, 5, "1.00", 5)
	f.addIngredient(t, "Milk", nil, 50, "1.00", 5)

	lowProduct := product.New("Latte", "coffee", types.MustMoney("3.00"))
	lowProduct.Stock = 1
	lowProduct.LowStockThreshold = 3
	require.NoError(t, f.store.Products().Create(ctx, lowProduct))

	okProduct := product.New("Mocha", "coffee", types.MustMoney("4.00"))
	okProduct.Stock = 50
	okProduct.LowStockThreshold = 3
	require.NoError(t, f.store.Products().Create(ctx, okProduct))

	report, err := f.service.LowStock(ctx)
	require.NoError(t, err)

	require.Len(t, report.Ingredients, 2)
	// Most depleted first.
	assert.Equal(t, "Arabica", report.Ingredients[0].Name)
	assert.Equal(t, "Robusta", report.Ingredients[1].Name)

	require.Len(t, report.Products, 1)
	assert.Equal(t, "Latte", report.Products[0].Name)
}

func TestLowStock_ExcludesInactive(t *testing.T) {
	f := newReportsFixture(t)
	ctx := context.Background()

	retired := f.addIngredient(t, "Old Blend", nil, 0, "", 5)
	got, err := f.store.Ingredients().GetByID(ctx, retired.ID)
	require.NoError(t, err)
	got.Active = false
	require.NoError(t, f.store.Ingredients().Update(ctx, got))

	report, err := f.service.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Ingredients)
}
