package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/infrastructure/storage/memory"
)

func newLedgerFixture(t *testing.T) (*memory.Store, *ledger.Service, *ingredient.Ingredient) {
	t.Helper()
	store := memory.New()
	service := ledger.NewService(store.Ledger(), store)

	ing := ingredient.New("Coffee Beans", "kg")
	require.NoError(t, store.Ingredients().Create(context.Background(), ing))
	return store, service, ing
}

func TestAppendMovement_PurchaseSetsProjectionAndCost(t *testing.T) {
	store, service, ing := newLedgerFixture(t)
	ctx := context.Background()

	cost := types.MustMoney("12.50")
	m, err := service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(5),
		UnitCost:     &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.DirectionIn, m.Direction)
	require.NotNil(t, m.UnitCostAtTime)
	assert.True(t, m.UnitCostAtTime.Equal(cost))

	got, err := store.Ingredients().GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(5), got.Quantity)
	require.NotNil(t, got.UnitCost)
	assert.True(t, got.UnitCost.Equal(cost))
	require.NotNil(t, got.LastPurchaseCost)
	assert.True(t, got.LastPurchaseCost.Equal(cost))
	require.NotNil(t, got.LastPurchaseDate)
}

func TestAppendMovement_PurchaseReplacesCost(t *testing.T) {
	store, service, ing := newLedgerFixture(t)
	ctx := context.Background()

	first := types.MustMoney("10.00")
	_, err := service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(5),
		UnitCost:     &first,
	})
	require.NoError(t, err)

	second := types.MustMoney("14.00")
	_, err = service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(5),
		UnitCost:     &second,
	})
	require.NoError(t, err)

	got, err := store.Ingredients().GetByID(ctx, ing.ID)
	require.NoError(t, err)
	// Simple replace-cost: no averaging across purchases.
	require.NotNil(t, got.UnitCost)
	assert.True(t, got.UnitCost.Equal(second))
}

func TestAppendMovement_SaleSnapshotsCurrentCost(t *testing.T) {
	_, service, ing := newLedgerFixture(t)
	ctx := context.Background()

	cost := types.MustMoney("10.00")
	_, err := service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(10),
		UnitCost:     &cost,
	})
	require.NoError(t, err)

	sale, err := service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementSale,
		Quantity:     types.NewQuantityFromFloat64(2),
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.DirectionOut, sale.Direction)

	// Sale freezes the cost in effect at record time.
	require.NotNil(t, sale.UnitCostAtTime)
	assert.True(t, sale.UnitCostAtTime.Equal(cost))

	// A later purchase at a new cost never rewrites the old snapshot.
	newCost := types.MustMoney("20.00")
	_, err = service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(1),
		UnitCost:     &newCost,
	})
	require.NoError(t, err)

	history, err := service.GetHistory(ctx, ing.ID, ledger.MovementFilter{Limit: 10})
	require.NoError(t, err)
	for _, m := range history {
		if m.ID == sale.ID {
			require.NotNil(t, m.UnitCostAtTime)
			assert.True(t, m.UnitCostAtTime.Equal(cost))
		}
	}
}

func TestAppendMovement_OversellFailsWithoutSideEffects(t *testing.T) {
	store, service, ing := newLedgerFixture(t)
	ctx := context.Background()

	cost := types.MustMoney("10.00")
	_, err := service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(3),
		UnitCost:     &cost,
	})
	require.NoError(t, err)

	_, err = service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementSale,
		Quantity:     types.NewQuantityFromFloat64(5),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// No phantom movement and an unchanged projection.
	history, err := service.GetHistory(ctx, ing.ID, ledger.MovementFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, history, 1)

	got, err := store.Ingredients().GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(3), got.Quantity)
}

func TestAppendMovement_AdjustmentDirection(t *testing.T) {
	store, service, ing := newLedgerFixture(t)
	ctx := context.Background()

	// Direction must be explicit for adjustments.
	_, err := service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementAdjustment,
		Quantity:     types.NewQuantityFromFloat64(1),
	})
	require.Error(t, err)

	_, err = service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementAdjustment,
		Direction:    ledger.DirectionIn,
		Quantity:     types.NewQuantityFromFloat64(2),
	})
	require.NoError(t, err)

	// A plain adjustment cannot drive the projection negative.
	_, err = service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementAdjustment,
		Direction:    ledger.DirectionOut,
		Quantity:     types.NewQuantityFromFloat64(5),
	})
	assert.True(t, apperror.IsInsufficientStock(err))

	// AllowNegative opts in for corrections.
	_, err = service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID:  ing.ID,
		Type:          ledger.MovementAdjustment,
		Direction:     ledger.DirectionOut,
		Quantity:      types.NewQuantityFromFloat64(5),
		AllowNegative: true,
	})
	require.NoError(t, err)

	got, err := store.Ingredients().GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(-3), got.Quantity)
}

func TestAppendMovement_Validation(t *testing.T) {
	_, service, ing := newLedgerFixture(t)
	ctx := context.Background()

	_, err := service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         "teleport",
		Quantity:     types.NewQuantityFromFloat64(1),
	})
	require.Error(t, err)

	_, err = service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(0),
	})
	require.Error(t, err)

	negative := types.MustMoney("-1.00")
	_, err = service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(1),
		UnitCost:     &negative,
	})
	require.Error(t, err)
}

func TestAppendMovement_ConcurrentAppendsSerialize(t *testing.T) {
	store, service, ing := newLedgerFixture(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			cost := types.MustMoney("1.00")
			_, err := service.AppendMovement(ctx, ledger.AppendCommand{
				IngredientID: ing.ID,
				Type:         ledger.MovementPurchase,
				Quantity:     types.NewQuantityFromFloat64(1),
				UnitCost:     &cost,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Ingredients().GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(workers), got.Quantity)

	sum, err := store.Ledger().SumSignedDeltas(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Quantity, sum)
}

func TestReconcileProjection_RepairsDrift(t *testing.T) {
	store, service, ing := newLedgerFixture(t)
	ctx := context.Background()

	cost := types.MustMoney("5.00")
	_, err := service.AppendMovement(ctx, ledger.AppendCommand{
		IngredientID: ing.ID,
		Type:         ledger.MovementPurchase,
		Quantity:     types.NewQuantityFromFloat64(10),
		UnitCost:     &cost,
	})
	require.NoError(t, err)

	// Consistent projection: nothing to repair.
	repaired, err := service.ReconcileProjection(ctx, ing.ID)
	require.NoError(t, err)
	assert.False(t, repaired)

	// Corrupt the projection behind the ledger's back.
	got, err := store.Ledger().GetIngredientForUpdate(ctx, ing.ID)
	require.NoError(t, err)
	got.Quantity = types.NewQuantityFromFloat64(99)
	require.NoError(t, store.Ledger().ApplyProjection(ctx, got))

	repaired, err = service.ReconcileProjection(ctx, ing.ID)
	require.NoError(t, err)
	assert.True(t, repaired)

	fixed, err := store.Ingredients().GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(10), fixed.Quantity)

	// A full sweep right after finds nothing left to do.
	repairs, err := service.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, repairs)
}

func TestGetHistory_NewestFirst(t *testing.T) {
	_, service, ing := newLedgerFixture(t)
	ctx := context.Background()

	cost := types.MustMoney("2.00")
	for i := 0; i < 3; i++ {
		_, err := service.AppendMovement(ctx, ledger.AppendCommand{
			IngredientID: ing.ID,
			Type:         ledger.MovementPurchase,
			Quantity:     types.NewQuantityFromFloat64(1),
			UnitCost:     &cost,
		})
		require.NoError(t, err)
	}

	history, err := service.GetHistory(ctx, ing.ID, ledger.MovementFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i-1].CreatedAt.Before(history[i].CreatedAt))
	}

	// Type filter narrows the result.
	saleType := ledger.MovementSale
	filtered, err := service.GetHistory(ctx, ing.ID, ledger.MovementFilter{Type: &saleType, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}
