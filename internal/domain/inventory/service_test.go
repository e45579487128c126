package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"
	"bakehouse/internal/domain/inventory"
	"bakehouse/internal/domain/recipes"
	"bakehouse/internal/infrastructure/storage/memory"
)

type env struct {
	svc     *inventory.Service
	repo    *memory.InventoryRepository
	items   *memory.ItemRepository
	recipes *memory.RecipeRepository
}

func newEnv(t *testing.T) (*env, context.Context) {
	t.Helper()
	store := memory.NewStore()
	e := &env{
		repo:    memory.NewInventoryRepository(store),
		items:   memory.NewItemRepository(store),
		recipes: memory.NewRecipeRepository(store),
	}
	e.svc = inventory.NewService(e.repo, e.items, e.recipes, memory.NewTxManager(store))
	return e, context.Background()
}

func (e *env) addItem(t *testing.T, ctx context.Context, name string, perishable bool, shelfDays int) *item.Item {
	t.Helper()
	cat := item.CategoryIngredient
	it := item.New(name, cat, item.UnitKg)
	it.Code = "T-" + name
	if perishable {
		it.IsPerishable = true
		it.ShelfLifeDays = &shelfDays
	}
	require.NoError(t, e.items.Create(ctx, it))
	return it
}

func (e *env) receive(t *testing.T, ctx context.Context, it *item.Item, lotNo string, qty string, cost string, expiresAt *time.Time) *inventory.StockLot {
	t.Helper()
	lot, err := e.svc.Receive(ctx, inventory.ReceiveRequest{
		ItemID:    it.ID,
		LotNo:     lotNo,
		Qty:       types.MustQty(qty),
		Actor:     "tester",
		UnitCost:  types.MustQty(cost),
		ExpiresAt: expiresAt,
		Reason:    "delivery",
	})
	require.NoError(t, err)
	return lot
}

func (e *env) lotQty(t *testing.T, ctx context.Context, lotID id.ID) types.Quantity {
	t.Helper()
	lot, err := e.repo.GetLotByID(ctx, lotID)
	require.NoError(t, err)
	return lot.Qty
}

// checkConservation asserts the signed movement sum equals the live lot total.
func (e *env) checkConservation(t *testing.T, ctx context.Context, itemID id.ID) {
	t.Helper()
	ledger, err := e.repo.SumSignedMovements(ctx, itemID)
	require.NoError(t, err)

	lots, err := e.repo.GetLiveLots(ctx, itemID)
	require.NoError(t, err)
	total := types.Zero()
	for _, l := range lots {
		total = total.Add(l.Qty)
	}

	assert.True(t, ledger.Equal(total),
		"ledger %s != live lots %s", ledger, total)
}

func TestConsume_FEFO(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", true, 90)

	now := time.Now().UTC()
	d30 := now.AddDate(0, 0, 30)
	d10 := now.AddDate(0, 0, 10)
	d20 := now.AddDate(0, 0, 20)

	a := e.receive(t, ctx, flour, "A", "50", "1", &d30)
	b := e.receive(t, ctx, flour, "B", "50", "1", &d10)
	c := e.receive(t, ctx, flour, "C", "50", "1", &d20)

	movs, err := e.svc.Consume(ctx, inventory.ConsumeRequest{
		ItemID: flour.ID,
		Qty:    types.Qty(120),
		Reason: "baking",
		Actor:  "tester",
	})
	require.NoError(t, err)
	require.Len(t, movs, 3)

	assert.True(t, e.lotQty(t, ctx, a.ID).Equal(types.Qty(30)))
	assert.True(t, e.lotQty(t, ctx, b.ID).IsZero())
	assert.True(t, e.lotQty(t, ctx, c.ID).IsZero())
	e.checkConservation(t, ctx, flour.ID)
}

func TestConsume_FIFO(t *testing.T) {
	e, ctx := newEnv(t)
	sugar := e.addItem(t, ctx, "sugar", false, 0)

	a := e.receive(t, ctx, sugar, "A", "100", "1", nil)
	time.Sleep(2 * time.Millisecond)
	b := e.receive(t, ctx, sugar, "B", "100", "1", nil)

	_, err := e.svc.Consume(ctx, inventory.ConsumeRequest{
		ItemID: sugar.ID,
		Qty:    types.Qty(150),
		Reason: "baking",
		Actor:  "tester",
	})
	require.NoError(t, err)

	assert.True(t, e.lotQty(t, ctx, a.ID).IsZero())
	assert.True(t, e.lotQty(t, ctx, b.ID).Equal(types.Qty(50)))
	e.checkConservation(t, ctx, sugar.ID)
}

func TestConsume_InsufficientLeavesStateUntouched(t *testing.T) {
	e, ctx := newEnv(t)
	butter := e.addItem(t, ctx, "butter", false, 0)
	lot := e.receive(t, ctx, butter, "A", "30", "5", nil)

	_, err := e.svc.Consume(ctx, inventory.ConsumeRequest{
		ItemID: butter.ID,
		Qty:    types.Qty(100),
		Reason: "baking",
		Actor:  "tester",
	})
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "100", appErr.Details["requested"])
	assert.Equal(t, "30", appErr.Details["available"])
	assert.Equal(t, "70", appErr.Details["shortfall"])

	// Nothing written, nothing decremented.
	assert.True(t, e.lotQty(t, ctx, lot.ID).Equal(types.Qty(30)))
	movs, err := e.repo.ListMovements(ctx, inventory.MovementFilter{ItemID: &butter.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, inventory.MovementReceive, movs[0].Type)
}

func TestConsume_PreferredLotWithOverflow(t *testing.T) {
	e, ctx := newEnv(t)
	yeast := e.addItem(t, ctx, "yeast", true, 30)

	now := time.Now().UTC()
	soon := now.AddDate(0, 0, 3)
	later := now.AddDate(0, 0, 25)

	early := e.receive(t, ctx, yeast, "EARLY", "40", "2", &soon)
	pinned := e.receive(t, ctx, yeast, "PINNED", "30", "2", &later)

	lotNo := "PINNED"
	movs, err := e.svc.Consume(ctx, inventory.ConsumeRequest{
		ItemID: yeast.ID,
		Qty:    types.Qty(50),
		Reason: "special order",
		Actor:  "tester",
		LotNo:  &lotNo,
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	// The pinned lot drains first even though policy order prefers EARLY.
	assert.True(t, e.lotQty(t, ctx, pinned.ID).IsZero())
	assert.True(t, e.lotQty(t, ctx, early.ID).Equal(types.Qty(20)))

	assert.Equal(t, pinned.ID, *movs[0].LotID)
	assert.True(t, movs[0].Qty.Equal(types.Qty(30)))

	assert.Equal(t, early.ID, *movs[1].LotID)
	assert.True(t, movs[1].Qty.Equal(types.Qty(20)))
	require.NotNil(t, movs[1].Notes)
	assert.Contains(t, *movs[1].Notes, "overflow from lot PINNED")

	e.checkConservation(t, ctx, yeast.ID)
}

func TestConsume_PreferredLotInsufficientTotal(t *testing.T) {
	e, ctx := newEnv(t)
	salt := e.addItem(t, ctx, "salt", false, 0)
	a := e.receive(t, ctx, salt, "A", "10", "1", nil)
	e.receive(t, ctx, salt, "B", "5", "1", nil)

	lotNo := "A"
	_, err := e.svc.Consume(ctx, inventory.ConsumeRequest{
		ItemID: salt.ID,
		Qty:    types.Qty(20),
		Reason: "baking",
		Actor:  "tester",
		LotNo:  &lotNo,
	})
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "15", appErr.Details["available"])
	assert.True(t, e.lotQty(t, ctx, a.ID).Equal(types.Qty(10)))
}

func TestConsume_InvalidQuantity(t *testing.T) {
	e, ctx := newEnv(t)
	it := e.addItem(t, ctx, "anything", false, 0)

	_, err := e.svc.Consume(ctx, inventory.ConsumeRequest{
		ItemID: it.ID,
		Qty:    types.Qty(-5),
		Reason: "oops",
		Actor:  "tester",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidQuantity, appErr.Code)
}

func TestReceive_DerivesExpiryFromShelfLife(t *testing.T) {
	e, ctx := newEnv(t)
	milk := e.addItem(t, ctx, "milk", true, 7)

	lot := e.receive(t, ctx, milk, "M1", "20", "1.5", nil)
	require.NotNil(t, lot.ExpiresAt)

	wantDay := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	assert.Equal(t, wantDay, lot.ExpiresAt.Truncate(24*time.Hour))
}

func TestReceive_DuplicateLotNo(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", false, 0)
	e.receive(t, ctx, flour, "F1", "10", "1", nil)

	_, err := e.svc.Receive(ctx, inventory.ReceiveRequest{
		ItemID: flour.ID,
		LotNo:  "F1",
		Qty:    types.Qty(10),
		Actor:  "tester",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func newBreadRecipe(t *testing.T, e *env, ctx context.Context, flour, water *item.Item) (*recipes.Recipe, *item.Item) {
	t.Helper()
	bread := item.New("bread", item.CategoryFinishedGood, item.UnitPcs)
	bread.Code = "T-bread"
	require.NoError(t, e.items.Create(ctx, bread))

	r := recipes.New("country loaf", bread.ID, types.Qty(1), item.UnitPcs)
	r.Items = []recipes.RecipeItem{
		{ID: id.New(), RecipeID: r.ID, ItemID: flour.ID, Qty: types.MustQty("0.5"), Unit: item.UnitKg, LossFactor: types.MustQty("10")},
		{ID: id.New(), RecipeID: r.ID, ItemID: water.ID, Qty: types.MustQty("0.3"), Unit: item.UnitL, LossFactor: types.Zero()},
	}
	require.NoError(t, e.recipes.Create(ctx, r))
	return r, bread
}

func TestProduce_HappyPath(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", false, 0)
	water := e.addItem(t, ctx, "water", false, 0)
	recipe, bread := newBreadRecipe(t, e, ctx, flour, water)

	e.receive(t, ctx, flour, "F1", "20", "2", nil)
	e.receive(t, ctx, water, "W1", "10", "0", nil)

	lot, err := e.svc.Produce(ctx, inventory.ProduceRequest{
		RecipeID:      recipe.ID,
		ProductionQty: types.Qty(20),
		LotNo:         "BREAD-001",
		Actor:         "baker",
	})
	require.NoError(t, err)

	// 0.5 * 20 * 1.10 = 11 kg flour, 0.3 * 20 = 6 L water.
	flourLots, err := e.repo.GetLiveLots(ctx, flour.ID)
	require.NoError(t, err)
	require.Len(t, flourLots, 1)
	assert.True(t, flourLots[0].Qty.Equal(types.Qty(9)))

	assert.True(t, lot.Qty.Equal(types.Qty(20)))
	// Ingredient cost 11 kg * 2.00 = 22, over 20 loaves = 1.10 each.
	assert.True(t, lot.UnitCost.Equal(types.MustQty("1.1")), "got %s", lot.UnitCost)

	// Output movement is a produce entry on the new lot.
	movs, err := e.repo.ListMovements(ctx, inventory.MovementFilter{ItemID: &bread.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, inventory.MovementProduce, movs[0].Type)

	e.checkConservation(t, ctx, flour.ID)
	e.checkConservation(t, ctx, water.ID)
	e.checkConservation(t, ctx, bread.ID)
}

func TestProduce_PartialShortageIsAtomic(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", false, 0)
	water := e.addItem(t, ctx, "water", false, 0)
	recipe, bread := newBreadRecipe(t, e, ctx, flour, water)

	// Enough water, not enough flour.
	e.receive(t, ctx, flour, "F1", "5", "2", nil)
	water1 := e.receive(t, ctx, water, "W1", "100", "0", nil)

	_, err := e.svc.Produce(ctx, inventory.ProduceRequest{
		RecipeID:      recipe.ID,
		ProductionQty: types.Qty(20),
		LotNo:         "BREAD-002",
		Actor:         "baker",
	})
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	missing, ok := appErr.Details["missing_ingredients"].([]apperror.IngredientShortage)
	require.True(t, ok)
	require.Len(t, missing, 1)
	assert.Equal(t, "flour", missing[0].ItemName)
	assert.Equal(t, "11", missing[0].Needed)
	assert.Equal(t, "5", missing[0].Available)
	assert.Equal(t, "6", missing[0].Shortage)

	// Neither ingredient was touched and no output lot exists.
	assert.True(t, e.lotQty(t, ctx, water1.ID).Equal(types.Qty(100)))
	breadLots, err := e.repo.GetLiveLots(ctx, bread.ID)
	require.NoError(t, err)
	assert.Empty(t, breadLots)

	movs, err := e.repo.ListMovements(ctx, inventory.MovementFilter{ItemID: &flour.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1) // only the receive
}

func TestAdjust_PositiveWithoutLot(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", false, 0)

	movs, err := e.svc.Adjust(ctx, inventory.AdjustRequest{
		ItemID: flour.ID,
		Qty:    types.Qty(15),
		Reason: "count correction",
		Actor:  "tester",
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, inventory.MovementAdjust, movs[0].Type)
	assert.True(t, movs[0].SignedQty().Equal(types.Qty(15)))

	lots, err := e.repo.GetLiveLots(ctx, flour.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Contains(t, lots[0].LotNo, "ADJ-")
	e.checkConservation(t, ctx, flour.ID)
}

func TestAdjust_NegativeWithoutLot(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", false, 0)
	e.receive(t, ctx, flour, "F1", "10", "1", nil)
	e.receive(t, ctx, flour, "F2", "10", "1", nil)

	movs, err := e.svc.Adjust(ctx, inventory.AdjustRequest{
		ItemID: flour.ID,
		Qty:    types.Qty(-12),
		Reason: "shrinkage",
		Actor:  "tester",
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	// Adjust movements carry the signed quantity directly.
	total := types.Zero()
	for _, m := range movs {
		assert.Equal(t, inventory.MovementAdjust, m.Type)
		assert.True(t, m.Qty.IsNegative())
		total = total.Add(m.SignedQty())
	}
	assert.True(t, total.Equal(types.Qty(-12)))
	e.checkConservation(t, ctx, flour.ID)
}

func TestAdjust_LotGuardAgainstNegative(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", false, 0)
	lot := e.receive(t, ctx, flour, "F1", "10", "1", nil)

	lotNo := "F1"
	_, err := e.svc.Adjust(ctx, inventory.AdjustRequest{
		ItemID: flour.ID,
		Qty:    types.Qty(-11),
		Reason: "bad count",
		Actor:  "tester",
		LotNo:  &lotNo,
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNegativeLotQuantity, appErr.Code)
	assert.True(t, e.lotQty(t, ctx, lot.ID).Equal(types.Qty(10)))
}

func TestItemUnitCost_WeightedAverage(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", false, 0)
	e.receive(t, ctx, flour, "F1", "10", "2.00", nil)
	e.receive(t, ctx, flour, "F2", "10", "4.00", nil)

	cost, err := e.svc.ItemUnitCost(ctx, flour.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(types.MustQty("3.00")), "got %s", cost)

	// No stock means zero cost, not an error.
	empty := e.addItem(t, ctx, "empty", false, 0)
	cost, err = e.svc.ItemUnitCost(ctx, empty.ID)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}

func TestValidateProduction(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", false, 0)
	water := e.addItem(t, ctx, "water", false, 0)
	recipe, _ := newBreadRecipe(t, e, ctx, flour, water)

	e.receive(t, ctx, flour, "F1", "5", "2", nil)
	e.receive(t, ctx, water, "W1", "100", "0", nil)

	res, err := e.svc.ValidateProduction(ctx, recipe.ID, types.Qty(20))
	require.NoError(t, err)
	assert.False(t, res.CanProduce)
	require.Len(t, res.Missing, 1)
	assert.Equal(t, "flour", res.Missing[0].ItemName)

	// Topping up flour flips the verdict.
	e.receive(t, ctx, flour, "F2", "10", "2", nil)
	res, err = e.svc.ValidateProduction(ctx, recipe.ID, types.Qty(20))
	require.NoError(t, err)
	assert.True(t, res.CanProduce)
	assert.Empty(t, res.Missing)
	assert.True(t, res.TotalCost.Equal(types.Qty(22)), "got %s", res.TotalCost)
}

func TestConcurrentConsume_NoNegativeLots(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", false, 0)
	e.receive(t, ctx, flour, "F1", "60", "1", nil)

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.Consume(ctx, inventory.ConsumeRequest{
				ItemID: flour.ID,
				Qty:    types.Qty(10),
				Reason: "parallel",
				Actor:  "tester",
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.True(t, apperror.IsInsufficientStock(err))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, succeeded)

	lots, err := e.repo.GetLiveLots(ctx, flour.ID)
	require.NoError(t, err)
	for _, l := range lots {
		assert.False(t, l.Qty.IsNegative())
	}
	e.checkConservation(t, ctx, flour.ID)
}

func TestEndToEndFlourScenario(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", true, 180)
	water := e.addItem(t, ctx, "water", false, 0)
	recipe, bread := newBreadRecipe(t, e, ctx, flour, water)

	// Two deliveries at different prices, then a production run, a manual
	// correction and a pinned-lot consumption.
	e.receive(t, ctx, flour, "FL-1", "25", "1.80", nil)
	e.receive(t, ctx, flour, "FL-2", "25", "2.20", nil)
	e.receive(t, ctx, water, "WA-1", "50", "0", nil)

	_, err := e.svc.Produce(ctx, inventory.ProduceRequest{
		RecipeID:      recipe.ID,
		ProductionQty: types.Qty(40),
		LotNo:         "BAKE-2026-001",
		Actor:         "baker",
	})
	require.NoError(t, err)

	_, err = e.svc.Adjust(ctx, inventory.AdjustRequest{
		ItemID: flour.ID,
		Qty:    types.MustQty("-1.5"),
		Reason: "spillage during count",
		Actor:  "baker",
	})
	require.NoError(t, err)

	lotNo := "BAKE-2026-001"
	_, err = e.svc.Consume(ctx, inventory.ConsumeRequest{
		ItemID: bread.ID,
		Qty:    types.Qty(35),
		Reason: "order #481",
		Actor:  "front desk",
		LotNo:  &lotNo,
	})
	require.NoError(t, err)

	// 50 - 22 (production, loss-adjusted) - 1.5 (adjust) = 26.5
	flourLots, err := e.repo.GetLiveLots(ctx, flour.ID)
	require.NoError(t, err)
	flourTotal := types.Zero()
	for _, l := range flourLots {
		flourTotal = flourTotal.Add(l.Qty)
	}
	assert.True(t, flourTotal.Equal(types.MustQty("26.5")), "got %s", flourTotal)

	for _, itemID := range []id.ID{flour.ID, water.ID, bread.ID} {
		e.checkConservation(t, ctx, itemID)
	}
}
