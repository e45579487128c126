package reports_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/alerts"
	"bakehouse/internal/domain/catalogs/item"
	"bakehouse/internal/domain/inventory"
	"bakehouse/internal/domain/reports"
	"bakehouse/internal/infrastructure/storage/memory"
)

type env struct {
	svc     *reports.Service
	stock   *inventory.Service
	items   *memory.ItemRepository
	inv     *memory.InventoryRepository
	recipes *memory.RecipeRepository
}

func newEnv(t *testing.T) (*env, context.Context) {
	t.Helper()
	store := memory.NewStore()
	e := &env{
		items:   memory.NewItemRepository(store),
		inv:     memory.NewInventoryRepository(store),
		recipes: memory.NewRecipeRepository(store),
	}
	e.stock = inventory.NewService(e.inv, e.items, e.recipes, memory.NewTxManager(store))

	engine, err := alerts.NewEngine(alerts.DefaultRules())
	require.NoError(t, err)

	e.svc = reports.NewService(e.items, e.inv, e.stock, engine)
	return e, context.Background()
}

func (e *env) addItem(t *testing.T, ctx context.Context, name string, reorder string) *item.Item {
	t.Helper()
	it := item.New(name, item.CategoryIngredient, item.UnitKg)
	it.Code = "T-" + name
	it.ReorderLevel = types.MustQty(reorder)
	require.NoError(t, e.items.Create(ctx, it))
	return it
}

func (e *env) receive(t *testing.T, ctx context.Context, it *item.Item, lotNo, qty string, expiresAt *time.Time) {
	t.Helper()
	_, err := e.stock.Receive(ctx, inventory.ReceiveRequest{
		ItemID:    it.ID,
		LotNo:     lotNo,
		Qty:       types.MustQty(qty),
		Actor:     "tester",
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)
}

func TestLowStockItems(t *testing.T) {
	e, ctx := newEnv(t)

	low := e.addItem(t, ctx, "flour", "10")
	ok := e.addItem(t, ctx, "sugar", "10")
	e.receive(t, ctx, low, "F1", "8", nil)
	e.receive(t, ctx, ok, "S1", "50", nil)

	got, err := e.svc.LowStockItems(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "flour", got[0].Item.Name)
	assert.True(t, got[0].Stock.Equal(types.Qty(8)))

	// 8 <= 10*1.5 triggers the reorder alert rule.
	require.Len(t, got[0].Alerts, 1)
	assert.Equal(t, "reorder_soon", got[0].Alerts[0].Rule)
}

func TestSummaryAndExpiry(t *testing.T) {
	e, ctx := newEnv(t)
	now := time.Now().UTC()

	milk := e.addItem(t, ctx, "milk", "0")
	past := now.AddDate(0, 0, -1)
	soon := now.AddDate(0, 0, 3)
	far := now.AddDate(0, 0, 60)

	e.receive(t, ctx, milk, "OLD", "5", &past)
	e.receive(t, ctx, milk, "SOON", "5", &soon)
	e.receive(t, ctx, milk, "FRESH", "5", &far)

	expiring, err := e.svc.ExpiringLots(ctx, 7)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "SOON", expiring[0].Lot.LotNo)
	assert.Equal(t, "milk", expiring[0].ItemName)

	expired, err := e.svc.ExpiredLots(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "OLD", expired[0].Lot.LotNo)

	summary, err := e.svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalItems)
	assert.Equal(t, 1, summary.ExpiringLots)
	assert.Equal(t, 1, summary.ExpiredLots)
}

func TestWriteOffExpired(t *testing.T) {
	e, ctx := newEnv(t)
	now := time.Now().UTC()

	milk := e.addItem(t, ctx, "milk", "0")
	past := now.AddDate(0, 0, -2)
	far := now.AddDate(0, 0, 30)

	e.receive(t, ctx, milk, "OLD", "5", &past)
	e.receive(t, ctx, milk, "FRESH", "7", &far)

	result, err := e.svc.WriteOffExpired(ctx, "night shift")
	require.NoError(t, err)
	assert.Equal(t, 1, result.LotsWrittenOff)
	assert.Equal(t, 0, result.Failed)
	assert.True(t, result.TotalQty.Equal(types.Qty(5)))

	// The expired lot is drained through a spoilage movement; the fresh
	// lot is untouched and the ledger still balances.
	spoilage := inventory.MovementSpoilage
	movs, err := e.inv.ListMovements(ctx, inventory.MovementFilter{ItemID: &milk.ID, Type: &spoilage})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.True(t, movs[0].Qty.Equal(types.Qty(5)))

	lots, err := e.inv.GetLiveLots(ctx, milk.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "FRESH", lots[0].LotNo)

	ledger, err := e.inv.SumSignedMovements(ctx, milk.ID)
	require.NoError(t, err)
	assert.True(t, ledger.Equal(types.Qty(7)))
}

func TestExportMovements(t *testing.T) {
	e, ctx := newEnv(t)
	flour := e.addItem(t, ctx, "flour", "0")
	e.receive(t, ctx, flour, "F1", "10", nil)

	_, err := e.stock.Consume(ctx, inventory.ConsumeRequest{
		ItemID: flour.ID,
		Qty:    types.Qty(4),
		Reason: "baking",
		Actor:  "tester",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.svc.ExportMovements(ctx, &buf, inventory.MovementFilter{ItemID: &flour.ID}))

	zr, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer zr.Close()

	var lines []inventory.StockMovement
	scanner := bufio.NewScanner(zr)
	for scanner.Scan() {
		var m inventory.StockMovement
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 2)
	assert.Equal(t, inventory.MovementReceive, lines[0].Type)
	assert.Equal(t, inventory.MovementConsume, lines[1].Type)
}
