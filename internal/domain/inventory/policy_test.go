package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"
)

func days(base time.Time, n int) *time.Time {
	d := base.AddDate(0, 0, n)
	return &d
}

func testLot(itemID id.ID, lotNo string, qty int64, receivedAt time.Time, expiresAt *time.Time) *StockLot {
	return &StockLot{
		ID:         id.New(),
		ItemID:     itemID,
		LotNo:      lotNo,
		Qty:        types.Qty(qty),
		ReceivedAt: receivedAt,
		ExpiresAt:  expiresAt,
	}
}

func TestOrderLots_FEFO(t *testing.T) {
	now := time.Now().UTC()
	it := &item.Item{ID: id.New(), IsPerishable: true}

	lots := []*StockLot{
		testLot(it.ID, "A", 50, now, days(now, 30)),
		testLot(it.ID, "B", 50, now, days(now, 10)),
		testLot(it.ID, "C", 50, now, days(now, 20)),
	}

	ordered := OrderLots(it, lots)
	require.Len(t, ordered, 3)
	assert.Equal(t, "B", ordered[0].LotNo)
	assert.Equal(t, "C", ordered[1].LotNo)
	assert.Equal(t, "A", ordered[2].LotNo)
}

func TestOrderLots_FEFO_NilExpiryLast(t *testing.T) {
	now := time.Now().UTC()
	it := &item.Item{ID: id.New(), IsPerishable: true}

	lots := []*StockLot{
		testLot(it.ID, "open-ended", 10, now.Add(-48*time.Hour), nil),
		testLot(it.ID, "dated", 10, now, days(now, 5)),
	}

	ordered := OrderLots(it, lots)
	require.Len(t, ordered, 2)
	assert.Equal(t, "dated", ordered[0].LotNo)
	assert.Equal(t, "open-ended", ordered[1].LotNo)
}

func TestOrderLots_FIFO(t *testing.T) {
	now := time.Now().UTC()
	it := &item.Item{ID: id.New(), IsPerishable: false}

	lots := []*StockLot{
		testLot(it.ID, "newer", 10, now, nil),
		testLot(it.ID, "older", 10, now.Add(-24*time.Hour), nil),
	}

	ordered := OrderLots(it, lots)
	require.Len(t, ordered, 2)
	assert.Equal(t, "older", ordered[0].LotNo)
	assert.Equal(t, "newer", ordered[1].LotNo)
}

func TestOrderLots_LotNoTiebreak(t *testing.T) {
	// Identical timestamps fall back to lot number so the order never
	// depends on map iteration or query plan.
	now := time.Now().UTC()
	it := &item.Item{ID: id.New(), IsPerishable: false}

	lots := []*StockLot{
		testLot(it.ID, "L-2", 10, now, nil),
		testLot(it.ID, "L-1", 10, now, nil),
		testLot(it.ID, "L-3", 10, now, nil),
	}

	ordered := OrderLots(it, lots)
	require.Len(t, ordered, 3)
	assert.Equal(t, "L-1", ordered[0].LotNo)
	assert.Equal(t, "L-2", ordered[1].LotNo)
	assert.Equal(t, "L-3", ordered[2].LotNo)
}

func TestOrderLots_SkipsExhausted(t *testing.T) {
	now := time.Now().UTC()
	it := &item.Item{ID: id.New()}

	lots := []*StockLot{
		testLot(it.ID, "empty", 0, now.Add(-24*time.Hour), nil),
		testLot(it.ID, "live", 10, now, nil),
	}

	ordered := OrderLots(it, lots)
	require.Len(t, ordered, 1)
	assert.Equal(t, "live", ordered[0].LotNo)
}

func TestPlanConsumption_ExactTotal(t *testing.T) {
	now := time.Now().UTC()
	it := &item.Item{ID: id.New(), IsPerishable: true}

	lots := []*StockLot{
		testLot(it.ID, "A", 50, now, days(now, 30)),
		testLot(it.ID, "B", 50, now, days(now, 10)),
		testLot(it.ID, "C", 50, now, days(now, 20)),
	}

	plan, err := PlanConsumption(it, lots, types.Qty(120))
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, "B", plan[0].Lot.LotNo)
	assert.True(t, plan[0].Qty.Equal(types.Qty(50)))
	assert.Equal(t, "C", plan[1].Lot.LotNo)
	assert.True(t, plan[1].Qty.Equal(types.Qty(50)))
	assert.Equal(t, "A", plan[2].Lot.LotNo)
	assert.True(t, plan[2].Qty.Equal(types.Qty(20)))

	total := types.Zero()
	for _, a := range plan {
		total = total.Add(a.Qty)
	}
	assert.True(t, total.Equal(types.Qty(120)))

	// Planning never mutates the lots.
	for _, l := range lots {
		assert.True(t, l.Qty.Equal(types.Qty(50)))
	}
}

func TestPlanConsumption_Insufficient(t *testing.T) {
	now := time.Now().UTC()
	it := &item.Item{ID: id.New()}

	lots := []*StockLot{
		testLot(it.ID, "A", 30, now, nil),
	}

	_, err := PlanConsumption(it, lots, types.Qty(100))
	require.Error(t, err)
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "100", appErr.Details["requested"])
	assert.Equal(t, "30", appErr.Details["available"])
	assert.Equal(t, "70", appErr.Details["shortfall"])
}

func TestPlanConsumption_NonPositiveNeed(t *testing.T) {
	it := &item.Item{ID: id.New()}

	_, err := PlanConsumption(it, nil, types.Zero())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidQuantity, appErr.Code)
}
