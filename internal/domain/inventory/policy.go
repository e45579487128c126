package inventory

import (
	"sort"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"
)

// Allocation is one planned decrement against a lot.
type Allocation struct {
	Lot *StockLot
	Qty types.Quantity
}

// OrderLots returns the live lots of an item in consumption order.
//
// Perishable items are consumed first-expired-first-out: expiry ascending
// with nil expiry last, then received_at ascending, then lot number. Other
// items are first-in-first-out: received_at ascending, then lot number.
// The lot number tiebreak keeps the order deterministic when timestamps
// collide. The input slice is not mutated.
func OrderLots(it *item.Item, lots []*StockLot) []*StockLot {
	ordered := make([]*StockLot, 0, len(lots))
	for _, l := range lots {
		if !l.IsExhausted() {
			ordered = append(ordered, l)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if it.IsPerishable {
			switch {
			case a.ExpiresAt == nil && b.ExpiresAt != nil:
				return false
			case a.ExpiresAt != nil && b.ExpiresAt == nil:
				return true
			case a.ExpiresAt != nil && b.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
				return a.ExpiresAt.Before(*b.ExpiresAt)
			}
		}
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return a.LotNo < b.LotNo
	})

	return ordered
}

// PlanConsumption plans a greedy allocation of need over the item's lots in
// policy order. The returned plan's total always equals need exactly.
// Insufficient stock returns an error carrying requested, available and the
// shortfall, and no plan. Neither the lots nor their quantities are mutated;
// applying the plan is the caller's job.
func PlanConsumption(it *item.Item, lots []*StockLot, need types.Quantity) ([]Allocation, error) {
	if !need.IsPositive() {
		return nil, apperror.NewInvalidQuantity(need)
	}

	ordered := OrderLots(it, lots)

	available := types.Zero()
	for _, l := range ordered {
		available = available.Add(l.Qty)
	}
	if available.LessThan(need) {
		return nil, apperror.NewInsufficientStock(it.ID.String(), need, available)
	}

	plan := make([]Allocation, 0, len(ordered))
	remaining := need
	for _, l := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := types.Min(l.Qty, remaining)
		plan = append(plan, Allocation{Lot: l, Qty: take})
		remaining = remaining.Sub(take)
	}

	return plan, nil
}
