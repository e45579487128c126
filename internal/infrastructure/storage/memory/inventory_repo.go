package memory

import (
	"context"
	"sort"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/inventory"
)

// InventoryRepository is the in-memory inventory.Repository. Row locking is
// a no-op here: the store mutex held for the whole transaction already
// serializes writers, which is the property the engines rely on.
type InventoryRepository struct {
	store *Store
}

// NewInventoryRepository creates an in-memory inventory repository.
func NewInventoryRepository(store *Store) *InventoryRepository {
	return &InventoryRepository{store: store}
}

func (r *InventoryRepository) CreateLot(ctx context.Context, lot *inventory.StockLot) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.lots[lot.ID]; ok {
		return apperror.NewDuplicate("stock lot", "id", lot.ID.String())
	}
	r.store.lots[lot.ID] = *lot
	return nil
}

func (r *InventoryRepository) UpdateLotQty(ctx context.Context, lotID id.ID, qty types.Quantity) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	lot, ok := r.store.lots[lotID]
	if !ok {
		return apperror.NewNotFound("stock lot", lotID)
	}
	lot.Qty = qty
	lot.UpdatedAt = time.Now().UTC()
	r.store.lots[lotID] = lot
	return nil
}

func (r *InventoryRepository) GetLotByID(ctx context.Context, lotID id.ID) (*inventory.StockLot, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	lot, ok := r.store.lots[lotID]
	if !ok {
		return nil, apperror.NewNotFound("stock lot", lotID)
	}
	return &lot, nil
}

func (r *InventoryRepository) GetLotByNo(ctx context.Context, itemID id.ID, lotNo string) (*inventory.StockLot, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, lot := range r.store.lots {
		if lot.ItemID == itemID && lot.LotNo == lotNo {
			found := lot
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("stock lot", lotNo)
}

func (r *InventoryRepository) GetLotByNoForUpdate(ctx context.Context, itemID id.ID, lotNo string) (*inventory.StockLot, error) {
	return r.GetLotByNo(ctx, itemID, lotNo)
}

func (r *InventoryRepository) GetLiveLots(ctx context.Context, itemID id.ID) ([]*inventory.StockLot, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	var out []*inventory.StockLot
	for _, lot := range r.store.lots {
		if lot.ItemID == itemID && lot.Qty.IsPositive() {
			found := lot
			out = append(out, &found)
		}
	}
	sortByID(out, func(l *inventory.StockLot) id.ID { return l.ID })
	return out, nil
}

func (r *InventoryRepository) GetLiveLotsForUpdate(ctx context.Context, itemID id.ID) ([]*inventory.StockLot, error) {
	return r.GetLiveLots(ctx, itemID)
}

func (r *InventoryRepository) ExpiredLots(ctx context.Context, asOf time.Time) ([]*inventory.StockLot, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	var out []*inventory.StockLot
	for _, lot := range r.store.lots {
		if lot.Qty.IsPositive() && lot.IsExpired(asOf) {
			found := lot
			out = append(out, &found)
		}
	}
	sortByID(out, func(l *inventory.StockLot) id.ID { return l.ID })
	return out, nil
}

func (r *InventoryRepository) ExpiringLots(ctx context.Context, asOf time.Time, days int) ([]*inventory.StockLot, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	var out []*inventory.StockLot
	for _, lot := range r.store.lots {
		if lot.Qty.IsPositive() && lot.IsExpiringWithin(asOf, days) {
			found := lot
			out = append(out, &found)
		}
	}
	sortByID(out, func(l *inventory.StockLot) id.ID { return l.ID })
	return out, nil
}

func (r *InventoryRepository) TotalStock(ctx context.Context) ([]inventory.ItemStock, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	totals := make(map[id.ID]types.Quantity)
	for _, lot := range r.store.lots {
		if lot.Qty.IsPositive() {
			totals[lot.ItemID] = totals[lot.ItemID].Add(lot.Qty)
		}
	}

	out := make([]inventory.ItemStock, 0, len(totals))
	for itemID, total := range totals {
		out = append(out, inventory.ItemStock{ItemID: itemID, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ItemID.String() < out[j].ItemID.String()
	})
	return out, nil
}

func (r *InventoryRepository) CreateMovements(ctx context.Context, movements []*inventory.StockMovement) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, m := range movements {
		r.store.movements = append(r.store.movements, *m)
	}
	return nil
}

func (r *InventoryRepository) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]*inventory.StockMovement, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	var out []*inventory.StockMovement
	for i := range r.store.movements {
		m := r.store.movements[i]
		if filter.ItemID != nil && m.ItemID != *filter.ItemID {
			continue
		}
		if filter.LotID != nil && (m.LotID == nil || *m.LotID != *filter.LotID) {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, &m)
	}
	return paginate(out, filter.Offset, filter.Limit), nil
}

func (r *InventoryRepository) SumSignedMovements(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	total := types.Zero()
	for i := range r.store.movements {
		m := r.store.movements[i]
		if m.ItemID == itemID {
			total = total.Add(m.SignedQty())
		}
	}
	return total, nil
}
