// Package inventory provides the lot-based stock ledger: lot selection
// policy, consumption, receiving, production, adjustment and costing.
package inventory

import (
	"time"

	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"
)

// StockLot is a discrete batch of stock for one item. Quantity only changes
// through the engines; it never goes negative. An exhausted lot (qty == 0)
// stays on record for history but is excluded from allocation.
type StockLot struct {
	ID     id.ID `db:"id" json:"id"`
	ItemID id.ID `db:"item_id" json:"itemId"`

	// LotNo is unique within the item.
	LotNo string `db:"lot_no" json:"lotNo"`

	Qty  types.Quantity `db:"qty" json:"qty"`
	Unit item.Unit      `db:"unit" json:"unit"`

	ReceivedAt time.Time  `db:"received_at" json:"receivedAt"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expiresAt,omitempty"`

	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	SupplierID *id.ID  `db:"supplier_id" json:"supplierId,omitempty"`
	Notes      *string `db:"notes" json:"notes,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsExhausted reports whether the lot has no stock left.
func (l *StockLot) IsExhausted() bool {
	return !l.Qty.IsPositive()
}

// IsExpired reports whether the lot is past its expiry at the given moment.
// Lots without expiry never expire.
func (l *StockLot) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// IsExpiringWithin reports whether the lot expires within the given number
// of days from now (and is not already expired).
func (l *StockLot) IsExpiringWithin(now time.Time, days int) bool {
	if l.ExpiresAt == nil || l.IsExpired(now) {
		return false
	}
	return !l.ExpiresAt.After(now.AddDate(0, 0, days))
}

// DaysToExpiry returns whole days until expiry, negative when already
// expired. Returns false when the lot has no expiry.
func (l *StockLot) DaysToExpiry(now time.Time) (int, bool) {
	if l.ExpiresAt == nil {
		return 0, false
	}
	return int(l.ExpiresAt.Sub(now).Hours() / 24), true
}
