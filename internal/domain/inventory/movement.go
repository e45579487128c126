package inventory

import (
	"time"

	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"
)

// MovementType classifies ledger entries.
type MovementType string

const (
	MovementReceive  MovementType = "receive"
	MovementConsume  MovementType = "consume"
	MovementProduce  MovementType = "produce"
	MovementAdjust   MovementType = "adjust"
	MovementTransfer MovementType = "transfer"
	MovementSpoilage MovementType = "spoilage"
)

// IsInbound reports whether the type adds stock. Adjust can go either way;
// its direction lives in the stored sign.
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementReceive, MovementProduce:
		return true
	}
	return false
}

// IsOutbound reports whether the type removes stock.
func (t MovementType) IsOutbound() bool {
	switch t {
	case MovementConsume, MovementTransfer, MovementSpoilage:
		return true
	}
	return false
}

func isValidMovementType(t MovementType) bool {
	switch t {
	case MovementReceive, MovementConsume, MovementProduce,
		MovementAdjust, MovementTransfer, MovementSpoilage:
		return true
	}
	return false
}

// StockMovement is one append-only ledger entry. Movements are never
// updated or deleted; corrections are new adjust movements.
//
// Qty stores the magnitude for every type except adjust, which stores the
// signed quantity. SignedQty resolves the effective direction.
type StockMovement struct {
	ID     id.ID  `db:"id" json:"id"`
	ItemID id.ID  `db:"item_id" json:"itemId"`
	LotID  *id.ID `db:"lot_id" json:"lotId,omitempty"`

	Type MovementType   `db:"type" json:"type"`
	Qty  types.Quantity `db:"qty" json:"qty"`
	Unit item.Unit      `db:"unit" json:"unit"`

	RefNo  *string `db:"ref_no" json:"refNo,omitempty"`
	Reason string  `db:"reason" json:"reason"`
	Notes  *string `db:"notes" json:"notes,omitempty"`

	Actor     string    `db:"actor" json:"actor"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SignedQty returns the quantity with its ledger sign: positive for inbound,
// negative for outbound, as stored for adjust. Summing SignedQty over an
// item's movements equals the item's live lot total (conservation).
func (m *StockMovement) SignedQty() types.Quantity {
	switch {
	case m.Type == MovementAdjust:
		return m.Qty
	case m.Type.IsOutbound():
		return m.Qty.Neg()
	default:
		return m.Qty
	}
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	ItemID *id.ID
	LotID  *id.ID
	Type   *MovementType
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
