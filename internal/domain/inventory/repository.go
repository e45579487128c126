package inventory

import (
	"context"
	"time"

	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
)

// ItemStock is an aggregated stock level for one item.
type ItemStock struct {
	ItemID id.ID          `db:"item_id" json:"itemId"`
	Total  types.Quantity `db:"total" json:"total"`
}

// Repository persists lots and the movement ledger.
//
// The ForUpdate variants take row locks and must run inside a transaction;
// the engines rely on them so concurrent consumers cannot both decrement the
// same lot past zero. Movements are append-only: there is no update or
// delete.
type Repository interface {
	CreateLot(ctx context.Context, lot *StockLot) error
	UpdateLotQty(ctx context.Context, lotID id.ID, qty types.Quantity) error
	GetLotByID(ctx context.Context, lotID id.ID) (*StockLot, error)
	GetLotByNo(ctx context.Context, itemID id.ID, lotNo string) (*StockLot, error)
	GetLotByNoForUpdate(ctx context.Context, itemID id.ID, lotNo string) (*StockLot, error)

	// GetLiveLots returns lots with qty > 0, unordered.
	GetLiveLots(ctx context.Context, itemID id.ID) ([]*StockLot, error)
	GetLiveLotsForUpdate(ctx context.Context, itemID id.ID) ([]*StockLot, error)

	// ExpiredLots returns live lots already past expiry at asOf.
	ExpiredLots(ctx context.Context, asOf time.Time) ([]*StockLot, error)
	// ExpiringLots returns live lots expiring within days of asOf.
	ExpiringLots(ctx context.Context, asOf time.Time, days int) ([]*StockLot, error)

	// TotalStock sums live lot quantities per item, zero-stock items omitted.
	TotalStock(ctx context.Context) ([]ItemStock, error)

	CreateMovements(ctx context.Context, movements []*StockMovement) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]*StockMovement, error)

	// SumSignedMovements returns the signed ledger total for one item.
	// Equals the item's live lot total when conservation holds.
	SumSignedMovements(ctx context.Context, itemID id.ID) (types.Quantity, error)
}
