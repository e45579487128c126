// Package reports provides stock-level reporting: low stock, expiry
// tracking, summary counts, expired write-offs and ledger export.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/alerts"
	"bakehouse/internal/domain/catalogs/item"
	"bakehouse/internal/domain/inventory"
	"bakehouse/pkg/logger"
)

// ExpiryWindowDays is the default horizon for "expiring soon".
const ExpiryWindowDays = 7

// LowStockItem is an item at or below its reorder level.
type LowStockItem struct {
	Item   *item.Item     `json:"item"`
	Stock  types.Quantity `json:"stock"`
	Alerts []alerts.Alert `json:"alerts,omitempty"`
}

// ExpiringLot is a live lot close to (or past) expiry.
type ExpiringLot struct {
	Lot      *inventory.StockLot `json:"lot"`
	ItemName string              `json:"itemName"`
	DaysLeft int                 `json:"daysLeft"`
}

// StockSummary is the dashboard headline.
type StockSummary struct {
	TotalItems   int `json:"totalItems"`
	LowStock     int `json:"lowStock"`
	ExpiringLots int `json:"expiringLots"`
	ExpiredLots  int `json:"expiredLots"`
}

// WriteOffResult reports one expired write-off pass.
type WriteOffResult struct {
	LotsWrittenOff int            `json:"lotsWrittenOff"`
	TotalQty       types.Quantity `json:"totalQty"`
	Failed         int            `json:"failed"`
}

// Service composes reports from the catalogs and the stock ledger.
type Service struct {
	items  item.Repository
	inv    inventory.Repository
	stock  *inventory.Service
	engine *alerts.Engine
}

// NewService creates the reports service.
func NewService(items item.Repository, inv inventory.Repository, stock *inventory.Service, engine *alerts.Engine) *Service {
	return &Service{
		items:  items,
		inv:    inv,
		stock:  stock,
		engine: engine,
	}
}

// LowStockItems returns active items whose live stock is at or below their
// reorder level, with any triggered alert rules attached.
func (s *Service) LowStockItems(ctx context.Context) ([]LowStockItem, error) {
	items, err := s.items.List(ctx, item.Filter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	totals, err := s.stockByItem(ctx)
	if err != nil {
		return nil, err
	}

	var out []LowStockItem
	for _, it := range items {
		stock := totals[it.ID]
		if stock.GreaterThan(it.ReorderLevel) {
			continue
		}

		entry := LowStockItem{Item: it, Stock: stock}
		if s.engine != nil {
			entry.Alerts, err = s.engine.Evaluate(alerts.Input{
				Stock:        stock.InexactFloat64(),
				ReorderLevel: it.ReorderLevel.InexactFloat64(),
				IsPerishable: it.IsPerishable,
			})
			if err != nil {
				return nil, err
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// ExpiringLots returns live lots expiring within the window.
func (s *Service) ExpiringLots(ctx context.Context, days int) ([]ExpiringLot, error) {
	if days <= 0 {
		days = ExpiryWindowDays
	}
	now := time.Now().UTC()

	lots, err := s.inv.ExpiringLots(ctx, now, days)
	if err != nil {
		return nil, err
	}
	return s.decorateLots(ctx, lots, now)
}

// ExpiredLots returns live lots already past expiry.
func (s *Service) ExpiredLots(ctx context.Context) ([]ExpiringLot, error) {
	now := time.Now().UTC()
	lots, err := s.inv.ExpiredLots(ctx, now)
	if err != nil {
		return nil, err
	}
	return s.decorateLots(ctx, lots, now)
}

func (s *Service) decorateLots(ctx context.Context, lots []*inventory.StockLot, now time.Time) ([]ExpiringLot, error) {
	out := make([]ExpiringLot, 0, len(lots))
	for _, lot := range lots {
		it, err := s.items.GetByID(ctx, lot.ItemID)
		if err != nil {
			return nil, err
		}
		daysLeft, _ := lot.DaysToExpiry(now)
		out = append(out, ExpiringLot{Lot: lot, ItemName: it.Name, DaysLeft: daysLeft})
	}
	return out, nil
}

// Summary returns the headline counts.
func (s *Service) Summary(ctx context.Context) (*StockSummary, error) {
	items, err := s.items.List(ctx, item.Filter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	low, err := s.LowStockItems(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expiring, err := s.inv.ExpiringLots(ctx, now, ExpiryWindowDays)
	if err != nil {
		return nil, err
	}
	expired, err := s.inv.ExpiredLots(ctx, now)
	if err != nil {
		return nil, err
	}

	return &StockSummary{
		TotalItems:   len(items),
		LowStock:     len(low),
		ExpiringLots: len(expiring),
		ExpiredLots:  len(expired),
	}, nil
}

// WriteOffExpired spoilage-consumes every expired lot. Each lot is its own
// transaction: one bad lot does not block the rest of the pass.
func (s *Service) WriteOffExpired(ctx context.Context, actor string) (*WriteOffResult, error) {
	lots, err := s.inv.ExpiredLots(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	result := &WriteOffResult{TotalQty: types.Zero()}
	for _, lot := range lots {
		lotNo := lot.LotNo
		_, err := s.stock.Consume(ctx, inventory.ConsumeRequest{
			ItemID: lot.ItemID,
			Qty:    lot.Qty,
			Reason: "Expired stock write-off",
			Actor:  actor,
			LotNo:  &lotNo,
			Type:   inventory.MovementSpoilage,
		})
		if err != nil {
			logger.Warn(ctx, "expired write-off failed",
				"lot_no", lot.LotNo,
				"item_id", lot.ItemID,
				"error", err,
			)
			result.Failed++
			continue
		}
		result.LotsWrittenOff++
		result.TotalQty = result.TotalQty.Add(lot.Qty)
	}

	logger.Info(ctx, "expired write-off pass finished",
		"written_off", result.LotsWrittenOff,
		"failed", result.Failed,
	)
	return result, nil
}

// ExportMovements streams movement history as zstd-compressed JSON lines.
func (s *Service) ExportMovements(ctx context.Context, w io.Writer, filter inventory.MovementFilter) error {
	movements, err := s.inv.ListMovements(ctx, filter)
	if err != nil {
		return err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}

	enc := json.NewEncoder(zw)
	for _, m := range movements {
		if err := enc.Encode(m); err != nil {
			zw.Close()
			return fmt.Errorf("encode movement %s: %w", m.ID, err)
		}
	}
	return zw.Close()
}

func (s *Service) stockByItem(ctx context.Context) (map[id.ID]types.Quantity, error) {
	totals, err := s.inv.TotalStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[id.ID]types.Quantity, len(totals))
	for _, ts := range totals {
		out[ts.ItemID] = ts.Total
	}
	return out, nil
}
