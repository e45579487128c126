package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/inventory"
)

// ReceiveRequest registers an incoming delivery as a new lot.
type ReceiveRequest struct {
	ItemID     string          `json:"itemId" binding:"required,uuid"`
	LotNo      string          `json:"lotNo" binding:"required"`
	Qty        decimal.Decimal `json:"qty" binding:"required"`
	SupplierID *string         `json:"supplierId,omitempty" binding:"omitempty,uuid"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty"`
	UnitCost   decimal.Decimal `json:"unitCost"`
	RefNo      *string         `json:"refNo,omitempty"`
	Reason     string          `json:"reason"`
	Notes      *string         `json:"notes,omitempty"`
}

// ToDomain converts the request, attaching the acting user.
func (r ReceiveRequest) ToDomain(actor string) (inventory.ReceiveRequest, error) {
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return inventory.ReceiveRequest{}, apperror.NewValidation("invalid itemId format")
	}

	req := inventory.ReceiveRequest{
		ItemID:    itemID,
		LotNo:     r.LotNo,
		Qty:       r.Qty,
		Actor:     actor,
		ExpiresAt: r.ExpiresAt,
		UnitCost:  r.UnitCost,
		RefNo:     r.RefNo,
		Reason:    r.Reason,
		Notes:     r.Notes,
	}

	if r.SupplierID != nil {
		supplierID, err := id.Parse(*r.SupplierID)
		if err != nil {
			return inventory.ReceiveRequest{}, apperror.NewValidation("invalid supplierId format")
		}
		req.SupplierID = &supplierID
	}

	return req, nil
}

// ConsumeRequest takes stock out in policy order, optionally pinned to a lot.
type ConsumeRequest struct {
	ItemID string          `json:"itemId" binding:"required,uuid"`
	Qty    decimal.Decimal `json:"qty" binding:"required"`
	Reason string          `json:"reason" binding:"required"`
	LotNo  *string         `json:"lotNo,omitempty"`
	RefNo  *string         `json:"refNo,omitempty"`
	Notes  *string         `json:"notes,omitempty"`
	// Type defaults to consume; transfer and spoilage reuse the same engine.
	Type string `json:"type,omitempty" binding:"omitempty,oneof=consume transfer spoilage"`
}

// ToDomain converts the request, attaching the acting user.
func (r ConsumeRequest) ToDomain(actor string) (inventory.ConsumeRequest, error) {
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return inventory.ConsumeRequest{}, apperror.NewValidation("invalid itemId format")
	}

	return inventory.ConsumeRequest{
		ItemID: itemID,
		Qty:    r.Qty,
		Reason: r.Reason,
		Actor:  actor,
		LotNo:  r.LotNo,
		RefNo:  r.RefNo,
		Notes:  r.Notes,
		Type:   inventory.MovementType(r.Type),
	}, nil
}

// ProduceRequest runs a recipe and registers the output lot.
type ProduceRequest struct {
	RecipeID      string           `json:"recipeId" binding:"required,uuid"`
	ProductionQty decimal.Decimal  `json:"productionQty" binding:"required"`
	LotNo         string           `json:"lotNo" binding:"required"`
	ExpiresAt     *time.Time       `json:"expiresAt,omitempty"`
	UnitCost      *decimal.Decimal `json:"unitCost,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// ToDomain converts the request, attaching the acting user.
func (r ProduceRequest) ToDomain(actor string) (inventory.ProduceRequest, error) {
	recipeID, err := id.Parse(r.RecipeID)
	if err != nil {
		return inventory.ProduceRequest{}, apperror.NewValidation("invalid recipeId format")
	}

	return inventory.ProduceRequest{
		RecipeID:      recipeID,
		ProductionQty: r.ProductionQty,
		LotNo:         r.LotNo,
		Actor:         actor,
		ExpiresAt:     r.ExpiresAt,
		UnitCost:      r.UnitCost,
		Notes:         r.Notes,
	}, nil
}

// AdjustRequest corrects stock up or down, optionally on a specific lot.
type AdjustRequest struct {
	ItemID string          `json:"itemId" binding:"required,uuid"`
	Qty    decimal.Decimal `json:"qty" binding:"required"`
	Reason string          `json:"reason" binding:"required"`
	LotNo  *string         `json:"lotNo,omitempty"`
	RefNo  *string         `json:"refNo,omitempty"`
	Notes  *string         `json:"notes,omitempty"`
}

// ToDomain converts the request, attaching the acting user.
func (r AdjustRequest) ToDomain(actor string) (inventory.AdjustRequest, error) {
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return inventory.AdjustRequest{}, apperror.NewValidation("invalid itemId format")
	}

	return inventory.AdjustRequest{
		ItemID: itemID,
		Qty:    r.Qty,
		Reason: r.Reason,
		Actor:  actor,
		LotNo:  r.LotNo,
		RefNo:  r.RefNo,
		Notes:  r.Notes,
	}, nil
}

// LotListResponse wraps available lots in planning order.
type LotListResponse struct {
	Items []*inventory.StockLot `json:"items"`
}

// MovementListResponse wraps a page of ledger entries.
type MovementListResponse struct {
	Items []*inventory.StockMovement `json:"items"`
}

// CostResponse carries a weighted-average unit cost.
type CostResponse struct {
	ItemID   string          `json:"itemId"`
	UnitCost decimal.Decimal `json:"unitCost"`
}

// RecipeCostResponse carries the ingredient cost of one recipe batch.
type RecipeCostResponse struct {
	RecipeID string          `json:"recipeId"`
	Cost     decimal.Decimal `json:"cost"`
}
