package dto

import (
	"github.com/shopspring/decimal"

	"bakehouse/internal/domain/catalogs/item"
)

// ItemRequest creates or updates a catalog item. The code is generated
// server-side and never accepted from the client.
type ItemRequest struct {
	Name          string          `json:"name" binding:"required"`
	Category      string          `json:"category" binding:"required,oneof=ingredient finished_good packaging equipment"`
	Unit          string          `json:"unit" binding:"required"`
	Description   *string         `json:"description,omitempty"`
	ReorderLevel  decimal.Decimal `json:"reorderLevel"`
	MinOrderQty   decimal.Decimal `json:"minOrderQty"`
	IsPerishable  bool            `json:"isPerishable"`
	ShelfLifeDays *int            `json:"shelfLifeDays,omitempty"`
}

// ToDomain builds a new Item from the request.
func (r ItemRequest) ToDomain() *item.Item {
	it := item.New(r.Name, item.Category(r.Category), item.Unit(r.Unit))
	r.apply(it)
	return it
}

// Apply overwrites mutable fields on an existing item.
func (r ItemRequest) Apply(it *item.Item) {
	it.Name = r.Name
	it.Category = item.Category(r.Category)
	it.Unit = item.Unit(r.Unit)
	r.apply(it)
}

func (r ItemRequest) apply(it *item.Item) {
	it.Description = r.Description
	it.ReorderLevel = r.ReorderLevel
	it.MinOrderQty = r.MinOrderQty
	it.IsPerishable = r.IsPerishable
	it.ShelfLifeDays = r.ShelfLifeDays
}

// ItemListResponse wraps a page of catalog items.
type ItemListResponse struct {
	Items []*item.Item `json:"items"`
}
