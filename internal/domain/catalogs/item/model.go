// Package item provides the Item catalog: ingredients, finished goods,
// packaging and equipment tracked by the stock ledger.
package item

import (
	"context"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
)

// Category defines the item category.
type Category string

const (
	CategoryIngredient   Category = "ingredient"
	CategoryFinishedGood Category = "finished_good"
	CategoryPackaging    Category = "packaging"
	CategoryEquipment    Category = "equipment"
)

// Unit defines the unit of measure.
type Unit string

const (
	UnitPcs   Unit = "pcs"
	UnitKg    Unit = "kg"
	UnitG     Unit = "g"
	UnitL     Unit = "L"
	UnitML    Unit = "mL"
	UnitPack  Unit = "pack"
	UnitBox   Unit = "box"
	UnitDozen Unit = "dozen"
)

// Item represents a stockable catalog entry.
type Item struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	Category Category `db:"category" json:"category"`
	Unit     Unit     `db:"unit" json:"unit"`

	Description *string `db:"description" json:"description,omitempty"`

	// ReorderLevel is the threshold below which the item counts as low stock.
	ReorderLevel types.Quantity `db:"reorder_level" json:"reorderLevel"`

	// MinOrderQty is the minimum purchasing quantity.
	MinOrderQty types.Quantity `db:"min_order_qty" json:"minOrderQty"`

	// IsPerishable switches lot selection to expiry-first ordering.
	IsPerishable bool `db:"is_perishable" json:"isPerishable"`

	// ShelfLifeDays derives a default expiry on receiving. Set iff perishable.
	ShelfLifeDays *int `db:"shelf_life_days" json:"shelfLifeDays,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an Item with required fields.
func New(name string, category Category, unit Unit) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:           id.New(),
		Name:         name,
		Category:     category,
		Unit:         unit,
		ReorderLevel: types.Zero(),
		MinOrderQty:  types.Zero(),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks catalog-level invariants.
func (i *Item) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("item name is required").
			WithDetail("field", "name")
	}

	if !isValidCategory(i.Category) {
		return apperror.NewValidation("invalid item category").
			WithDetail("field", "category").
			WithDetail("value", string(i.Category))
	}

	if !isValidUnit(i.Unit) {
		return apperror.NewValidation("invalid unit of measure").
			WithDetail("field", "unit").
			WithDetail("value", string(i.Unit))
	}

	if i.ReorderLevel.IsNegative() {
		return apperror.NewValidation("reorder level cannot be negative").
			WithDetail("field", "reorderLevel")
	}

	if i.MinOrderQty.IsNegative() {
		return apperror.NewValidation("minimum order quantity cannot be negative").
			WithDetail("field", "minOrderQty")
	}

	if i.IsPerishable {
		if i.ShelfLifeDays == nil || *i.ShelfLifeDays <= 0 {
			return apperror.NewValidation("perishable items require a positive shelf life").
				WithDetail("field", "shelfLifeDays")
		}
	} else if i.ShelfLifeDays != nil {
		return apperror.NewValidation("shelf life is only valid for perishable items").
			WithDetail("field", "shelfLifeDays")
	}

	return nil
}

// DefaultExpiry returns the expiry derived from shelf life, or nil for
// non-perishable items.
func (i *Item) DefaultExpiry(receivedAt time.Time) *time.Time {
	if !i.IsPerishable || i.ShelfLifeDays == nil {
		return nil
	}
	exp := receivedAt.AddDate(0, 0, *i.ShelfLifeDays)
	return &exp
}

func isValidCategory(c Category) bool {
	switch c {
	case CategoryIngredient, CategoryFinishedGood, CategoryPackaging, CategoryEquipment:
		return true
	}
	return false
}

func isValidUnit(u Unit) bool {
	switch u {
	case UnitPcs, UnitKg, UnitG, UnitL, UnitML, UnitPack, UnitBox, UnitDozen:
		return true
	}
	return false
}
