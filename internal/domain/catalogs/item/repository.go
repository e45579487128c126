package item

import (
	"context"

	"bakehouse/internal/core/id"
)

// Filter narrows item listings.
type Filter struct {
	Category   *Category
	ActiveOnly bool
	// Search matches name or code, case-insensitive substring.
	Search string
	Limit  int
	Offset int
}

// Repository defines the interface for Item persistence.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	GetByCode(ctx context.Context, code string) (*Item, error)
	List(ctx context.Context, filter Filter) ([]*Item, error)

	// HasLots reports whether any stock lot references the item.
	HasLots(ctx context.Context, itemID id.ID) (bool, error)
}
