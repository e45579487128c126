package recipes

import (
	"context"

	"bakehouse/internal/core/id"
)

// Repository defines the interface for Recipe persistence.
// GetByID loads the recipe header together with its ingredient lines.
type Repository interface {
	Create(ctx context.Context, r *Recipe) error
	Update(ctx context.Context, r *Recipe) error
	GetByID(ctx context.Context, recipeID id.ID) (*Recipe, error)
	GetByProductItem(ctx context.Context, itemID id.ID) (*Recipe, error)
	List(ctx context.Context, activeOnly bool) ([]*Recipe, error)
}
