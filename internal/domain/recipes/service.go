package recipes

import (
	"context"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/tx"
	"bakehouse/internal/domain/catalogs/item"
)

// Service provides business logic for recipes.
type Service struct {
	repo      Repository
	items     item.Repository
	txManager tx.Manager
}

// NewService creates a new Recipe service.
func NewService(repo Repository, items item.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		items:     items,
		txManager: txManager,
	}
}

// Create validates the recipe and persists the header with its lines.
func (s *Service) Create(ctx context.Context, r *Recipe) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkProduct(ctx, r); err != nil {
			return err
		}
		for i := range r.Items {
			if id.IsNil(r.Items[i].ID) {
				r.Items[i].ID = id.New()
			}
			r.Items[i].RecipeID = r.ID
		}
		return s.repo.Create(ctx, r)
	})
}

// Update validates and persists recipe changes, replacing the lines.
func (s *Service) Update(ctx context.Context, r *Recipe) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}
	r.UpdatedAt = time.Now().UTC()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkProduct(ctx, r); err != nil {
			return err
		}
		for i := range r.Items {
			if id.IsNil(r.Items[i].ID) {
				r.Items[i].ID = id.New()
			}
			r.Items[i].RecipeID = r.ID
		}
		return s.repo.Update(ctx, r)
	})
}

// Get retrieves a recipe with its ingredient lines.
func (s *Service) Get(ctx context.Context, recipeID id.ID) (*Recipe, error) {
	return s.repo.GetByID(ctx, recipeID)
}

// List retrieves recipes.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Recipe, error) {
	return s.repo.List(ctx, activeOnly)
}

// checkProduct verifies the product item exists and is a finished good.
func (s *Service) checkProduct(ctx context.Context, r *Recipe) error {
	product, err := s.items.GetByID(ctx, r.ProductItemID)
	if err != nil {
		return err
	}
	if product.Category != item.CategoryFinishedGood {
		return apperror.NewRecipeConfiguration("recipe product must be a finished good").
			WithDetail("itemId", product.ID.String()).
			WithDetail("category", string(product.Category))
	}
	return nil
}
