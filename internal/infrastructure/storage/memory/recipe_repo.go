package memory

import (
	"context"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/recipes"
)

// RecipeRepository is the in-memory recipes.Repository.
type RecipeRepository struct {
	store *Store
}

// NewRecipeRepository creates an in-memory recipe repository.
func NewRecipeRepository(store *Store) *RecipeRepository {
	return &RecipeRepository{store: store}
}

func clone(r recipes.Recipe) recipes.Recipe {
	r.Items = append([]recipes.RecipeItem(nil), r.Items...)
	return r
}

func (r *RecipeRepository) Create(ctx context.Context, rec *recipes.Recipe) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.recipes[rec.ID]; ok {
		return apperror.NewDuplicate("recipe", "id", rec.ID.String())
	}
	r.store.recipes[rec.ID] = clone(*rec)
	return nil
}

func (r *RecipeRepository) Update(ctx context.Context, rec *recipes.Recipe) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.recipes[rec.ID]; !ok {
		return apperror.NewNotFound("recipe", rec.ID)
	}
	r.store.recipes[rec.ID] = clone(*rec)
	return nil
}

func (r *RecipeRepository) GetByID(ctx context.Context, recipeID id.ID) (*recipes.Recipe, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	rec, ok := r.store.recipes[recipeID]
	if !ok {
		return nil, apperror.NewNotFound("recipe", recipeID)
	}
	found := clone(rec)
	return &found, nil
}

func (r *RecipeRepository) GetByProductItem(ctx context.Context, itemID id.ID) (*recipes.Recipe, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, rec := range r.store.recipes {
		if rec.ProductItemID == itemID {
			found := clone(rec)
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("recipe", itemID)
}

func (r *RecipeRepository) List(ctx context.Context, activeOnly bool) ([]*recipes.Recipe, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	var out []*recipes.Recipe
	for _, rec := range r.store.recipes {
		if activeOnly && !rec.IsActive {
			continue
		}
		found := clone(rec)
		out = append(out, &found)
	}
	sortByID(out, func(rec *recipes.Recipe) id.ID { return rec.ID })
	return out, nil
}
