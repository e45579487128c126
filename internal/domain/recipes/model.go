// Package recipes provides recipe definitions and ingredient requirement math
// for the production engine.
package recipes

import (
	"context"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"

	"github.com/shopspring/decimal"
)

// Recipe defines how a finished good is produced from ingredients.
type Recipe struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// ProductItemID references the finished good this recipe yields.
	ProductItemID id.ID `db:"product_item_id" json:"productItemId"`

	// YieldQty is the output quantity of one production run at scale 1.
	YieldQty  types.Quantity `db:"yield_qty" json:"yieldQty"`
	YieldUnit item.Unit      `db:"yield_unit" json:"yieldUnit"`

	Description *string `db:"description" json:"description,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Items are loaded alongside the recipe header.
	Items []RecipeItem `db:"-" json:"items"`
}

// RecipeItem is one ingredient line of a recipe.
type RecipeItem struct {
	ID       id.ID `db:"id" json:"id"`
	RecipeID id.ID `db:"recipe_id" json:"recipeId"`
	ItemID   id.ID `db:"item_id" json:"itemId"`

	Qty  types.Quantity `db:"qty" json:"qty"`
	Unit item.Unit      `db:"unit" json:"unit"`

	// LossFactor is the expected waste percentage in [0, 100].
	LossFactor decimal.Decimal `db:"loss_factor" json:"lossFactor"`

	Notes *string `db:"notes" json:"notes,omitempty"`
}

// AdjustedQty returns the ingredient quantity inflated by the loss factor:
// qty * (1 + loss_factor/100).
func (ri *RecipeItem) AdjustedQty() types.Quantity {
	return types.Percent(ri.Qty, ri.LossFactor)
}

// Requirement returns the loss-adjusted quantity needed to produce
// productionQty units of output from a recipe yielding yieldQty per run.
// Full precision is kept; rounding happens when a movement is written.
func (ri *RecipeItem) Requirement(productionQty, yieldQty types.Quantity) types.Quantity {
	scaled := ri.Qty.Mul(productionQty).Div(yieldQty)
	return types.Percent(scaled, ri.LossFactor)
}

// Requirement pairs an ingredient with its computed need.
type Requirement struct {
	ItemID id.ID
	Qty    types.Quantity
	Unit   item.Unit
}

// Requirements computes loss-adjusted ingredient needs for a production run.
func (r *Recipe) Requirements(productionQty types.Quantity) ([]Requirement, error) {
	if !r.YieldQty.IsPositive() {
		return nil, apperror.NewRecipeConfiguration("recipe yield must be positive").
			WithDetail("recipeId", r.ID.String()).
			WithDetail("yieldQty", r.YieldQty.String())
	}

	reqs := make([]Requirement, 0, len(r.Items))
	for i := range r.Items {
		ri := &r.Items[i]
		reqs = append(reqs, Requirement{
			ItemID: ri.ItemID,
			Qty:    ri.Requirement(productionQty, r.YieldQty),
			Unit:   ri.Unit,
		})
	}
	return reqs, nil
}

// New creates a Recipe with required fields.
func New(name string, productItemID id.ID, yieldQty types.Quantity, yieldUnit item.Unit) *Recipe {
	now := time.Now().UTC()
	return &Recipe{
		ID:            id.New(),
		Name:          name,
		ProductItemID: productItemID,
		YieldQty:      yieldQty,
		YieldUnit:     yieldUnit,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks recipe configuration invariants.
func (r *Recipe) Validate(ctx context.Context) error {
	if r.Name == "" {
		return apperror.NewValidation("recipe name is required").
			WithDetail("field", "name")
	}
	if id.IsNil(r.ProductItemID) {
		return apperror.NewValidation("recipe product item is required").
			WithDetail("field", "productItemId")
	}
	if !r.YieldQty.IsPositive() {
		return apperror.NewRecipeConfiguration("recipe yield must be positive").
			WithDetail("recipeId", r.ID.String()).
			WithDetail("yieldQty", r.YieldQty.String())
	}

	hundred := decimal.NewFromInt(100)
	for i := range r.Items {
		ri := &r.Items[i]
		if id.IsNil(ri.ItemID) {
			return apperror.NewValidation("recipe item requires an ingredient").
				WithDetail("field", "items")
		}
		if !ri.Qty.IsPositive() {
			return apperror.NewRecipeConfiguration("recipe item quantity must be positive").
				WithDetail("itemId", ri.ItemID.String())
		}
		if ri.LossFactor.IsNegative() || ri.LossFactor.GreaterThan(hundred) {
			return apperror.NewRecipeConfiguration("loss factor must be between 0 and 100").
				WithDetail("itemId", ri.ItemID.String()).
				WithDetail("lossFactor", ri.LossFactor.String())
		}
	}

	return nil
}
