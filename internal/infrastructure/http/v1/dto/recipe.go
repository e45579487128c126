package dto

import (
	"github.com/shopspring/decimal"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/item"
	"bakehouse/internal/domain/recipes"
)

// RecipeItemRequest is one ingredient line.
type RecipeItemRequest struct {
	ItemID     string          `json:"itemId" binding:"required,uuid"`
	Qty        decimal.Decimal `json:"qty" binding:"required"`
	Unit       string          `json:"unit" binding:"required"`
	LossFactor decimal.Decimal `json:"lossFactor"`
	Notes      *string         `json:"notes,omitempty"`
}

// RecipeRequest creates or updates a recipe with its ingredient lines.
type RecipeRequest struct {
	Name          string              `json:"name" binding:"required"`
	ProductItemID string              `json:"productItemId" binding:"required,uuid"`
	YieldQty      decimal.Decimal     `json:"yieldQty" binding:"required"`
	YieldUnit     string              `json:"yieldUnit" binding:"required"`
	Description   *string             `json:"description,omitempty"`
	Items         []RecipeItemRequest `json:"items" binding:"required,dive"`
}

// ToDomain builds a new Recipe from the request.
func (r RecipeRequest) ToDomain() (*recipes.Recipe, error) {
	productID, err := id.Parse(r.ProductItemID)
	if err != nil {
		return nil, apperror.NewValidation("invalid productItemId format")
	}

	rec := recipes.New(r.Name, productID, r.YieldQty, item.Unit(r.YieldUnit))
	rec.Description = r.Description

	lines, err := r.lines()
	if err != nil {
		return nil, err
	}
	rec.Items = lines

	return rec, nil
}

// Apply overwrites mutable fields on an existing recipe.
func (r RecipeRequest) Apply(rec *recipes.Recipe) error {
	productID, err := id.Parse(r.ProductItemID)
	if err != nil {
		return apperror.NewValidation("invalid productItemId format")
	}

	rec.Name = r.Name
	rec.ProductItemID = productID
	rec.YieldQty = r.YieldQty
	rec.YieldUnit = item.Unit(r.YieldUnit)
	rec.Description = r.Description

	lines, err := r.lines()
	if err != nil {
		return err
	}
	rec.Items = lines

	return nil
}

func (r RecipeRequest) lines() ([]recipes.RecipeItem, error) {
	lines := make([]recipes.RecipeItem, 0, len(r.Items))
	for _, li := range r.Items {
		itemID, err := id.Parse(li.ItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid ingredient itemId format").
				WithDetail("item_id", li.ItemID)
		}
		lines = append(lines, recipes.RecipeItem{
			ItemID:     itemID,
			Qty:        li.Qty,
			Unit:       item.Unit(li.Unit),
			LossFactor: li.LossFactor,
			Notes:      li.Notes,
		})
	}
	return lines, nil
}

// RecipeListResponse wraps recipe headers.
type RecipeListResponse struct {
	Items []*recipes.Recipe `json:"items"`
}
