package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/inventory"
	"bakehouse/internal/domain/recipes"
	"bakehouse/internal/infrastructure/http/v1/dto"
)

// RecipeHandler handles HTTP requests for recipes, including the costing
// and pre-production validation queries served by the stock engines.
type RecipeHandler struct {
	*BaseHandler
	service *recipes.Service
	stock   *inventory.Service
}

// NewRecipeHandler creates a new recipe handler.
func NewRecipeHandler(base *BaseHandler, service *recipes.Service, stock *inventory.Service) *RecipeHandler {
	return &RecipeHandler{
		BaseHandler: base,
		service:     service,
		stock:       stock,
	}
}

// Create handles POST /recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	var req dto.RecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), rec); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, rec.ID.String())
}

// Update handles PUT /recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) {
	recipeID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.RecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.service.Get(c.Request.Context(), recipeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.Apply(rec); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), rec); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rec)
}

// Get handles GET /recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	recipeID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	rec, err := h.service.Get(c.Request.Context(), recipeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rec)
}

// List handles GET /recipes
func (h *RecipeHandler) List(c *gin.Context) {
	activeOnly := c.Query("includeInactive") != "true"

	recs, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.RecipeListResponse{Items: recs})
}

// Cost handles GET /recipes/:id/cost
// Returns the ingredient cost of one batch at current weighted averages.
func (h *RecipeHandler) Cost(c *gin.Context) {
	recipeID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	cost, err := h.stock.RecipeCost(c.Request.Context(), recipeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.RecipeCostResponse{RecipeID: recipeID.String(), Cost: cost})
}

// Validate handles GET /recipes/:id/validate?qty=12
// Dry-run production check: reports shortages without touching stock.
func (h *RecipeHandler) Validate(c *gin.Context) {
	recipeID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	qtyStr := c.Query("qty")
	if qtyStr == "" {
		h.Error(c, apperror.NewValidation("qty query parameter is required"))
		return
	}

	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid qty format"))
		return
	}

	validation, err := h.stock.ValidateProduction(c.Request.Context(), recipeID, qty)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, validation)
}
