package recipes

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"
)

func TestRecipeItem_AdjustedQty(t *testing.T) {
	tests := []struct {
		name string
		qty  string
		loss string
		want string
	}{
		{name: "ten percent loss", qty: "5", loss: "10", want: "5.5"},
		{name: "zero loss", qty: "5", loss: "0", want: "5"},
		{name: "fractional loss", qty: "2", loss: "2.5", want: "2.05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ri := RecipeItem{
				Qty:        types.MustQty(tt.qty),
				LossFactor: types.MustQty(tt.loss),
			}
			assert.True(t, ri.AdjustedQty().Equal(types.MustQty(tt.want)),
				"got %s", ri.AdjustedQty())
		})
	}
}

func TestRecipeItem_Requirement_ScalesByYield(t *testing.T) {
	// 0.5 kg per loaf, yield 1, 10% loss, producing 20 loaves:
	// 0.5 * 20 / 1 * 1.10 = 11
	ri := RecipeItem{
		Qty:        types.MustQty("0.5"),
		LossFactor: types.MustQty("10"),
	}
	got := ri.Requirement(types.Qty(20), types.Qty(1))
	assert.True(t, got.Equal(types.MustQty("11")), "got %s", got)

	// Yield 12 per run, producing 6: half a run's worth.
	ri = RecipeItem{
		Qty:        types.MustQty("3"),
		LossFactor: decimal.Zero,
	}
	got = ri.Requirement(types.Qty(6), types.Qty(12))
	assert.True(t, got.Equal(types.MustQty("1.5")), "got %s", got)
}

func TestRecipe_Requirements_ZeroYield(t *testing.T) {
	r := New("broken", id.New(), types.Zero(), item.UnitPcs)
	r.Items = []RecipeItem{{ItemID: id.New(), Qty: types.Qty(1)}}

	_, err := r.Requirements(types.Qty(10))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRecipeConfiguration, appErr.Code)
}

func TestRecipe_Validate(t *testing.T) {
	ctx := context.Background()
	productID := id.New()

	valid := New("sourdough", productID, types.Qty(2), item.UnitPcs)
	valid.Items = []RecipeItem{{
		ItemID:     id.New(),
		Qty:        types.MustQty("0.5"),
		Unit:       item.UnitKg,
		LossFactor: types.MustQty("5"),
	}}
	require.NoError(t, valid.Validate(ctx))

	tests := []struct {
		name   string
		mutate func(r *Recipe)
		code   string
	}{
		{
			name:   "empty name",
			mutate: func(r *Recipe) { r.Name = "" },
			code:   apperror.CodeValidation,
		},
		{
			name:   "zero yield",
			mutate: func(r *Recipe) { r.YieldQty = types.Zero() },
			code:   apperror.CodeRecipeConfiguration,
		},
		{
			name:   "negative loss factor",
			mutate: func(r *Recipe) { r.Items[0].LossFactor = types.MustQty("-1") },
			code:   apperror.CodeRecipeConfiguration,
		},
		{
			name:   "loss factor above 100",
			mutate: func(r *Recipe) { r.Items[0].LossFactor = types.MustQty("101") },
			code:   apperror.CodeRecipeConfiguration,
		},
		{
			name:   "zero ingredient qty",
			mutate: func(r *Recipe) { r.Items[0].Qty = types.Zero() },
			code:   apperror.CodeRecipeConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("sourdough", productID, types.Qty(2), item.UnitPcs)
			r.Items = []RecipeItem{{
				ItemID:     id.New(),
				Qty:        types.MustQty("0.5"),
				Unit:       item.UnitKg,
				LossFactor: types.MustQty("5"),
			}}
			tt.mutate(r)

			err := r.Validate(ctx)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}
