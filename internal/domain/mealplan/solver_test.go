package mealplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

func records(t *testing.T, ids ...string) []food.Record {
	t.Helper()
	c, err := food.DefaultCatalog()
	require.NoError(t, err)
	out := make([]food.Record, 0, len(ids))
	for _, id := range ids {
		r, err := c.Get(id)
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestSolveLinear(t *testing.T) {
	x, ok := solveLinear([][]float64{{2, 1}, {1, 3}}, []float64{5, 10})
	require.True(t, ok)
	assert.InDelta(t, 1.0, x[0], 1e-9)
	assert.InDelta(t, 3.0, x[1], 1e-9)

	_, ok = solveLinear([][]float64{{1, 2}, {2, 4}}, []float64{1, 2})
	assert.False(t, ok, "singular system must be rejected")
}

func TestFitWeights_ExactSingleItem(t *testing.T) {
	items := records(t, "chicken_breast")
	target := items[0].NutrientsFor(250)

	w, ok := fitWeights(items, target)

	require.True(t, ok)
	assert.InDelta(t, 2.5, w[0], 1e-9)
}

func TestFitWeights_NeverNegative(t *testing.T) {
	items := records(t, "chicken_breast", "white_rice", "olive_oil")
	// Fat-free target pushes the oil weight to zero instead of below it.
	target := nutrition.NutrientVector{Calories: 400, Protein: 40, Carbs: 45, Fat: 0}

	w, ok := fitWeights(items, target)

	require.True(t, ok)
	for i, v := range w {
		assert.GreaterOrEqual(t, v, 0.0, items[i].ID)
	}
}

func TestSizePortions_FloorPolicies(t *testing.T) {
	items := records(t, "chicken_breast", "white_rice", "olive_oil")
	// The oil fits at about 3 g here, below the 15 g floor.
	target := nutrition.NutrientVector{Calories: 400, Protein: 40, Carbs: 45, Fat: 8}

	t.Run("drop rebalances the remaining items", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Policy = DropAndRebalance

		got := sizePortions(items, target, opts)

		require.Len(t, got, 2)
		assert.Equal(t, "chicken_breast", got[0].Food.ID)
		assert.Equal(t, "white_rice", got[1].Food.ID)
		var kcal float64
		for _, p := range got {
			assert.GreaterOrEqual(t, p.Grams, opts.MinPortion)
			kcal += p.Nutrients().Calories
		}
		assert.InDelta(t, 400, kcal, 5)
	})

	t.Run("raise keeps the item at the floor", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Policy = RaiseToFloor

		got := sizePortions(items, target, opts)

		require.Len(t, got, 3)
		assert.Equal(t, "olive_oil", got[2].Food.ID)
		assert.Equal(t, opts.MinPortion, got[2].Grams)
		var kcal float64
		for _, p := range got {
			kcal += p.Nutrients().Calories
		}
		assert.Greater(t, kcal, 400.0, "raising accepts the overshoot")
	})
}

func TestSizePortions_TinyTargetYieldsNothing(t *testing.T) {
	items := records(t, "olive_oil", "butter")
	target := nutrition.NutrientVector{Calories: 13, Fat: 1.4}

	assert.Nil(t, sizePortions(items, target, DefaultOptions()))
}

func TestSizePortions_RespectsRecordMaximum(t *testing.T) {
	items := records(t, "olive_oil", "white_rice")
	target := nutrition.NutrientVector{Calories: 2000, Fat: 150, Carbs: 150}

	got := sizePortions(items, target, DefaultOptions())

	require.NotEmpty(t, got)
	for _, p := range got {
		if p.Food.ID == "olive_oil" {
			assert.LessOrEqual(t, p.Grams, 40)
		}
		assert.LessOrEqual(t, p.Grams, DefaultOptions().MaxPortion)
	}
}

func TestOptions_WidenPerAttempt(t *testing.T) {
	o := DefaultOptions()

	assert.InDelta(t, 0.05, o.ToleranceFor(0), 1e-12)
	assert.InDelta(t, 0.07, o.ToleranceFor(1), 1e-12)
	assert.InDelta(t, 0.09, o.ToleranceFor(2), 1e-12)
	assert.InDelta(t, 0.09, o.ToleranceFor(5), 1e-12)
	assert.Equal(t, 6, o.PoolDepthFor(0))
	assert.Equal(t, 12, o.PoolDepthFor(2))
}
