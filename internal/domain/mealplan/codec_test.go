package mealplan_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/test/testutils"
)

func TestCodec_RoundTrip(t *testing.T) {
	catalog := testutils.DefaultCatalog()
	factory := testutils.NewProfileFactory(11)

	for seed := uint64(0); seed < 5; seed++ {
		plan, _ := planFor(t, catalog, testutils.NewProfileBuilder().WithDiet(factory.Profile().Diet).Build(), seed)

		data, err := mealplan.Encode(plan)
		require.NoError(t, err)
		decoded, err := mealplan.Decode(data, catalog)
		require.NoError(t, err)

		assert.True(t, plan.Equivalent(decoded))
		assert.Equal(t, plan.DailyTotals(), decoded.DailyTotals())
		assert.Equal(t, mealplan.ToWire(plan), mealplan.ToWire(decoded))
	}
}

func TestCodec_WireShape(t *testing.T) {
	catalog := testutils.DefaultCatalog()
	plan, _ := planFor(t, catalog, testutils.NewProfileBuilder().Build(), 1)

	data, err := mealplan.Encode(plan)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "dailyTotals")
	slots, ok := raw["slots"].(map[string]any)
	require.True(t, ok)
	for _, s := range mealplan.Slots {
		assert.Contains(t, slots, string(s))
	}
	first := slots["breakfast"].([]any)[0].(map[string]any)
	assert.Contains(t, first, "foodId")
	assert.Contains(t, first, "grams")
}

func TestCodec_DecodeErrors(t *testing.T) {
	catalog := testutils.DefaultCatalog()
	plan, _ := planFor(t, catalog, testutils.NewProfileBuilder().Build(), 2)
	wire := mealplan.ToWire(plan)

	t.Run("tampered totals", func(t *testing.T) {
		w := wire
		w.DailyTotals.Calories++
		_, err := mealplan.FromWire(w, catalog)
		assert.True(t, errors.Is(err, mealplan.ErrTotalsMismatch))
	})

	t.Run("unknown food", func(t *testing.T) {
		data := []byte(`{"dailyTotals":{},"slots":{"snack":[{"foodId":"unicorn_steak","grams":100}]}}`)
		_, err := mealplan.Decode(data, catalog)
		assert.True(t, errors.Is(err, food.ErrFoodNotFound))
	})

	t.Run("unknown slot", func(t *testing.T) {
		data := []byte(`{"dailyTotals":{},"slots":{"brunch":[]}}`)
		_, err := mealplan.Decode(data, catalog)
		assert.True(t, errors.Is(err, mealplan.ErrUnknownSlot))
	})

	t.Run("non-positive grams", func(t *testing.T) {
		for _, grams := range []string{"0", "-120"} {
			data := []byte(`{"dailyTotals":{},"slots":{"snack":[{"foodId":"banana","grams":` + grams + `}]}}`)
			plan, err := mealplan.Decode(data, catalog)
			assert.Nil(t, plan, grams)
			assert.True(t, errors.Is(err, mealplan.ErrInvalidGrams), grams)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := mealplan.Decode([]byte(`{"slots":`), catalog)
		assert.Error(t, err)
	})
}
