package mealplan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/test/testutils"
)

func TestNewPlan_FillsMissingSlotsInOrder(t *testing.T) {
	oats, ok := testutils.DefaultCatalog().Lookup("rolled_oats")
	require.True(t, ok)

	plan := mealplan.NewPlan([]mealplan.Meal{
		{Slot: mealplan.Snack, Portions: []mealplan.Portion{{Food: oats, Grams: 40}}},
	}, 5, 1)

	meals := plan.Meals()
	require.Len(t, meals, 4)
	for i, s := range mealplan.Slots {
		assert.Equal(t, s, meals[i].Slot)
	}
	assert.Empty(t, plan.Meal(mealplan.Breakfast).Portions)
	assert.Equal(t, oats.NutrientsFor(40), plan.DailyTotals())
	assert.Equal(t, uint64(5), plan.Seed())
	assert.Equal(t, 1, plan.Attempt())
}

func TestPlan_AcceptRaisesOneEvent(t *testing.T) {
	catalog := testutils.DefaultCatalog()
	plan, budget := planFor(t, catalog, testutils.NewProfileBuilder().Build(), 3)

	plan.Accept(budget.MacroBudget)
	plan.Accept(budget.MacroBudget)

	events := plan.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "mealplan.accepted", events[0].EventName())
	accepted, ok := events[0].(mealplan.PlanAcceptedEvent)
	require.True(t, ok)
	assert.Equal(t, plan.ID(), accepted.PlanID)
	assert.True(t, plan.Accepted())
	assert.Empty(t, plan.Events(), "events are drained once read")
}

func TestSlotShares(t *testing.T) {
	var total float64
	for _, s := range mealplan.Slots {
		total += s.Share()
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	s, err := mealplan.ParseSlot(" Dinner ")
	require.NoError(t, err)
	assert.Equal(t, mealplan.Dinner, s)
	assert.True(t, s.IsMainMeal())
	assert.False(t, mealplan.Snack.IsMainMeal())

	_, err = mealplan.ParseSlot("brunch")
	assert.ErrorIs(t, err, mealplan.ErrUnknownSlot)
}
