package mealplan_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/test/testutils"
)

type ValidatorTestSuite struct {
	suite.Suite
	catalog   *food.Catalog
	validator *mealplan.Validator
	profile   nutrition.Profile
	plan      *mealplan.Plan
	budget    nutrition.Budget
}

func (suite *ValidatorTestSuite) SetupTest() {
	suite.catalog = testutils.DefaultCatalog()
	suite.validator = mealplan.NewValidator(mealplan.DefaultValidatorOptions())
	suite.profile = testutils.NewProfileBuilder().
		WithDiet(nutrition.DietVegan).
		WithRestrictions(nutrition.RestrictionNoSoy).
		Build()
	suite.plan, suite.budget = planFor(suite.T(), suite.catalog, suite.profile, 7)
}

func (suite *ValidatorTestSuite) record(id string) food.Record {
	r, err := suite.catalog.Get(id)
	require.NoError(suite.T(), err)
	return r
}

// mutate rebuilds the accepted plan after editing its meals.
func (suite *ValidatorTestSuite) mutate(edit func(meals []mealplan.Meal)) *mealplan.Plan {
	meals := suite.plan.Meals()
	edit(meals)
	return mealplan.NewPlan(meals, 0, 0)
}

func (suite *ValidatorTestSuite) TestAcceptedPlan() {
	verdict := suite.validator.Validate(suite.plan, suite.budget.MacroBudget, suite.profile)

	assert.True(suite.T(), verdict.Accepted)
	assert.NoError(suite.T(), verdict.Err())
}

func (suite *ValidatorTestSuite) TestAllergenViolation() {
	suite.Run("DietTag_ShouldBeRejected", func() {
		plan := suite.mutate(func(meals []mealplan.Meal) {
			meals[1].Portions = append(meals[1].Portions, mealplan.Portion{Food: suite.record("greek_yogurt"), Grams: 100})
		})

		verdict := suite.validator.Validate(plan, suite.budget.MacroBudget, suite.profile)

		assert.False(suite.T(), verdict.Accepted)
		assert.Equal(suite.T(), mealplan.ReasonAllergenViolation, verdict.Reason)
		assert.Equal(suite.T(), "greek_yogurt", verdict.FoodID)
		require.NotNil(suite.T(), verdict.Slot)
		assert.Equal(suite.T(), mealplan.Lunch, *verdict.Slot)
	})

	suite.Run("RestrictionAllergen_ShouldBeRejected", func() {
		plan := suite.mutate(func(meals []mealplan.Meal) {
			meals[3].Portions = append(meals[3].Portions, mealplan.Portion{Food: suite.record("edamame"), Grams: 80})
		})

		verdict := suite.validator.Validate(plan, suite.budget.MacroBudget, suite.profile)

		assert.Equal(suite.T(), mealplan.ReasonAllergenViolation, verdict.Reason)
		assert.True(suite.T(), errors.Is(verdict.Err(), mealplan.ErrAllergenViolation))
	})

	suite.Run("ShouldTakePrecedenceOverPortionChecks", func() {
		plan := suite.mutate(func(meals []mealplan.Meal) {
			meals[0].Portions[0].Grams = 5
			meals[2].Portions = append(meals[2].Portions, mealplan.Portion{Food: suite.record("salmon"), Grams: 120})
		})

		verdict := suite.validator.Validate(plan, suite.budget.MacroBudget, suite.profile)

		assert.Equal(suite.T(), mealplan.ReasonAllergenViolation, verdict.Reason)
	})
}

func (suite *ValidatorTestSuite) TestPortionLimits() {
	suite.Run("BelowFloor_ShouldBeRejected", func() {
		plan := suite.mutate(func(meals []mealplan.Meal) { meals[0].Portions[0].Grams = 10 })

		verdict := suite.validator.Validate(plan, suite.budget.MacroBudget, suite.profile)

		assert.Equal(suite.T(), mealplan.ReasonPortionTooSmall, verdict.Reason)
		assert.Equal(suite.T(), mealplan.ReasonPortionTooSmall, mealplan.ReasonOf(verdict.Err()))
	})

	suite.Run("AboveCeiling_ShouldBeRejected", func() {
		plan := suite.mutate(func(meals []mealplan.Meal) { meals[2].Portions[0].Grams = 700 })

		verdict := suite.validator.Validate(plan, suite.budget.MacroBudget, suite.profile)

		assert.Equal(suite.T(), mealplan.ReasonPortionTooLarge, verdict.Reason)
	})
}

func (suite *ValidatorTestSuite) TestInsufficientProtein() {
	plan := suite.mutate(func(meals []mealplan.Meal) {
		meals[0].Portions = []mealplan.Portion{
			{Food: suite.record("banana"), Grams: 150},
			{Food: suite.record("apple"), Grams: 150},
		}
	})

	verdict := suite.validator.Validate(plan, suite.budget.MacroBudget, suite.profile)

	assert.Equal(suite.T(), mealplan.ReasonInsufficientProtein, verdict.Reason)
	require.NotNil(suite.T(), verdict.Slot)
	assert.Equal(suite.T(), mealplan.Breakfast, *verdict.Slot)
}

func (suite *ValidatorTestSuite) TestMacroMismatch() {
	split, _ := nutrition.SplitFor(nutrition.GoalMaintain)
	bigger := nutrition.BudgetFromCalories(suite.budget.Calories*1.5, split)

	verdict := suite.validator.Validate(suite.plan, bigger, suite.profile)

	assert.Equal(suite.T(), mealplan.ReasonMacroMismatch, verdict.Reason)
	assert.Nil(suite.T(), verdict.Slot)
	assert.True(suite.T(), errors.Is(verdict.Err(), mealplan.ErrMacroMismatch))
}

func (suite *ValidatorTestSuite) TestHandBuiltTinyPortionIsNeverAccepted() {
	plan := mealplan.NewPlan([]mealplan.Meal{
		{Slot: mealplan.Snack, Portions: []mealplan.Portion{{Food: suite.record("olive_oil"), Grams: 3}}},
	}, 0, 0)

	verdict := suite.validator.Validate(plan, suite.budget.MacroBudget, testutils.NewProfileBuilder().Build())

	assert.False(suite.T(), verdict.Accepted)
	assert.Equal(suite.T(), mealplan.ReasonPortionTooSmall, verdict.Reason)
}

func (suite *ValidatorTestSuite) TestLoweredFloorStillRejectsTinyPortions() {
	validator := mealplan.NewValidator(mealplan.ValidatorOptions{MinPortion: 1, MaxPortion: 5000})
	plan := mealplan.NewPlan([]mealplan.Meal{
		{Slot: mealplan.Snack, Portions: []mealplan.Portion{{Food: suite.record("olive_oil"), Grams: 5}}},
	}, 0, 0)

	verdict := validator.Validate(plan, suite.budget.MacroBudget, testutils.NewProfileBuilder().Build())

	assert.False(suite.T(), verdict.Accepted)
	assert.Equal(suite.T(), mealplan.ReasonPortionTooSmall, verdict.Reason)
	assert.Equal(suite.T(), mealplan.MinPortionFloor, validator.Options().MinPortion)
	assert.Equal(suite.T(), mealplan.MaxPortionCeiling, validator.Options().MaxPortion)
}

func (suite *ValidatorTestSuite) TestTightenedLimitsAreKept() {
	validator := mealplan.NewValidator(mealplan.ValidatorOptions{MinPortion: 25, MaxPortion: 400})

	assert.Equal(suite.T(), 25, validator.Options().MinPortion)
	assert.Equal(suite.T(), 400, validator.Options().MaxPortion)
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}
