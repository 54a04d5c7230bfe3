package nutrition

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// CalculatorTestSuite covers the goal calculator and the floor enforcer
type CalculatorTestSuite struct {
	suite.Suite
	base Profile
}

func (suite *CalculatorTestSuite) SetupTest() {
	suite.base = Profile{
		Age:      19,
		Sex:      SexMale,
		HeightCM: 180,
		WeightKG: 67,
		Activity: ActivityModerate,
		Goal:     GoalMuscleGain,
		Diet:     DietNonVegetarian,
	}
}

func (suite *CalculatorTestSuite) TestBMR() {
	suite.Run("Male_ShouldUsePlusFiveOffset", func() {
		assert.InDelta(suite.T(), 1705.0, BMR(suite.base), 1e-9)
	})

	suite.Run("Female_ShouldUseMinus161Offset", func() {
		p := suite.base
		p.Sex = SexFemale
		assert.InDelta(suite.T(), 1539.0, BMR(p), 1e-9)
	})

	suite.Run("Other_ShouldFallBackToFemaleOffset", func() {
		p := suite.base
		p.Sex = SexOther
		female := suite.base
		female.Sex = SexFemale
		assert.Equal(suite.T(), BMR(female), BMR(p))
	})
}

func (suite *CalculatorTestSuite) TestActivityMultipliers() {
	expected := map[ActivityLevel]float64{
		ActivitySedentary:  1.20,
		ActivityLight:      1.375,
		ActivityModerate:   1.55,
		ActivityActive:     1.725,
		ActivityVeryActive: 1.90,
	}
	for level, m := range expected {
		assert.Equal(suite.T(), m, ActivityMultiplier(level), level)
	}
	assert.True(suite.T(), math.IsNaN(ActivityMultiplier("couch")))
}

func (suite *CalculatorTestSuite) TestCalculate() {
	suite.Run("MuscleGainScenario_ShouldFollowFormula", func() {
		// Arrange: 67 kg, 180 cm, 19 y male, moderate, muscle gain.
		// BMR 1705, TDEE 2642.75, +300 surplus.

		// Act
		b, err := Calculate(suite.base)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 1705.0, b.BMR)
		assert.Equal(suite.T(), 2643.0, b.TDEE)
		assert.Equal(suite.T(), 2943.0, b.Calories)
		assert.Equal(suite.T(), 221.0, b.Protein)
		assert.Equal(suite.T(), 368.0, b.Carbs)
		assert.Equal(suite.T(), 65.0, b.Fat)
		assert.True(suite.T(), b.Consistent(0.05))
	})

	suite.Run("WeightLoss_ShouldSubtractDeficitAndUseLossSplit", func() {
		p := suite.base
		p.Goal = GoalWeightLoss

		b, err := Calculate(p)

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 2143.0, b.Calories)
		assert.Equal(suite.T(), MacroSplit{Protein: 0.35, Carbs: 0.40, Fat: 0.25}, b.Split)
		assert.Equal(suite.T(), math.Round(2143*0.35/4), b.Protein)
	})

	suite.Run("Maintain_ShouldApplyNoAdjustment", func() {
		p := suite.base
		p.Goal = GoalMaintain

		b, err := Calculate(p)

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 2643.0, b.Calories)
		assert.Equal(suite.T(), math.Round(2643*0.30/9), b.Fat)
	})

	suite.Run("InvalidProfiles_ShouldReturnInvalidProfile", func() {
		cases := map[string]func(*Profile){
			"negative weight":  func(p *Profile) { p.WeightKG = -60 },
			"zero height":      func(p *Profile) { p.HeightCM = 0 },
			"NaN weight":       func(p *Profile) { p.WeightKG = math.NaN() },
			"negative age":     func(p *Profile) { p.Age = -1 },
			"unknown activity": func(p *Profile) { p.Activity = "couch" },
			"unknown goal":     func(p *Profile) { p.Goal = "bulk" },
			"unknown sex":      func(p *Profile) { p.Sex = "x" },
			"unknown diet":     func(p *Profile) { p.Diet = "carnivore" },
			"unknown allergen": func(p *Profile) { p.Allergens = []Allergen{"pollen"} },
			"unknown restrict": func(p *Profile) { p.Restrictions = []Restriction{"no_fun"} },
		}
		for name, mutate := range cases {
			p := suite.base
			mutate(&p)

			_, err := Calculate(p)

			assert.True(suite.T(), errors.Is(err, ErrInvalidProfile), name)
		}
	})
}

func (suite *CalculatorTestSuite) TestEnforceFloor() {
	suite.Run("FemaleMuscleGain_ShouldClampTo2200", func() {
		p := suite.base
		p.Sex = SexFemale
		p.WeightKG = 45
		p.HeightCM = 150
		p.Age = 30
		p.Activity = ActivitySedentary

		b, err := ComputeBudget(p)

		require.NoError(suite.T(), err)
		assert.True(suite.T(), b.FloorApplied)
		assert.Equal(suite.T(), 2200.0, b.Calories)
		assert.Equal(suite.T(), 165.0, b.Protein)
		assert.Equal(suite.T(), 275.0, b.Carbs)
		assert.Equal(suite.T(), 49.0, b.Fat)
		assert.Less(suite.T(), b.Target, 2200.0)
	})

	suite.Run("AboveFloor_ShouldBeUnchanged", func() {
		b, err := ComputeBudget(suite.base)

		require.NoError(suite.T(), err)
		assert.False(suite.T(), b.FloorApplied)
		assert.Equal(suite.T(), 2943.0, b.Calories)
		assert.Equal(suite.T(), 2500.0, b.Floor)
	})

	suite.Run("NaNCalories_ShouldBeReplacedByFloor", func() {
		split, _ := SplitFor(GoalWeightLoss)
		raw := MacroBudget{Calories: math.NaN(), Protein: math.NaN(), Split: split}

		b, applied := EnforceFloor(raw, GoalWeightLoss, SexMale)

		assert.True(suite.T(), applied)
		assert.Equal(suite.T(), 1500.0, b.Calories)
		assert.Equal(suite.T(), math.Round(1500*0.35/4), b.Protein)
	})

	suite.Run("NegativeCalories_ShouldBeReplacedByUniversalMinimum", func() {
		split, _ := SplitFor(GoalMaintain)

		b, applied := EnforceFloor(BudgetFromCalories(-800, split), GoalMaintain, SexFemale)

		assert.True(suite.T(), applied)
		assert.Equal(suite.T(), UniversalMinimumCalories, b.Calories)
		assert.True(suite.T(), b.Consistent(0.05))
	})

	suite.Run("Floors_ShouldMatchGoalAndSex", func() {
		assert.Equal(suite.T(), 2500.0, CalorieFloor(GoalMuscleGain, SexMale))
		assert.Equal(suite.T(), 2200.0, CalorieFloor(GoalMuscleGain, SexFemale))
		assert.Equal(suite.T(), 2200.0, CalorieFloor(GoalMuscleGain, SexOther))
		assert.Equal(suite.T(), 1500.0, CalorieFloor(GoalWeightLoss, SexMale))
		assert.Equal(suite.T(), 1200.0, CalorieFloor(GoalWeightLoss, SexFemale))
		assert.Equal(suite.T(), 1200.0, CalorieFloor(GoalMaintain, SexMale))
		assert.Equal(suite.T(), 1200.0, CalorieFloor("unknown", SexMale))
	})
}

func TestCalculatorTestSuite(t *testing.T) {
	suite.Run(t, new(CalculatorTestSuite))
}
