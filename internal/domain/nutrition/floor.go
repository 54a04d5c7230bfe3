package nutrition

import "math"

// UniversalMinimumCalories guards every goal against malformed input.
const UniversalMinimumCalories = 1200.0

type floorKey struct {
	goal Goal
	male bool
}

var calorieFloors = map[floorKey]float64{
	{GoalMuscleGain, true}:  2500,
	{GoalMuscleGain, false}: 2200,
	{GoalWeightLoss, true}:  1500,
	{GoalWeightLoss, false}: 1200,
}

// CalorieFloor is the minimum daily calories for a goal and sex. Categories
// other than male use the female floors.
func CalorieFloor(g Goal, s Sex) float64 {
	floor, ok := calorieFloors[floorKey{goal: g, male: s == SexMale}]
	if !ok || floor < UniversalMinimumCalories {
		return UniversalMinimumCalories
	}
	return floor
}

// EnforceFloor raises a budget to its calorie floor. Every macro is recomputed
// from the same split; NaN, infinite and negative calories count as below floor.
func EnforceFloor(b MacroBudget, g Goal, s Sex) (MacroBudget, bool) {
	floor := CalorieFloor(g, s)
	split := b.Split
	if known, ok := SplitFor(g); ok {
		split = known
	}

	if math.IsNaN(b.Calories) || math.IsInf(b.Calories, 0) || b.Calories < floor {
		return BudgetFromCalories(floor, split), true
	}
	if math.IsNaN(b.Protein) || math.IsNaN(b.Carbs) || math.IsNaN(b.Fat) ||
		b.Protein < 0 || b.Carbs < 0 || b.Fat < 0 {
		return BudgetFromCalories(b.Calories, split), true
	}
	return b, false
}
