package nutrition

import "math"

// Goal calorie adjustments in kcal.
const (
	WeightLossDeficit = 500.0
	MuscleGainSurplus = 300.0
)

const (
	maleOffset   = 5.0
	femaleOffset = -161.0
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.20,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.90,
}

// ActivityMultiplier returns the TDEE multiplier for a level. Unknown levels
// yield NaN so the floor enforcer replaces the result.
func ActivityMultiplier(a ActivityLevel) float64 {
	m, ok := activityMultipliers[a]
	if !ok {
		return math.NaN()
	}
	return m
}

// GoalAdjustment returns the kcal added to TDEE for a goal.
func GoalAdjustment(g Goal) float64 {
	switch g {
	case GoalWeightLoss:
		return -WeightLossDeficit
	case GoalMuscleGain:
		return MuscleGainSurplus
	default:
		return 0
	}
}

// BMR computes basal metabolic rate with the Mifflin-St Jeor equation. The
// "other" category uses the female offset.
func BMR(p Profile) float64 {
	offset := femaleOffset
	if p.Sex == SexMale {
		offset = maleOffset
	}
	return 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age) + offset
}

// TDEE is BMR scaled by the activity multiplier.
func TDEE(p Profile) float64 {
	return BMR(p) * ActivityMultiplier(p.Activity)
}

// Calculate validates the profile and returns the unenforced budget. Callers
// must pass the result through EnforceFloor before allocating against it.
func Calculate(p Profile) (Budget, error) {
	if err := p.Validate(); err != nil {
		return Budget{}, err
	}

	split, _ := SplitFor(p.Goal)
	bmr := BMR(p)
	tdee := bmr * ActivityMultiplier(p.Activity)
	target := tdee + GoalAdjustment(p.Goal)

	return Budget{
		MacroBudget: BudgetFromCalories(target, split),
		BMR:         math.Round(bmr),
		TDEE:        math.Round(tdee),
		Target:      math.Round(target),
	}, nil
}

// ComputeBudget runs the calculator and the floor enforcer.
func ComputeBudget(p Profile) (Budget, error) {
	b, err := Calculate(p)
	if err != nil {
		return Budget{}, err
	}
	b.MacroBudget, b.FloorApplied = EnforceFloor(b.MacroBudget, p.Goal, p.Sex)
	b.Floor = CalorieFloor(p.Goal, p.Sex)
	return b, nil
}
