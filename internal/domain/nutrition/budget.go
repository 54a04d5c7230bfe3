package nutrition

import "math"

// MacroSplit is the share of calories assigned to each macro. The shares sum to 1.
type MacroSplit struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

var macroSplits = map[Goal]MacroSplit{
	GoalWeightLoss: {Protein: 0.35, Carbs: 0.40, Fat: 0.25},
	GoalMuscleGain: {Protein: 0.30, Carbs: 0.50, Fat: 0.20},
	GoalMaintain:   {Protein: 0.25, Carbs: 0.45, Fat: 0.30},
}

// SplitFor returns the macro split for a goal.
func SplitFor(g Goal) (MacroSplit, bool) {
	s, ok := macroSplits[g]
	return s, ok
}

// MacroBudget is a full-day energy and macro target. Values are whole numbers
// held as float64 so the floor enforcer can see NaN or negative input.
type MacroBudget struct {
	Calories float64    `json:"calories"`
	Protein  float64    `json:"protein"`
	Carbs    float64    `json:"carbs"`
	Fat      float64    `json:"fat"`
	Split    MacroSplit `json:"split"`
}

// BudgetFromCalories rounds kcal to a whole number and derives gram targets from
// the split.
func BudgetFromCalories(kcal float64, split MacroSplit) MacroBudget {
	kcal = math.Round(kcal)
	return MacroBudget{
		Calories: kcal,
		Protein:  math.Round(kcal * split.Protein / KcalPerGramProtein),
		Carbs:    math.Round(kcal * split.Carbs / KcalPerGramCarbs),
		Fat:      math.Round(kcal * split.Fat / KcalPerGramFat),
		Split:    split,
	}
}

// Vector returns the budget as a nutrient vector without fiber.
func (b MacroBudget) Vector() NutrientVector {
	return NutrientVector{Calories: b.Calories, Protein: b.Protein, Carbs: b.Carbs, Fat: b.Fat}
}

// Consistent reports whether the macro energy matches Calories within tol
// (0.05 means ±5%).
func (b MacroBudget) Consistent(tol float64) bool {
	if b.Calories <= 0 {
		return false
	}
	return math.Abs(b.Vector().MacroCalories()-b.Calories)/b.Calories <= tol
}

// Budget is the outcome of budget computation: the enforced macro budget plus
// the intermediate energy values shown on goal displays.
type Budget struct {
	MacroBudget
	BMR          float64 `json:"bmr"`
	TDEE         float64 `json:"tdee"`
	Target       float64 `json:"target"`
	Floor        float64 `json:"floor"`
	FloorApplied bool    `json:"floorApplied"`
}
