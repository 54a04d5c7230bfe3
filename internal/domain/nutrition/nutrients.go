package nutrition

import "math"

// Energy density of each macro in kcal per gram.
const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarbs   = 4.0
	KcalPerGramFat     = 9.0
)

// NutrientVector is a fixed-shape nutrient record. It is used both as a per-100g
// density on catalog records and as an absolute quantity on portions and plans.
type NutrientVector struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the component-wise sum of v and o.
func (v NutrientVector) Add(o NutrientVector) NutrientVector {
	return NutrientVector{
		Calories: v.Calories + o.Calories,
		Protein:  v.Protein + o.Protein,
		Carbs:    v.Carbs + o.Carbs,
		Fat:      v.Fat + o.Fat,
		Fiber:    v.Fiber + o.Fiber,
	}
}

// Scale multiplies every component by factor.
func (v NutrientVector) Scale(factor float64) NutrientVector {
	return NutrientVector{
		Calories: v.Calories * factor,
		Protein:  v.Protein * factor,
		Carbs:    v.Carbs * factor,
		Fat:      v.Fat * factor,
		Fiber:    v.Fiber * factor,
	}
}

// ForGrams scales a per-100g density to an absolute quantity.
func (v NutrientVector) ForGrams(grams float64) NutrientVector {
	return v.Scale(grams / 100)
}

// Sum adds vectors in the order given.
func Sum(vectors ...NutrientVector) NutrientVector {
	var total NutrientVector
	for _, v := range vectors {
		total = total.Add(v)
	}
	return total
}

// IsNonNegative reports whether every component is finite and >= 0.
func (v NutrientVector) IsNonNegative() bool {
	for _, x := range []float64{v.Calories, v.Protein, v.Carbs, v.Fat, v.Fiber} {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// MacroCalories is the Atwater energy of the vector's macros.
func (v NutrientVector) MacroCalories() float64 {
	return v.Protein*KcalPerGramProtein + v.Carbs*KcalPerGramCarbs + v.Fat*KcalPerGramFat
}

// ApproxEqual compares component-wise within an absolute epsilon.
func (v NutrientVector) ApproxEqual(o NutrientVector, eps float64) bool {
	return math.Abs(v.Calories-o.Calories) <= eps &&
		math.Abs(v.Protein-o.Protein) <= eps &&
		math.Abs(v.Carbs-o.Carbs) <= eps &&
		math.Abs(v.Fat-o.Fat) <= eps &&
		math.Abs(v.Fiber-o.Fiber) <= eps
}
