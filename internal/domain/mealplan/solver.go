package mealplan

import (
	"math"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// energyRows expresses a vector as (kcal, protein kcal, carb kcal, fat kcal) so
// every residual is measured in the same unit.
func energyRows(v nutrition.NutrientVector) [4]float64 {
	return [4]float64{
		v.Calories,
		v.Protein * nutrition.KcalPerGramProtein,
		v.Carbs * nutrition.KcalPerGramCarbs,
		v.Fat * nutrition.KcalPerGramFat,
	}
}

func dot(a, b [4]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

// fitWeights solves a non-negative least squares fit of the item densities to
// the target. Weights are in units of 100 g. With at most three items every
// subset is solved directly and the feasible subset with the smallest residual
// wins.
func fitWeights(items []food.Record, target nutrition.NutrientVector) ([]float64, bool) {
	n := len(items)
	cols := make([][4]float64, n)
	for i, r := range items {
		cols[i] = energyRows(r.Per100g)
	}
	t := energyRows(target)

	var best []float64
	bestResidual := math.Inf(1)

	for mask := 1; mask < 1<<n; mask++ {
		var idx []int
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				idx = append(idx, i)
			}
		}

		k := len(idx)
		a := make([][]float64, k)
		b := make([]float64, k)
		for r, i := range idx {
			a[r] = make([]float64, k)
			for c, j := range idx {
				a[r][c] = dot(cols[i], cols[j])
			}
			b[r] = dot(cols[i], t)
		}

		x, ok := solveLinear(a, b)
		if !ok {
			continue
		}
		feasible := true
		for _, v := range x {
			if v < 0 {
				feasible = false
				break
			}
		}
		if !feasible {
			continue
		}

		weights := make([]float64, n)
		for r, i := range idx {
			weights[i] = x[r]
		}
		if res := residual(cols, weights, t); res < bestResidual-1e-9 {
			best, bestResidual = weights, res
		}
	}

	return best, best != nil
}

func residual(cols [][4]float64, weights []float64, target [4]float64) float64 {
	var sum float64
	for row := 0; row < 4; row++ {
		var got float64
		for i, w := range weights {
			got += cols[i][row] * w
		}
		d := got - target[row]
		sum += d * d
	}
	return sum
}

// solveLinear solves a*x = b by Gauss-Jordan elimination with partial pivoting.
func solveLinear(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	m := make([][]float64, n)
	for i := range a {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-9 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = m[i][n] / m[i][i]
	}
	return x, true
}

// sizePortions turns a fitted combination into whole-gram portions: fit,
// scale to the calorie target, clamp to each record's maximum, then apply the
// portion floor policy. It returns nil when no valid sizing exists.
func sizePortions(items []food.Record, target nutrition.NutrientVector, opts Options) []Portion {
	active := append([]food.Record(nil), items...)

	for len(active) > 0 {
		weights, ok := fitWeights(active, target)
		if !ok {
			return nil
		}

		grams := make([]float64, len(active))
		var kcal float64
		for i, w := range weights {
			grams[i] = w * 100
			kcal += active[i].NutrientsFor(grams[i]).Calories
		}
		if kcal <= 0 {
			return nil
		}

		scale := target.Calories / kcal
		var small []int
		for i := range grams {
			grams[i] = math.Min(grams[i]*scale, float64(opts.maxPortionFor(active[i])))
			if grams[i] < float64(opts.MinPortion) {
				small = append(small, i)
			}
		}

		if len(small) == 0 {
			return roundPortions(active, grams)
		}

		if opts.Policy == RaiseToFloor {
			var kept []food.Record
			var keptGrams []float64
			for i, g := range grams {
				if g <= 0 {
					continue
				}
				kept = append(kept, active[i])
				keptGrams = append(keptGrams, math.Max(g, float64(opts.MinPortion)))
			}
			if len(kept) == 0 {
				return nil
			}
			return roundPortions(kept, keptGrams)
		}

		active = dropIndices(active, small)
	}

	return nil
}

func roundPortions(items []food.Record, grams []float64) []Portion {
	out := make([]Portion, len(items))
	for i, r := range items {
		out[i] = Portion{Food: r, Grams: int(math.Round(grams[i]))}
	}
	return out
}

func dropIndices(items []food.Record, drop []int) []food.Record {
	skip := make(map[int]struct{}, len(drop))
	for _, i := range drop {
		skip[i] = struct{}{}
	}
	var out []food.Record
	for i, r := range items {
		if _, ok := skip[i]; !ok {
			out = append(out, r)
		}
	}
	return out
}
