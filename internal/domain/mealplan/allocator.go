package mealplan

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// PortionPolicy decides what happens to an item sized below the portion floor.
type PortionPolicy string

const (
	// DropAndRebalance removes the item and re-fits the remaining items.
	DropAndRebalance PortionPolicy = "drop"
	// RaiseToFloor raises the item to the floor and accepts the overshoot.
	RaiseToFloor PortionPolicy = "raise"
)

// IsValid reports whether p is a known policy.
func (p PortionPolicy) IsValid() bool {
	return p == DropAndRebalance || p == RaiseToFloor
}

// Options tunes the allocator. Tolerance and pool depth widen with each retry.
type Options struct {
	Policy           PortionPolicy
	MinPortion       int
	MaxPortion       int
	VegetablePortion int
	BaseTolerance    float64
	ToleranceStep    float64
	MaxTolerance     float64
	BasePoolDepth    int
	PoolDepthStep    int
}

// DefaultOptions returns the production allocator settings.
func DefaultOptions() Options {
	return Options{
		Policy:           DropAndRebalance,
		MinPortion:       MinPortionFloor,
		MaxPortion:       500,
		VegetablePortion: 90,
		BaseTolerance:    0.05,
		ToleranceStep:    0.02,
		MaxTolerance:     0.09,
		BasePoolDepth:    6,
		PoolDepthStep:    3,
	}
}

// ToleranceFor returns the per-slot tolerance used on an attempt.
func (o Options) ToleranceFor(attempt int) float64 {
	return math.Min(o.BaseTolerance+o.ToleranceStep*float64(attempt), o.MaxTolerance)
}

// PoolDepthFor returns how many ranked candidates per role an attempt considers.
func (o Options) PoolDepthFor(attempt int) int {
	return o.BasePoolDepth + o.PoolDepthStep*attempt
}

func (o Options) maxPortionFor(r food.Record) int {
	if r.MaxPortion > 0 && r.MaxPortion < o.MaxPortion {
		return r.MaxPortion
	}
	return o.MaxPortion
}

type role int

const (
	roleProtein role = iota
	roleCarb
	roleFat
	roleVegetable
)

func roleOf(c food.Category) role {
	switch c {
	case food.CategoryProtein, food.CategoryLegume:
		return roleProtein
	case food.CategoryGrain, food.CategoryFruit:
		return roleCarb
	case food.CategoryFat:
		return roleFat
	default:
		return roleVegetable
	}
}

// share is the fraction of a record's calories supplied by the role's macro.
func (r role) share(rec food.Record) float64 {
	d := rec.Per100g
	switch r {
	case roleProtein:
		return d.Protein * nutrition.KcalPerGramProtein / d.Calories
	case roleCarb:
		return d.Carbs * nutrition.KcalPerGramCarbs / d.Calories
	case roleFat:
		return d.Fat * nutrition.KcalPerGramFat / d.Calories
	default:
		return 0
	}
}

// Request is the input of one allocation attempt.
type Request struct {
	Budget     nutrition.MacroBudget
	Exclusions food.Exclusions
	Catalog    *food.Catalog
	Seed       uint64
	Attempt    int
}

// Allocator distributes a budget across slots. It holds no state between
// calls and is safe for concurrent use.
type Allocator struct {
	opts Options
}

// NewAllocator creates an allocator. Zero-valued options fall back to defaults
// and portion limits are kept within what the validator accepts.
func NewAllocator(opts Options) *Allocator {
	def := DefaultOptions()
	if !opts.Policy.IsValid() {
		opts.Policy = def.Policy
	}
	if opts.MinPortion <= 0 {
		opts.MinPortion = def.MinPortion
	}
	opts.MinPortion = max(opts.MinPortion, MinPortionFloor)
	if opts.MaxPortion <= 0 {
		opts.MaxPortion = def.MaxPortion
	}
	opts.MaxPortion = min(opts.MaxPortion, MaxPortionCeiling)
	if opts.VegetablePortion <= 0 {
		opts.VegetablePortion = def.VegetablePortion
	}
	if opts.BaseTolerance <= 0 {
		opts.BaseTolerance = def.BaseTolerance
		opts.ToleranceStep = def.ToleranceStep
	}
	if opts.MaxTolerance <= 0 {
		opts.MaxTolerance = def.MaxTolerance
	}
	if opts.BasePoolDepth <= 0 {
		opts.BasePoolDepth = def.BasePoolDepth
		opts.PoolDepthStep = def.PoolDepthStep
	}
	return &Allocator{opts: opts}
}

// Options returns the effective options.
func (a *Allocator) Options() Options { return a.opts }

// Allocate builds a draft plan. The same request always yields the same plan.
func (a *Allocator) Allocate(req Request) (*Plan, error) {
	eligible := req.Catalog.Eligible(req.Exclusions)

	ranked := make(map[role][]food.Record, 4)
	for _, r := range eligible {
		ro := roleOf(r.Category)
		ranked[ro] = append(ranked[ro], r)
	}
	if len(ranked[roleProtein])+len(ranked[roleCarb])+len(ranked[roleFat]) < 2 {
		return nil, &SlotError{Err: ErrNoEligibleFoods}
	}
	for ro, recs := range ranked {
		sortByShare(recs, ro)
	}

	rng := rand.New(rand.NewPCG(req.Seed, uint64(req.Attempt)))
	depth := a.opts.PoolDepthFor(req.Attempt)
	tol := a.opts.ToleranceFor(req.Attempt)

	meals := make([]Meal, 0, len(Slots))
	for _, slot := range Slots {
		pools := make(map[role][]food.Record, 4)
		for _, ro := range []role{roleProtein, roleCarb, roleFat, roleVegetable} {
			pools[ro] = shuffledPool(rng, ranked[ro], depth)
		}

		meal, err := a.allocateSlot(slot, SlotTarget(req.Budget, slot), pools, tol)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}

	return NewPlan(meals, req.Seed, req.Attempt), nil
}

func (a *Allocator) allocateSlot(slot Slot, target nutrition.NutrientVector, pools map[role][]food.Record, tol float64) (Meal, error) {
	var fixed []Portion
	remaining := target
	if slot == Lunch || slot == Dinner {
		if veg := pools[roleVegetable]; len(veg) > 0 {
			side := Portion{Food: veg[0], Grams: a.opts.VegetablePortion}
			fixed = append(fixed, side)
			remaining = subtractClamped(target, side.Nutrients())
		}
	}

	best := math.Inf(1)
	for _, p := range withNone(pools[roleProtein]) {
		for _, c := range withNone(pools[roleCarb]) {
			for _, f := range withNone(pools[roleFat]) {
				items := combination(p, c, f)
				if len(items) < 2 {
					continue
				}
				sized := sizePortions(items, remaining, a.opts)
				if sized == nil {
					continue
				}

				meal := Meal{Slot: slot, Portions: append(append([]Portion(nil), fixed...), sized...)}
				dev := Deviation(meal.Totals(), target)
				if dev <= tol {
					return meal, nil
				}
				best = math.Min(best, dev)
			}
		}
	}

	if math.IsInf(best, 1) {
		return Meal{}, &SlotError{Slot: slot, Err: ErrUnreachableTarget}
	}
	return Meal{}, &SlotError{Slot: slot, Deviation: best, Err: ErrUnreachableTarget}
}

// Deviation is the largest relative difference between got and want over
// calories and the three macros. Components with a zero target are skipped.
func Deviation(got, want nutrition.NutrientVector) float64 {
	var worst float64
	pairs := [][2]float64{
		{got.Calories, want.Calories},
		{got.Protein, want.Protein},
		{got.Carbs, want.Carbs},
		{got.Fat, want.Fat},
	}
	for _, p := range pairs {
		if p[1] <= 0 {
			continue
		}
		worst = math.Max(worst, math.Abs(p[0]-p[1])/p[1])
	}
	return worst
}

func sortByShare(recs []food.Record, ro role) {
	sort.SliceStable(recs, func(i, j int) bool {
		si, sj := ro.share(recs[i]), ro.share(recs[j])
		if si != sj {
			return si > sj
		}
		return recs[i].ID < recs[j].ID
	})
}

func shuffledPool(rng *rand.Rand, ranked []food.Record, depth int) []food.Record {
	n := min(depth, len(ranked))
	pool := append([]food.Record(nil), ranked[:n]...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool
}

// withNone appends a nil entry so a role may be left out of a combination.
func withNone(pool []food.Record) []*food.Record {
	out := make([]*food.Record, 0, len(pool)+1)
	for i := range pool {
		out = append(out, &pool[i])
	}
	return append(out, nil)
}

func combination(recs ...*food.Record) []food.Record {
	var out []food.Record
	for _, r := range recs {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func subtractClamped(a, b nutrition.NutrientVector) nutrition.NutrientVector {
	return nutrition.NutrientVector{
		Calories: math.Max(a.Calories-b.Calories, 0),
		Protein:  math.Max(a.Protein-b.Protein, 0),
		Carbs:    math.Max(a.Carbs-b.Carbs, 0),
		Fat:      math.Max(a.Fat-b.Fat, 0),
		Fiber:    math.Max(a.Fiber-b.Fiber, 0),
	}
}
