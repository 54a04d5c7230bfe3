package mealplan

import (
	"errors"
	"fmt"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// Reason is the cause of a rejected plan.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonMacroMismatch       Reason = "MacroMismatch"
	ReasonPortionTooSmall     Reason = "PortionTooSmall"
	ReasonPortionTooLarge     Reason = "PortionTooLarge"
	ReasonAllergenViolation   Reason = "AllergenViolation"
	ReasonInsufficientProtein Reason = "InsufficientProtein"
	ReasonNoEligibleFoods     Reason = "NoEligibleFoods"
	ReasonUnreachableTarget   Reason = "UnreachableTarget"
)

var reasonErrors = map[Reason]error{
	ReasonMacroMismatch:       ErrMacroMismatch,
	ReasonPortionTooSmall:     ErrPortionTooSmall,
	ReasonPortionTooLarge:     ErrPortionTooLarge,
	ReasonAllergenViolation:   ErrAllergenViolation,
	ReasonInsufficientProtein: ErrInsufficientProtein,
	ReasonNoEligibleFoods:     ErrNoEligibleFoods,
	ReasonUnreachableTarget:   ErrUnreachableTarget,
}

// Err returns the sentinel error of a reason.
func (r Reason) Err() error { return reasonErrors[r] }

// ReasonOf maps an allocator or validator error back to its reason.
func ReasonOf(err error) Reason {
	for r, sentinel := range reasonErrors {
		if errors.Is(err, sentinel) {
			return r
		}
	}
	return ReasonNone
}

// Verdict is the validator's decision on a draft plan.
type Verdict struct {
	Accepted bool
	Reason   Reason
	Slot     *Slot
	FoodID   string
	Detail   string
}

// Err converts a rejecting verdict into an error wrapping the reason's sentinel.
func (v Verdict) Err() error {
	if v.Accepted {
		return nil
	}
	if v.Slot != nil {
		return fmt.Errorf("%s: %w: %s", *v.Slot, v.Reason.Err(), v.Detail)
	}
	return fmt.Errorf("%w: %s", v.Reason.Err(), v.Detail)
}

func accept() Verdict { return Verdict{Accepted: true} }

func reject(reason Reason, slot *Slot, foodID, format string, args ...any) Verdict {
	return Verdict{Reason: reason, Slot: slot, FoodID: foodID, Detail: fmt.Sprintf(format, args...)}
}

// ValidatorOptions holds the hard limits checked on every plan.
type ValidatorOptions struct {
	Tolerance          float64
	MinPortion         int
	MaxPortion         int
	MinMainMealProtein float64
}

// Hard portion bounds. Configuration may tighten them but never relax them.
const (
	MinPortionFloor   = 15
	MaxPortionCeiling = 600
)

// DefaultValidatorOptions returns the production limits.
func DefaultValidatorOptions() ValidatorOptions {
	return ValidatorOptions{
		Tolerance:          0.10,
		MinPortion:         MinPortionFloor,
		MaxPortion:         MaxPortionCeiling,
		MinMainMealProtein: 15,
	}
}

// Validator checks draft plans. It re-derives the profile's exclusions itself
// rather than trusting the allocator's filter.
type Validator struct {
	opts ValidatorOptions
}

// NewValidator creates a validator. Portion limits outside the hard bounds
// are clamped to them.
func NewValidator(opts ValidatorOptions) *Validator {
	def := DefaultValidatorOptions()
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.MinPortion < MinPortionFloor {
		opts.MinPortion = MinPortionFloor
	}
	if opts.MaxPortion <= 0 || opts.MaxPortion > MaxPortionCeiling {
		opts.MaxPortion = MaxPortionCeiling
	}
	if opts.MinMainMealProtein <= 0 {
		opts.MinMainMealProtein = def.MinMainMealProtein
	}
	return &Validator{opts: opts}
}

// Options returns the effective limits.
func (v *Validator) Options() ValidatorOptions { return v.opts }

// Validate returns the first failing check, or an accepting verdict. Safety
// checks run before accuracy checks.
func (v *Validator) Validate(plan *Plan, budget nutrition.MacroBudget, profile nutrition.Profile) Verdict {
	meals := plan.Meals()

	forbiddenTags := make(map[food.ContentTag]bool)
	for _, t := range food.DietExcludedTags(profile.Diet) {
		forbiddenTags[t] = true
	}
	forbiddenAllergens := profile.ExcludedAllergens()

	for i := range meals {
		slot := meals[i].Slot
		for _, p := range meals[i].Portions {
			for _, t := range p.Food.Tags {
				if forbiddenTags[t] {
					return reject(ReasonAllergenViolation, &slot, p.Food.ID, "%s contains %s", p.Food.ID, t)
				}
			}
			for _, a := range p.Food.Allergens {
				if _, bad := forbiddenAllergens[a]; bad {
					return reject(ReasonAllergenViolation, &slot, p.Food.ID, "%s contains allergen %s", p.Food.ID, a)
				}
			}
		}
	}

	for i := range meals {
		slot := meals[i].Slot
		for _, p := range meals[i].Portions {
			if p.Grams < v.opts.MinPortion {
				return reject(ReasonPortionTooSmall, &slot, p.Food.ID, "%s is %dg, minimum is %dg", p.Food.ID, p.Grams, v.opts.MinPortion)
			}
			if p.Grams > v.opts.MaxPortion {
				return reject(ReasonPortionTooLarge, &slot, p.Food.ID, "%s is %dg, maximum is %dg", p.Food.ID, p.Grams, v.opts.MaxPortion)
			}
		}
	}

	var summed nutrition.NutrientVector
	for i := range meals {
		slot := meals[i].Slot
		totals := meals[i].Totals()
		if slot.IsMainMeal() && totals.Protein < v.opts.MinMainMealProtein {
			return reject(ReasonInsufficientProtein, &slot, "", "%.1fg protein, minimum is %.0fg", totals.Protein, v.opts.MinMainMealProtein)
		}
		summed = summed.Add(totals)
	}

	daily := plan.DailyTotals()
	if summed != daily {
		return reject(ReasonMacroMismatch, nil, "", "slot totals do not add up to daily totals")
	}

	target := budget.Vector()
	checks := []struct {
		name      string
		got, want float64
	}{
		{"calories", daily.Calories, target.Calories},
		{"protein", daily.Protein, target.Protein},
		{"carbs", daily.Carbs, target.Carbs},
		{"fat", daily.Fat, target.Fat},
	}
	for _, c := range checks {
		if c.want <= 0 {
			continue
		}
		if dev := (c.got - c.want) / c.want; dev > v.opts.Tolerance || dev < -v.opts.Tolerance {
			return reject(ReasonMacroMismatch, nil, "", "%s %.0f is %+.1f%% from target %.0f", c.name, c.got, dev*100, c.want)
		}
	}

	return accept()
}
