package mealplan

import (
	"time"

	"github.com/google/uuid"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/internal/domain/shared"
)

// Portion is a catalog record with a whole-gram amount.
type Portion struct {
	Food  food.Record
	Grams int
}

// Nutrients returns the absolute nutrients of the portion.
func (p Portion) Nutrients() nutrition.NutrientVector {
	return p.Food.NutrientsFor(float64(p.Grams))
}

// Meal is the allocation of one slot.
type Meal struct {
	Slot     Slot
	Portions []Portion
}

// Totals sums the meal's portions in order.
func (m Meal) Totals() nutrition.NutrientVector {
	var total nutrition.NutrientVector
	for _, p := range m.Portions {
		total = total.Add(p.Nutrients())
	}
	return total
}

// Plan is one allocation attempt. It is never patched: a rejected plan is
// discarded and a new one is allocated.
type Plan struct {
	shared.AggregateRoot

	id          uuid.UUID
	seed        uint64
	attempt     int
	meals       []Meal
	dailyTotals nutrition.NutrientVector
	accepted    bool
	createdAt   time.Time
}

// NewPlan builds a plan from meals in slot order. Missing slots are filled
// with empty meals so every plan has all four slots.
func NewPlan(meals []Meal, seed uint64, attempt int) *Plan {
	bySlot := make(map[Slot]Meal, len(meals))
	for _, m := range meals {
		bySlot[m.Slot] = m
	}

	ordered := make([]Meal, 0, len(Slots))
	var daily nutrition.NutrientVector
	for _, s := range Slots {
		m, ok := bySlot[s]
		if !ok {
			m = Meal{Slot: s}
		}
		m.Portions = append([]Portion(nil), m.Portions...)
		ordered = append(ordered, m)
		daily = daily.Add(m.Totals())
	}

	return &Plan{
		id:          uuid.New(),
		seed:        seed,
		attempt:     attempt,
		meals:       ordered,
		dailyTotals: daily,
		createdAt:   time.Now().UTC(),
	}
}

// Getters

func (p *Plan) ID() uuid.UUID                         { return p.id }
func (p *Plan) Seed() uint64                          { return p.seed }
func (p *Plan) Attempt() int                          { return p.attempt }
func (p *Plan) DailyTotals() nutrition.NutrientVector { return p.dailyTotals }
func (p *Plan) Accepted() bool                        { return p.accepted }
func (p *Plan) CreatedAt() time.Time                  { return p.createdAt }

// Meals returns the meals in slot order.
func (p *Plan) Meals() []Meal {
	out := make([]Meal, len(p.meals))
	for i, m := range p.meals {
		out[i] = Meal{Slot: m.Slot, Portions: append([]Portion(nil), m.Portions...)}
	}
	return out
}

// Meal returns the meal of one slot.
func (p *Plan) Meal(s Slot) Meal {
	for _, m := range p.meals {
		if m.Slot == s {
			return Meal{Slot: m.Slot, Portions: append([]Portion(nil), m.Portions...)}
		}
	}
	return Meal{Slot: s}
}

// SlotTotals returns the totals of each slot in plan order.
func (p *Plan) SlotTotals() []nutrition.NutrientVector {
	out := make([]nutrition.NutrientVector, len(p.meals))
	for i, m := range p.meals {
		out[i] = m.Totals()
	}
	return out
}

// Accept marks the plan as validated. Only the planner calls this, after the
// validator returned an accepting verdict.
func (p *Plan) Accept(budget nutrition.MacroBudget) {
	if p.accepted {
		return
	}
	p.accepted = true
	p.AddEvent(PlanAcceptedEvent{
		PlanID:   p.id,
		Seed:     p.seed,
		Attempt:  p.attempt,
		Calories: p.dailyTotals.Calories,
		Target:   budget.Calories,
		occurred: time.Now().UTC(),
	})
}

// Equivalent reports whether two plans hold the same portions in the same slots.
func (p *Plan) Equivalent(o *Plan) bool {
	if len(p.meals) != len(o.meals) {
		return false
	}
	for i := range p.meals {
		a, b := p.meals[i], o.meals[i]
		if a.Slot != b.Slot || len(a.Portions) != len(b.Portions) {
			return false
		}
		for j := range a.Portions {
			if a.Portions[j].Food.ID != b.Portions[j].Food.ID || a.Portions[j].Grams != b.Portions[j].Grams {
				return false
			}
		}
	}
	return p.dailyTotals == o.dailyTotals
}
