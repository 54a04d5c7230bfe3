package mealplan

import (
	"encoding/json"
	"fmt"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// WirePortion is the serialized form of a portion.
type WirePortion struct {
	FoodID string `json:"foodId"`
	Grams  int    `json:"grams"`
}

// WirePlan is the interchange shape of a plan shared with collaborators.
type WirePlan struct {
	DailyTotals nutrition.NutrientVector `json:"dailyTotals"`
	Slots       map[Slot][]WirePortion   `json:"slots"`
}

// ToWire converts a plan to its interchange shape. Every slot is present.
func ToWire(p *Plan) WirePlan {
	w := WirePlan{
		DailyTotals: p.DailyTotals(),
		Slots:       make(map[Slot][]WirePortion, len(Slots)),
	}
	for _, m := range p.Meals() {
		portions := make([]WirePortion, 0, len(m.Portions))
		for _, pt := range m.Portions {
			portions = append(portions, WirePortion{FoodID: pt.Food.ID, Grams: pt.Grams})
		}
		w.Slots[m.Slot] = portions
	}
	return w
}

// Encode serializes a plan to JSON.
func Encode(p *Plan) ([]byte, error) {
	return json.Marshal(ToWire(p))
}

// FromWire resolves portions against the catalog and rebuilds the plan. The
// recomputed totals must equal the encoded ones exactly.
func FromWire(w WirePlan, catalog *food.Catalog) (*Plan, error) {
	meals := make([]Meal, 0, len(w.Slots))
	for slot, portions := range w.Slots {
		if !slot.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
		}
		meal := Meal{Slot: slot}
		for _, wp := range portions {
			if wp.Grams <= 0 {
				return nil, fmt.Errorf("%w: %s in %s has %dg", ErrInvalidGrams, wp.FoodID, slot, wp.Grams)
			}
			rec, err := catalog.Get(wp.FoodID)
			if err != nil {
				return nil, err
			}
			meal.Portions = append(meal.Portions, Portion{Food: rec, Grams: wp.Grams})
		}
		meals = append(meals, meal)
	}

	plan := NewPlan(meals, 0, 0)
	if plan.DailyTotals() != w.DailyTotals {
		return nil, ErrTotalsMismatch
	}
	return plan, nil
}

// Decode parses JSON produced by Encode.
func Decode(data []byte, catalog *food.Catalog) (*Plan, error) {
	var w WirePlan
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	return FromWire(w, catalog)
}
