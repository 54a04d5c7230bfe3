package mealplan

import (
	"fmt"
	"strings"

	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// Slot is one of the four daily meal periods.
type Slot string

const (
	Breakfast Slot = "breakfast"
	Lunch     Slot = "lunch"
	Dinner    Slot = "dinner"
	Snack     Slot = "snack"
)

// Slots lists the meal slots in plan order.
var Slots = []Slot{Breakfast, Lunch, Dinner, Snack}

// Shares of the daily budget per slot. They sum to 1.
var slotShares = map[Slot]float64{
	Breakfast: 0.25,
	Lunch:     0.32,
	Dinner:    0.30,
	Snack:     0.13,
}

// Share returns the slot's fraction of the daily budget.
func (s Slot) Share() float64 { return slotShares[s] }

// IsValid reports whether s is a known slot.
func (s Slot) IsValid() bool {
	_, ok := slotShares[s]
	return ok
}

// IsMainMeal is true for breakfast, lunch and dinner.
func (s Slot) IsMainMeal() bool { return s == Breakfast || s == Lunch || s == Dinner }

// Title returns the display name of the slot.
func (s Slot) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseSlot parses a slot name.
func ParseSlot(v string) (Slot, error) {
	s := Slot(strings.ToLower(strings.TrimSpace(v)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, v)
	}
	return s, nil
}

// SlotTarget is the slot's share of the daily budget.
func SlotTarget(b nutrition.MacroBudget, s Slot) nutrition.NutrientVector {
	return b.Vector().Scale(s.Share())
}
