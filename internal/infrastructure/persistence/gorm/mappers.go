package gorm

import (
	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// RecordToModel converts a catalog record to its GORM model
func RecordToModel(r food.Record) FoodModel {
	tags := make(StringSlice, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = string(t)
	}
	allergens := make(StringSlice, len(r.Allergens))
	for i, a := range r.Allergens {
		allergens[i] = string(a)
	}

	return FoodModel{
		ID:         r.ID,
		Name:       r.Name,
		Category:   string(r.Category),
		Calories:   r.Per100g.Calories,
		Protein:    r.Per100g.Protein,
		Carbs:      r.Per100g.Carbs,
		Fat:        r.Per100g.Fat,
		Fiber:      r.Per100g.Fiber,
		Tags:       tags,
		Allergens:  allergens,
		MaxPortion: r.MaxPortion,
	}
}

// ModelToRecord converts a GORM model back to a validated catalog record
func ModelToRecord(m FoodModel) (food.Record, error) {
	r := food.Record{
		ID:       m.ID,
		Name:     m.Name,
		Category: food.Category(m.Category),
		Per100g: nutrition.NutrientVector{
			Calories: m.Calories,
			Protein:  m.Protein,
			Carbs:    m.Carbs,
			Fat:      m.Fat,
			Fiber:    m.Fiber,
		},
		MaxPortion: m.MaxPortion,
	}
	for _, t := range m.Tags {
		r.Tags = append(r.Tags, food.ContentTag(t))
	}
	for _, a := range m.Allergens {
		r.Allergens = append(r.Allergens, nutrition.Allergen(a))
	}
	return r, r.Validate()
}
