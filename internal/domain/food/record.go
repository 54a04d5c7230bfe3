package food

import (
	"fmt"
	"slices"

	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// Category groups records by their culinary role.
type Category string

const (
	CategoryProtein   Category = "protein"
	CategoryLegume    Category = "legume"
	CategoryGrain     Category = "grain"
	CategoryFruit     Category = "fruit"
	CategoryVegetable Category = "vegetable"
	CategoryFat       Category = "fat"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryProtein,
	CategoryLegume,
	CategoryGrain,
	CategoryFruit,
	CategoryVegetable,
	CategoryFat,
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

// ContentTag describes what a record contains, for diet compatibility.
type ContentTag string

const (
	TagMeat      ContentTag = "meat"
	TagPoultry   ContentTag = "poultry"
	TagFish      ContentTag = "fish"
	TagShellfish ContentTag = "shellfish"
	TagEgg       ContentTag = "egg"
	TagDairy     ContentTag = "dairy"
	TagHoney     ContentTag = "honey"
	TagPlant     ContentTag = "plant"
)

// Record is an immutable catalog entry. Nutrition is given per 100 g.
type Record struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	Category   Category                 `json:"category"`
	Per100g    nutrition.NutrientVector `json:"per100g"`
	Tags       []ContentTag             `json:"tags"`
	Allergens  []nutrition.Allergen     `json:"allergens"`
	MaxPortion int                      `json:"maxPortion,omitempty"`
}

// Validate checks a record before it enters a catalog.
func (r Record) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	case r.Name == "":
		return fmt.Errorf("%w: %s: name is required", ErrInvalidRecord, r.ID)
	case !r.Category.IsValid():
		return fmt.Errorf("%w: %s: %w %q", ErrInvalidRecord, r.ID, ErrUnknownCategory, r.Category)
	case !r.Per100g.IsNonNegative():
		return fmt.Errorf("%w: %s: nutrients must be non-negative", ErrInvalidRecord, r.ID)
	case r.Per100g.Calories <= 0:
		return fmt.Errorf("%w: %s: calories must be positive", ErrInvalidRecord, r.ID)
	case r.MaxPortion < 0:
		return fmt.Errorf("%w: %s: max portion cannot be negative", ErrInvalidRecord, r.ID)
	}
	for _, a := range r.Allergens {
		if !a.IsValid() {
			return fmt.Errorf("%w: %s: %w %q", ErrInvalidRecord, r.ID, nutrition.ErrUnknownAllergen, a)
		}
	}
	return nil
}

// HasTag reports whether the record carries a content tag.
func (r Record) HasTag(t ContentTag) bool {
	return slices.Contains(r.Tags, t)
}

// HasAllergen reports whether the record carries an allergen tag.
func (r Record) HasAllergen(a nutrition.Allergen) bool {
	return slices.Contains(r.Allergens, a)
}

// NutrientsFor returns the absolute nutrients of a portion.
func (r Record) NutrientsFor(grams float64) nutrition.NutrientVector {
	return r.Per100g.ForGrams(grams)
}
