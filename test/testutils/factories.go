// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// ProfileFactory generates valid profiles from a seeded faker so failures
// can be replayed.
type ProfileFactory struct {
	faker *gofakeit.Faker
}

// NewProfileFactory creates a new profile factory with seeded faker
func NewProfileFactory(seed int64) *ProfileFactory {
	return &ProfileFactory{
		faker: gofakeit.New(seed),
	}
}

var (
	sexes = []nutrition.Sex{nutrition.SexMale, nutrition.SexFemale, nutrition.SexOther}
	goals = []nutrition.Goal{nutrition.GoalWeightLoss, nutrition.GoalMaintain, nutrition.GoalMuscleGain}
	diets = []nutrition.Diet{
		nutrition.DietNonVegetarian,
		nutrition.DietVegetarian,
		nutrition.DietEggetarian,
		nutrition.DietPescatarian,
		nutrition.DietVegan,
	}
	restrictions = []nutrition.Restriction{
		nutrition.RestrictionNoDairy,
		nutrition.RestrictionNoNuts,
		nutrition.RestrictionNoGluten,
		nutrition.RestrictionNoSoy,
		nutrition.RestrictionNoEggs,
		nutrition.RestrictionNoFish,
	}
)

// Profile returns a random valid profile with up to one restriction.
func (f *ProfileFactory) Profile() nutrition.Profile {
	p := nutrition.Profile{
		Age:      f.faker.Number(16, 80),
		Sex:      sexes[f.faker.Number(0, len(sexes)-1)],
		HeightCM: f.faker.Float64Range(145, 205),
		WeightKG: f.faker.Float64Range(42, 140),
		Activity: nutrition.ActivityLevels[f.faker.Number(0, len(nutrition.ActivityLevels)-1)],
		Goal:     goals[f.faker.Number(0, len(goals)-1)],
		Diet:     diets[f.faker.Number(0, len(diets)-1)],
	}
	if f.faker.Bool() {
		p.Restrictions = []nutrition.Restriction{restrictions[f.faker.Number(0, len(restrictions)-1)]}
	}
	return p
}

// Extreme returns a valid profile at the edges of the physiological range.
func (f *ProfileFactory) Extreme() nutrition.Profile {
	p := f.Profile()
	p.HeightCM = f.faker.Float64Range(50, 248)
	p.WeightKG = f.faker.Float64Range(1, 400)
	p.Age = f.faker.Number(0, 130)
	return p
}

// ProfileBuilder provides a fluent interface for building test profiles
type ProfileBuilder struct {
	profile nutrition.Profile
}

// NewProfileBuilder starts from a 30 year old, 70 kg, 175 cm male with a
// moderate activity level who wants to maintain weight and eats everything.
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{profile: nutrition.Profile{
		Age:      30,
		Sex:      nutrition.SexMale,
		HeightCM: 175,
		WeightKG: 70,
		Activity: nutrition.ActivityModerate,
		Goal:     nutrition.GoalMaintain,
		Diet:     nutrition.DietNonVegetarian,
	}}
}

func (b *ProfileBuilder) WithAge(age int) *ProfileBuilder {
	b.profile.Age = age
	return b
}

func (b *ProfileBuilder) WithSex(s nutrition.Sex) *ProfileBuilder {
	b.profile.Sex = s
	return b
}

func (b *ProfileBuilder) WithHeight(cm float64) *ProfileBuilder {
	b.profile.HeightCM = cm
	return b
}

func (b *ProfileBuilder) WithWeight(kg float64) *ProfileBuilder {
	b.profile.WeightKG = kg
	return b
}

func (b *ProfileBuilder) WithActivity(a nutrition.ActivityLevel) *ProfileBuilder {
	b.profile.Activity = a
	return b
}

func (b *ProfileBuilder) WithGoal(g nutrition.Goal) *ProfileBuilder {
	b.profile.Goal = g
	return b
}

func (b *ProfileBuilder) WithDiet(d nutrition.Diet) *ProfileBuilder {
	b.profile.Diet = d
	return b
}

func (b *ProfileBuilder) WithAllergens(a ...nutrition.Allergen) *ProfileBuilder {
	b.profile.Allergens = a
	return b
}

func (b *ProfileBuilder) WithRestrictions(r ...nutrition.Restriction) *ProfileBuilder {
	b.profile.Restrictions = r
	return b
}

// Build returns the profile
func (b *ProfileBuilder) Build() nutrition.Profile {
	return b.profile
}

// RecordBuilder builds catalog records whose calories follow the Atwater factors.
type RecordBuilder struct {
	record food.Record
}

// NewRecordBuilder creates a plant-based record in the given category.
func NewRecordBuilder(id string, category food.Category) *RecordBuilder {
	return &RecordBuilder{record: food.Record{
		ID:       id,
		Name:     id,
		Category: category,
		Tags:     []food.ContentTag{food.TagPlant},
	}}
}

// WithMacros sets per-100g macros and derives calories.
func (b *RecordBuilder) WithMacros(protein, carbs, fat float64) *RecordBuilder {
	b.record.Per100g = nutrition.NutrientVector{
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
		Calories: protein*4 + carbs*4 + fat*9,
	}
	return b
}

func (b *RecordBuilder) WithTags(tags ...food.ContentTag) *RecordBuilder {
	b.record.Tags = tags
	return b
}

func (b *RecordBuilder) WithAllergens(a ...nutrition.Allergen) *RecordBuilder {
	b.record.Allergens = a
	return b
}

func (b *RecordBuilder) WithMaxPortion(grams int) *RecordBuilder {
	b.record.MaxPortion = grams
	return b
}

// Build returns the record
func (b *RecordBuilder) Build() food.Record {
	return b.record
}

// DefaultCatalog loads the embedded catalog and panics on failure. Tests only.
func DefaultCatalog() *food.Catalog {
	c, err := food.DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}
