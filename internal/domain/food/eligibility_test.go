package food_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/test/testutils"
)

func eligibleIDs(c *food.Catalog, p nutrition.Profile) map[string]food.Record {
	out := make(map[string]food.Record)
	for _, r := range c.Eligible(food.ExclusionsFor(p)) {
		out[r.ID] = r
	}
	return out
}

func TestEligible_VeganExcludesAnimalProducts(t *testing.T) {
	catalog := testutils.DefaultCatalog()
	p := testutils.NewProfileBuilder().WithDiet(nutrition.DietVegan).Build()

	got := eligibleIDs(catalog, p)

	require.NotEmpty(t, got)
	for _, id := range []string{"chicken_breast", "salmon", "shrimp", "whole_eggs", "greek_yogurt", "butter", "honey", "cheddar"} {
		assert.NotContains(t, got, id)
	}
	for _, r := range got {
		assert.False(t, r.HasTag(food.TagDairy), r.ID)
		assert.False(t, r.HasTag(food.TagHoney), r.ID)
	}
	assert.Contains(t, got, "tofu_firm")
	assert.Contains(t, got, "lentils")
}

func TestEligible_DietTable(t *testing.T) {
	catalog := testutils.DefaultCatalog()

	tests := []struct {
		diet     nutrition.Diet
		allowed  []string
		excluded []string
	}{
		{nutrition.DietNonVegetarian, []string{"lean_beef", "salmon", "honey"}, nil},
		{nutrition.DietPescatarian, []string{"salmon", "shrimp", "whole_eggs"}, []string{"lean_beef", "chicken_breast"}},
		{nutrition.DietVegetarian, []string{"greek_yogurt", "whole_eggs", "honey"}, []string{"salmon", "turkey_breast"}},
		{nutrition.DietEggetarian, []string{"egg_whites", "cheddar"}, []string{"cod", "pork_tenderloin"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.diet), func(t *testing.T) {
			got := eligibleIDs(catalog, testutils.NewProfileBuilder().WithDiet(tt.diet).Build())
			for _, id := range tt.allowed {
				assert.Contains(t, got, id)
			}
			for _, id := range tt.excluded {
				assert.NotContains(t, got, id)
			}
		})
	}
}

func TestEligible_NutsAliasExcludesTreeNutsAndPeanuts(t *testing.T) {
	catalog := testutils.DefaultCatalog()
	allergens, err := nutrition.ParseAllergens([]string{"nuts"})
	require.NoError(t, err)
	p := testutils.NewProfileBuilder().WithAllergens(allergens...).Build()

	got := eligibleIDs(catalog, p)

	assert.NotContains(t, got, "almonds")
	assert.NotContains(t, got, "walnuts")
	assert.NotContains(t, got, "peanut_butter")
	assert.Contains(t, got, "sunflower_seeds")
}

func TestExclusions_Violations(t *testing.T) {
	p := testutils.NewProfileBuilder().
		WithDiet(nutrition.DietVegan).
		WithRestrictions(nutrition.RestrictionNoDairy).
		Build()
	yogurt, ok := testutils.DefaultCatalog().Lookup("greek_yogurt")
	require.True(t, ok)

	got := food.ExclusionsFor(p).Violations(yogurt)

	assert.Equal(t, []string{"dairy", "dairy"}, got)
}

func TestEligible_IsDeterministic(t *testing.T) {
	catalog := testutils.DefaultCatalog()
	p := testutils.NewProfileFactory(3).Profile()
	e := food.ExclusionsFor(p)

	assert.Equal(t, catalog.Eligible(e), catalog.Eligible(e))
}
