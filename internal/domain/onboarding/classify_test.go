package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

func TestClassify_Keywords(t *testing.T) {
	tests := []struct {
		text     string
		goal     nutrition.Goal
		activity nutrition.ActivityLevel
		diet     nutrition.Diet
	}{
		{text: "help me slim down", goal: nutrition.GoalWeightLoss},
		{text: "bulk up", goal: nutrition.GoalMuscleGain},
		{text: "just keep things stable", goal: nutrition.GoalMaintain},
		{text: "I have a desk job", activity: nutrition.ActivitySedentary},
		{text: "pretty inactive honestly", activity: nutrition.ActivitySedentary},
		{text: "I walk to work", activity: nutrition.ActivityLight},
		{text: "very active athlete", activity: nutrition.ActivityVeryActive},
		{text: "sport most days", activity: nutrition.ActivityActive},
		{text: "non-veg", diet: nutrition.DietNonVegetarian},
		{text: "I eat everything", diet: nutrition.DietNonVegetarian},
		{text: "strictly vegan", diet: nutrition.DietVegan},
		{text: "I eat fish but no meat", diet: nutrition.DietPescatarian},
		{text: "veg", diet: nutrition.DietVegetarian},
		{text: "eggetarian", diet: nutrition.DietEggetarian},
		{text: "I walk every day", activity: nutrition.ActivityLight},
		{text: "light, I walk every evening", activity: nutrition.ActivityLight},
		{text: "not very active", activity: nutrition.ActivityLight},
		{text: "I'm not active at all", activity: nutrition.ActivitySedentary},
		{text: "I'm gaining weight on purpose", goal: nutrition.GoalMuscleGain},
		{text: "I'd like to start losing fat", goal: nutrition.GoalWeightLoss},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := Classify(tt.text)
			if tt.goal != "" {
				assert.True(t, in.Has(IntentGoal))
				assert.Equal(t, tt.goal, in.Goal)
			}
			if tt.activity != "" {
				assert.True(t, in.Has(IntentActivity))
				assert.Equal(t, tt.activity, in.Activity)
			}
			if tt.diet != "" {
				assert.True(t, in.Has(IntentDiet))
				assert.Equal(t, tt.diet, in.Diet)
			}
		})
	}
}

func TestClassify_Restrictions(t *testing.T) {
	in := Classify("Vegetarian, gluten-free, with a nut allergy and no eggs")

	assert.Equal(t, nutrition.DietVegetarian, in.Diet)
	assert.ElementsMatch(t, []nutrition.Restriction{
		nutrition.RestrictionNoGluten,
		nutrition.RestrictionNoNuts,
		nutrition.RestrictionNoEggs,
	}, in.Restrictions)
}

func TestClassify_AllergyPhrases(t *testing.T) {
	tests := []struct {
		text         string
		diet         nutrition.Diet
		restrictions []nutrition.Restriction
	}{
		{text: "I'm allergic to fish", restrictions: []nutrition.Restriction{nutrition.RestrictionNoFish}},
		{text: "vegetarian, allergic to peanuts", diet: nutrition.DietVegetarian, restrictions: []nutrition.Restriction{nutrition.RestrictionNoNuts}},
		{text: "I can't eat gluten", restrictions: []nutrition.Restriction{nutrition.RestrictionNoGluten}},
		{text: "intolerant to lactose, vegan otherwise", diet: nutrition.DietVegan, restrictions: []nutrition.Restriction{nutrition.RestrictionNoDairy}},
		{text: "allergic to nuts and seafood, vegetarian", diet: nutrition.DietVegetarian, restrictions: []nutrition.Restriction{nutrition.RestrictionNoNuts, nutrition.RestrictionNoFish}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := Classify(tt.text)
			assert.ElementsMatch(t, tt.restrictions, in.Restrictions)
			if tt.diet == "" {
				assert.False(t, in.Has(IntentDiet), "allergen must not be read as a diet, got %q", in.Diet)
				return
			}
			assert.Equal(t, tt.diet, in.Diet)
		})
	}
}

func TestClassify_WholeWordsOnly(t *testing.T) {
	in := Classify("I walk every day")
	assert.NotEqual(t, nutrition.ActivityVeryActive, in.Activity)

	in = Classify("not very active")
	assert.NotEqual(t, nutrition.ActivityVeryActive, in.Activity)

	in = Classify("again")
	assert.False(t, in.Has(IntentGoal))
	assert.True(t, in.Has(IntentConfirm))

	in = Classify("I'm not vegan")
	assert.False(t, in.Has(IntentDiet))
}

func TestClassify_NumbersAndSex(t *testing.T) {
	in := Classify("I'm a woman, 62.5kg")

	assert.True(t, in.Has(IntentNumber))
	assert.Equal(t, 62.5, in.Number)
	assert.Equal(t, nutrition.SexFemale, in.Sex)

	in = Classify("seventy")
	assert.False(t, in.Has(IntentNumber))
	assert.True(t, in.Has(IntentAny))
}

func TestClassify_Reset(t *testing.T) {
	assert.True(t, Classify("RESET").Has(IntentReset))
	assert.True(t, Classify("let's start over").Has(IntentReset))
	assert.False(t, Classify("hello").Has(IntentReset))
}
