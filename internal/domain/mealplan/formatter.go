package mealplan

import (
	"fmt"
	"strings"

	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// Describe renders a meal as a sentence, e.g.
// "Have 150g grilled chicken breast, 200g cooked brown rice, and 10g olive oil."
func Describe(m Meal) string {
	parts := make([]string, 0, len(m.Portions))
	for _, p := range m.Portions {
		parts = append(parts, fmt.Sprintf("%dg %s", p.Grams, strings.ToLower(p.Food.Name)))
	}

	switch len(parts) {
	case 0:
		return "Nothing planned."
	case 1:
		return "Have " + parts[0] + "."
	case 2:
		return "Have " + parts[0] + " and " + parts[1] + "."
	default:
		return "Have " + strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1] + "."
	}
}

var goalPhrases = map[nutrition.Goal]string{
	nutrition.GoalWeightLoss: "weight loss goal",
	nutrition.GoalMuscleGain: "muscle building goal",
	nutrition.GoalMaintain:   "maintenance goal",
}

// Summary renders an accepted plan as the message shown to the user.
func Summary(p *Plan, budget nutrition.MacroBudget, goal nutrition.Goal) string {
	phrase, ok := goalPhrases[goal]
	if !ok {
		phrase = "fitness goal"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on your %.0f-calorie %s, here's your daily plan:\n\n", budget.Calories, phrase)
	for _, m := range p.Meals() {
		fmt.Fprintf(&b, "%s: %s\n", m.Slot.Title(), Describe(m))
	}

	t := p.DailyTotals()
	fmt.Fprintf(&b, "\nDaily total: %.0f calories | %.0fg protein | %.0fg carbs | %.0fg fat\n\n",
		t.Calories, t.Protein, t.Carbs, t.Fat)

	switch goal {
	case nutrition.GoalWeightLoss:
		fmt.Fprintf(&b, "Your %.0fg protein will keep you full and support fat loss!", t.Protein)
	case nutrition.GoalMuscleGain:
		fmt.Fprintf(&b, "Your %.0fg carbs will fuel your workouts and muscle growth!", t.Carbs)
	default:
		b.WriteString("This balanced plan will help you maintain your current fitness level!")
	}
	return b.String()
}

var guidance = map[Reason]string{
	ReasonNoEligibleFoods:     "Your restrictions leave too few foods to build meals. Try relaxing a dietary restriction or allergen filter.",
	ReasonUnreachableTarget:   "The available foods cannot match your targets closely enough. Try relaxing dietary restrictions or choosing a less strict diet.",
	ReasonMacroMismatch:       "The generated meals kept missing your macro targets. Try relaxing dietary restrictions.",
	ReasonPortionTooSmall:     "Some foods would need impractically small portions. Try relaxing dietary restrictions so more foods are available.",
	ReasonPortionTooLarge:     "Some foods would need impractically large portions. Try relaxing dietary restrictions so denser foods are available.",
	ReasonAllergenViolation:   "A food conflicting with your allergens was selected and the plan was discarded. Please check your allergen list and try again.",
	ReasonInsufficientProtein: "Meals could not reach the minimum protein per meal. Try allowing more protein sources such as eggs, dairy, soy or legumes.",
}

// FailureGuidance returns the remediation shown when plan generation fails.
func FailureGuidance(r Reason) string {
	if g, ok := guidance[r]; ok {
		return g
	}
	return "We could not build a safe plan for this profile. Try relaxing dietary restrictions."
}
