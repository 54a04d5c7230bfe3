package onboarding

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// Input is a classified user message.
type Input struct {
	Text         string
	Intents      Intent
	Number       float64
	Goal         nutrition.Goal
	Activity     nutrition.ActivityLevel
	Diet         nutrition.Diet
	Sex          nutrition.Sex
	Restrictions []nutrition.Restriction
}

// Has reports whether the input carries an intent. IntentAny always matches.
func (in Input) Has(i Intent) bool {
	return i == IntentAny || in.Intents&i != 0
}

type keywordGroup[T any] struct {
	value    T
	keywords []string
}

// Keywords are whole words or word sequences. Groups are checked in order, so
// overlapping keywords resolve to the earlier group ("non veg" before "veg",
// "not very active" before "very active").
var goalKeywords = []keywordGroup[nutrition.Goal]{
	{nutrition.GoalWeightLoss, []string{"lose", "losing", "loss", "reduce", "slim", "slimming", "cut", "cutting", "shed"}},
	{nutrition.GoalMuscleGain, []string{"gain", "gaining", "build", "building", "bulk", "bulking", "muscle", "muscles", "grow", "mass"}},
	{nutrition.GoalMaintain, []string{"maintain", "maintaining", "maintenance", "stay", "keep", "stable", "preserve"}},
}

var activityKeywords = []keywordGroup[nutrition.ActivityLevel]{
	{nutrition.ActivityLight, []string{"not very active", "not that active", "not too active", "not so active"}},
	{nutrition.ActivitySedentary, []string{"not active", "sedentary", "desk", "inactive", "none"}},
	{nutrition.ActivityVeryActive, []string{"very active", "very", "athlete", "athletes", "intense", "extreme"}},
	{nutrition.ActivityLight, []string{"lightly", "light", "walk", "walks", "walking"}},
	{nutrition.ActivityModerate, []string{"moderately", "moderate", "regular"}},
	{nutrition.ActivityActive, []string{"active", "daily", "sport", "sports"}},
}

var dietKeywords = []keywordGroup[nutrition.Diet]{
	{nutrition.DietNonVegetarian, []string{"non veg", "nonveg", "non vegetarian", "meat", "everything", "no preference", "omnivore"}},
	{nutrition.DietVegan, []string{"vegan"}},
	{nutrition.DietPescatarian, []string{"pescatarian", "fish", "seafood"}},
	{nutrition.DietEggetarian, []string{"eggetarian", "egg", "eggs"}},
	{nutrition.DietVegetarian, []string{"vegetarian", "veg", "veggie"}},
}

var restrictionWords = map[string]nutrition.Restriction{
	"dairy":   nutrition.RestrictionNoDairy,
	"milk":    nutrition.RestrictionNoDairy,
	"lactose": nutrition.RestrictionNoDairy,
	"nut":     nutrition.RestrictionNoNuts,
	"nuts":    nutrition.RestrictionNoNuts,
	"peanut":  nutrition.RestrictionNoNuts,
	"peanuts": nutrition.RestrictionNoNuts,
	"gluten":  nutrition.RestrictionNoGluten,
	"wheat":   nutrition.RestrictionNoGluten,
	"soy":     nutrition.RestrictionNoSoy,
	"egg":     nutrition.RestrictionNoEggs,
	"eggs":    nutrition.RestrictionNoEggs,
	"fish":    nutrition.RestrictionNoFish,
	"seafood": nutrition.RestrictionNoFish,
}

var (
	resetPhrases   = []string{"reset", "restart", "start over"}
	confirmWords   = []string{"yes", "yeah", "sure", "ok", "okay", "go", "another", "again", "new plan"}
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	wordPattern    = regexp.MustCompile(`[a-z]+`)
	prefixNegation = regexp.MustCompile(`\b(?:no|without|avoid|free of)\s+([a-z]+)`)
	// Allergy phrases may name a list: "allergic to nuts and fish".
	allergyPhrase = regexp.MustCompile(`\b(?:allergic to|allergy to|allergies to|intolerant to|intolerant of|can'?t eat|cannot eat|can not eat)\s+([a-z]+(?:(?:\s*,\s*|\s+and\s+|\s+or\s+)[a-z]+)*)`)
	suffixNegation = regexp.MustCompile(`\b([a-z]+)[\s-]+(?:free|allergy|allergic|intolerant|intolerance)\b`)
)

// Classify extracts every intent a message carries. The state machine decides
// which of them the current state consumes.
func Classify(text string) Input {
	in := Input{Text: text}
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, p := range resetPhrases {
		if strings.Contains(lower, p) {
			in.Intents |= IntentReset
			break
		}
	}

	if m := numberPattern.FindString(lower); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			in.Number = v
			in.Intents |= IntentNumber
		}
	}

	words := wordPattern.FindAllString(lower, -1)
	for _, w := range words {
		switch w {
		case "male", "man", "boy":
			in.Sex = nutrition.SexMale
		case "female", "woman", "girl":
			in.Sex = nutrition.SexFemale
		}
	}

	// Restrictions are stripped before diet matching so "no eggs" does not
	// read as eggetarian and "allergic to fish" not as pescatarian.
	rest := lower
	rest, in.Restrictions = extractRestrictions(rest, allergyPhrase, in.Restrictions)
	rest, in.Restrictions = extractRestrictions(rest, prefixNegation, in.Restrictions)
	rest, in.Restrictions = extractRestrictions(rest, suffixNegation, in.Restrictions)

	if g, ok := match(words, goalKeywords); ok {
		in.Goal = g
		in.Intents |= IntentGoal
	}
	if a, ok := match(words, activityKeywords); ok {
		in.Activity = a
		in.Intents |= IntentActivity
	}
	if d, ok := match(wordPattern.FindAllString(rest, -1), dietKeywords); ok {
		in.Diet = d
		in.Intents |= IntentDiet
	}

	for _, w := range words {
		if slices.Contains(confirmWords, w) {
			in.Intents |= IntentConfirm
			break
		}
	}
	if strings.Contains(lower, "new plan") {
		in.Intents |= IntentConfirm
	}

	return in
}

// match returns the first group with a keyword present as whole words. A
// keyword directly preceded by "not" does not count.
func match[T any](words []string, groups []keywordGroup[T]) (T, bool) {
	for _, g := range groups {
		for _, k := range g.keywords {
			if containsPhrase(words, wordPattern.FindAllString(k, -1)) {
				return g.value, true
			}
		}
	}
	var zero T
	return zero, false
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		if !slices.Equal(words[i:i+len(phrase)], phrase) {
			continue
		}
		if i > 0 && words[i-1] == "not" && phrase[0] != "not" {
			continue
		}
		return true
	}
	return false
}

// extractRestrictions removes every negated food the pattern captures and
// records its restriction. Captured words that name no restriction stay in
// the text so they can still be classified.
func extractRestrictions(text string, pattern *regexp.Regexp, acc []nutrition.Restriction) (string, []nutrition.Restriction) {
	out := pattern.ReplaceAllStringFunc(text, func(phrase string) string {
		sub := pattern.FindStringSubmatch(phrase)
		var keep []string
		found := false
		for _, w := range wordPattern.FindAllString(sub[1], -1) {
			if w == "meat" {
				// "no meat" describes a diet, not an allergen.
				found = true
				continue
			}
			r, ok := restrictionWords[w]
			if !ok {
				keep = append(keep, w)
				continue
			}
			found = true
			if !slices.Contains(acc, r) {
				acc = append(acc, r)
			}
		}
		if !found {
			return phrase
		}
		return " " + strings.Join(keep, " ") + " "
	})
	return out, acc
}
