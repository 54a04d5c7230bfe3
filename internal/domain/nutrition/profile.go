package nutrition

import (
	"fmt"
	"math"
	"strings"
)

// Sex is the biological sex category used by the BMR formula.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// ActivityLevel is one of a fixed ordered set of activity levels.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// ActivityLevels lists activity levels from least to most active.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLight,
	ActivityModerate,
	ActivityActive,
	ActivityVeryActive,
}

// Goal is the fitness goal driving the calorie adjustment and macro split.
type Goal string

const (
	GoalWeightLoss Goal = "weight_loss"
	GoalMaintain   Goal = "maintain"
	GoalMuscleGain Goal = "muscle_gain"
)

// Diet is the dietary preference of a profile.
type Diet string

const (
	DietNonVegetarian Diet = "non_vegetarian"
	DietVegetarian    Diet = "vegetarian"
	DietEggetarian    Diet = "eggetarian"
	DietPescatarian   Diet = "pescatarian"
	DietVegan         Diet = "vegan"
)

// Allergen is an allergen tag shared by profiles and catalog records.
type Allergen string

const (
	AllergenDairy     Allergen = "dairy"
	AllergenEgg       Allergen = "egg"
	AllergenFish      Allergen = "fish"
	AllergenShellfish Allergen = "shellfish"
	AllergenTreeNuts  Allergen = "tree_nuts"
	AllergenPeanuts   Allergen = "peanuts"
	AllergenSoy       Allergen = "soy"
	AllergenGluten    Allergen = "gluten"
	AllergenSesame    Allergen = "sesame"
)

// Restriction is a dietary restriction that excludes one or more allergens.
type Restriction string

const (
	RestrictionNoDairy  Restriction = "no_dairy"
	RestrictionNoNuts   Restriction = "no_nuts"
	RestrictionNoGluten Restriction = "no_gluten"
	RestrictionNoSoy    Restriction = "no_soy"
	RestrictionNoEggs   Restriction = "no_eggs"
	RestrictionNoFish   Restriction = "no_fish"
)

var restrictionAllergens = map[Restriction][]Allergen{
	RestrictionNoDairy:  {AllergenDairy},
	RestrictionNoNuts:   {AllergenTreeNuts, AllergenPeanuts},
	RestrictionNoGluten: {AllergenGluten},
	RestrictionNoSoy:    {AllergenSoy},
	RestrictionNoEggs:   {AllergenEgg},
	RestrictionNoFish:   {AllergenFish, AllergenShellfish},
}

// Allergens returns the allergen tags a restriction excludes.
func (r Restriction) Allergens() []Allergen {
	return append([]Allergen(nil), restrictionAllergens[r]...)
}

// IsValid reports whether r is a known restriction.
func (r Restriction) IsValid() bool {
	_, ok := restrictionAllergens[r]
	return ok
}

// IsValid reports whether a is a known allergen.
func (a Allergen) IsValid() bool {
	switch a {
	case AllergenDairy, AllergenEgg, AllergenFish, AllergenShellfish, AllergenTreeNuts,
		AllergenPeanuts, AllergenSoy, AllergenGluten, AllergenSesame:
		return true
	}
	return false
}

// IsValid reports whether s is a known sex category.
func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale || s == SexOther
}

// IsValid reports whether a is a known activity level.
func (a ActivityLevel) IsValid() bool {
	_, ok := activityMultipliers[a]
	return ok
}

// IsValid reports whether g is a known goal.
func (g Goal) IsValid() bool {
	_, ok := macroSplits[g]
	return ok
}

// IsValid reports whether d is a known dietary preference.
func (d Diet) IsValid() bool {
	switch d {
	case DietNonVegetarian, DietVegetarian, DietEggetarian, DietPescatarian, DietVegan:
		return true
	}
	return false
}

// Profile is the physiological input to the engine. It is passed by value and
// never mutated.
type Profile struct {
	Age          int
	Sex          Sex
	HeightCM     float64
	WeightKG     float64
	Activity     ActivityLevel
	Goal         Goal
	Diet         Diet
	Allergens    []Allergen
	Restrictions []Restriction
}

// Validate checks every field and wraps ErrInvalidProfile on the first failure.
func (p Profile) Validate() error {
	switch {
	case p.Age < 0 || p.Age > 130:
		return fmt.Errorf("%w: age %d out of range", ErrInvalidProfile, p.Age)
	case !positiveFinite(p.WeightKG):
		return fmt.Errorf("%w: weight must be a positive number, got %v", ErrInvalidProfile, p.WeightKG)
	case !positiveFinite(p.HeightCM):
		return fmt.Errorf("%w: height must be a positive number, got %v", ErrInvalidProfile, p.HeightCM)
	case !p.Sex.IsValid():
		return fmt.Errorf("%w: %w %q", ErrInvalidProfile, ErrUnknownSex, p.Sex)
	case !p.Activity.IsValid():
		return fmt.Errorf("%w: %w %q", ErrInvalidProfile, ErrUnknownActivity, p.Activity)
	case !p.Goal.IsValid():
		return fmt.Errorf("%w: %w %q", ErrInvalidProfile, ErrUnknownGoal, p.Goal)
	case !p.Diet.IsValid():
		return fmt.Errorf("%w: %w %q", ErrInvalidProfile, ErrUnknownDiet, p.Diet)
	}
	for _, a := range p.Allergens {
		if !a.IsValid() {
			return fmt.Errorf("%w: %w %q", ErrInvalidProfile, ErrUnknownAllergen, a)
		}
	}
	for _, r := range p.Restrictions {
		if !r.IsValid() {
			return fmt.Errorf("%w: %w %q", ErrInvalidProfile, ErrUnknownRestriction, r)
		}
	}
	return nil
}

// ExcludedAllergens is the union of the profile's allergens and the allergens
// implied by its restrictions.
func (p Profile) ExcludedAllergens() map[Allergen]struct{} {
	out := make(map[Allergen]struct{}, len(p.Allergens)+len(p.Restrictions))
	for _, a := range p.Allergens {
		out[a] = struct{}{}
	}
	for _, r := range p.Restrictions {
		for _, a := range restrictionAllergens[r] {
			out[a] = struct{}{}
		}
	}
	return out
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return s
}

// ParseSex parses a sex category. "m"/"man" and "f"/"woman" are accepted.
func ParseSex(s string) (Sex, error) {
	switch normalize(s) {
	case "male", "m", "man":
		return SexMale, nil
	case "female", "f", "woman":
		return SexFemale, nil
	case "other", "non_binary", "nonbinary", "unspecified":
		return SexOther, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSex, s)
}

// ParseActivityLevel parses an activity level.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	switch a := ActivityLevel(normalize(s)); a {
	case "lightly_active":
		return ActivityLight, nil
	case "moderately_active":
		return ActivityModerate, nil
	case "extra_active", "veryactive":
		return ActivityVeryActive, nil
	default:
		if a.IsValid() {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownActivity, s)
}

// ParseGoal parses a goal, accepting the maintenance and weight_gain aliases.
func ParseGoal(s string) (Goal, error) {
	switch g := Goal(normalize(s)); g {
	case "maintenance":
		return GoalMaintain, nil
	case "weight_gain":
		return GoalMuscleGain, nil
	default:
		if g.IsValid() {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGoal, s)
}

// ParseDiet parses a dietary preference.
func ParseDiet(s string) (Diet, error) {
	switch d := Diet(normalize(s)); d {
	case "", "non_veg", "nonveg", "omnivore":
		return DietNonVegetarian, nil
	case "veg":
		return DietVegetarian, nil
	case "egg", "ovo_vegetarian":
		return DietEggetarian, nil
	default:
		if d.IsValid() {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDiet, s)
}

// ParseAllergens parses allergen tags. The "nuts" alias expands to both tree
// nuts and peanuts.
func ParseAllergens(values []string) ([]Allergen, error) {
	var out []Allergen
	for _, v := range values {
		switch a := Allergen(normalize(v)); a {
		case "nuts":
			out = append(out, AllergenTreeNuts, AllergenPeanuts)
		case "eggs":
			out = append(out, AllergenEgg)
		case "milk", "lactose":
			out = append(out, AllergenDairy)
		case "peanut":
			out = append(out, AllergenPeanuts)
		case "wheat":
			out = append(out, AllergenGluten)
		default:
			if !a.IsValid() {
				return nil, fmt.Errorf("%w: %q", ErrUnknownAllergen, v)
			}
			out = append(out, a)
		}
	}
	return out, nil
}

// ParseRestrictions parses dietary restriction tags.
func ParseRestrictions(values []string) ([]Restriction, error) {
	out := make([]Restriction, 0, len(values))
	for _, v := range values {
		r := Restriction(normalize(v))
		if !r.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRestriction, v)
		}
		out = append(out, r)
	}
	return out, nil
}

// ProfileInput is the textual form of a profile sent by API clients, tool
// callers and the CLI. An empty sex means other.
type ProfileInput struct {
	Age          int      `json:"age"`
	Sex          string   `json:"sex"`
	HeightCM     float64  `json:"heightCm"`
	WeightKG     float64  `json:"weightKg"`
	Activity     string   `json:"activity"`
	Goal         string   `json:"goal"`
	Diet         string   `json:"diet"`
	Allergens    []string `json:"allergens,omitempty"`
	Restrictions []string `json:"restrictions,omitempty"`
}

// Profile parses every field and validates the result. All failures wrap
// ErrInvalidProfile.
func (in ProfileInput) Profile() (Profile, error) {
	sex := SexOther
	if strings.TrimSpace(in.Sex) != "" {
		s, err := ParseSex(in.Sex)
		if err != nil {
			return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
		}
		sex = s
	}

	activity, err := ParseActivityLevel(in.Activity)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	goal, err := ParseGoal(in.Goal)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	diet, err := ParseDiet(in.Diet)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	allergens, err := ParseAllergens(in.Allergens)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	restrictions, err := ParseRestrictions(in.Restrictions)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	p := Profile{
		Age:          in.Age,
		Sex:          sex,
		HeightCM:     in.HeightCM,
		WeightKG:     in.WeightKG,
		Activity:     activity,
		Goal:         goal,
		Diet:         diet,
		Allergens:    allergens,
		Restrictions: restrictions,
	}
	return p, p.Validate()
}
