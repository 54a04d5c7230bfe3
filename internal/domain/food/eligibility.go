package food

import (
	"sort"

	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

var dietExclusions = map[nutrition.Diet][]ContentTag{
	nutrition.DietNonVegetarian: nil,
	nutrition.DietPescatarian:   {TagMeat, TagPoultry},
	nutrition.DietVegetarian:    {TagMeat, TagPoultry, TagFish, TagShellfish},
	nutrition.DietEggetarian:    {TagMeat, TagPoultry, TagFish, TagShellfish},
	nutrition.DietVegan:         {TagMeat, TagPoultry, TagFish, TagShellfish, TagEgg, TagDairy, TagHoney},
}

// DietExcludedTags returns the content tags a diet rules out.
func DietExcludedTags(d nutrition.Diet) []ContentTag {
	return append([]ContentTag(nil), dietExclusions[d]...)
}

// Exclusions is the set of content tags and allergens a profile rules out.
type Exclusions struct {
	Tags      map[ContentTag]struct{}
	Allergens map[nutrition.Allergen]struct{}
}

// ExclusionsFor derives exclusions from a profile's diet, allergens and
// restrictions. The result depends only on the profile.
func ExclusionsFor(p nutrition.Profile) Exclusions {
	tags := make(map[ContentTag]struct{})
	for _, t := range dietExclusions[p.Diet] {
		tags[t] = struct{}{}
	}
	return Exclusions{Tags: tags, Allergens: p.ExcludedAllergens()}
}

// Permits reports whether a record is eligible.
func (e Exclusions) Permits(r Record) bool {
	return len(e.Violations(r)) == 0
}

// Violations lists the excluded tags and allergens a record carries, sorted.
func (e Exclusions) Violations(r Record) []string {
	var out []string
	for _, t := range r.Tags {
		if _, ok := e.Tags[t]; ok {
			out = append(out, string(t))
		}
	}
	for _, a := range r.Allergens {
		if _, ok := e.Allergens[a]; ok {
			out = append(out, string(a))
		}
	}
	sort.Strings(out)
	return out
}

// Eligible returns the catalog records a profile may eat, in ID order.
func (c *Catalog) Eligible(e Exclusions) []Record {
	return c.Filter(e.Permits)
}
