// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package constraints

import (
	"strings"
	"unicode"
)

// Diet is a named set of forbidden ingredient terms. Terms and exemptions
// are matched on whole words; a trailing "s" or "es" plural also matches.
type Diet struct {
	Name      string
	Forbidden []string
	// Exempt phrases are removed from the ingredient before matching, so
	// "peanut butter" does not count as dairy.
	Exempt []string
}

var (
	meats = []string{
		"beef", "pork", "chicken", "turkey", "lamb", "mutton", "veal", "venison", "duck", "goose",
		"bacon", "ham", "sausage", "pepperoni", "salami", "prosciutto", "chorizo", "pancetta",
		"meat", "steak", "mince", "lard", "gelatin", "gelatine",
	}
	seafood = []string{
		"fish", "salmon", "tuna", "cod", "tilapia", "trout", "halibut", "anchovy", "anchovies",
		"sardine", "shrimp", "prawn", "crab", "lobster", "clam", "mussel", "oyster", "scallop",
		"squid", "octopus", "fish sauce", "worcestershire sauce",
	}
	dairy = []string{
		"milk", "butter", "cheese", "cream", "yogurt", "yoghurt", "ghee", "whey", "casein",
		"buttermilk", "parmesan", "mozzarella", "cheddar", "ricotta", "mascarpone", "custard",
		"half-and-half", "sour cream", "ice cream",
	}
	dairyExempt = []string{
		"coconut milk", "almond milk", "soy milk", "oat milk", "rice milk", "cashew milk",
		"peanut butter", "almond butter", "cashew butter", "cocoa butter", "apple butter",
		"coconut cream", "cream of tartar", "vegan butter", "vegan cheese",
	}
	gluten = []string{
		"wheat", "gluten", "flour", "barley", "rye", "bread", "breadcrumbs", "pasta", "spaghetti", "noodle",
		"macaroni", "couscous", "semolina", "bulgur", "farro", "spelt", "seitan", "soy sauce",
		"beer", "cracker", "tortilla", "crouton", "biscuit", "pastry", "pie crust",
	}
	glutenExempt = []string{
		"rice flour", "almond flour", "coconut flour", "corn flour", "tapioca flour", "potato flour",
		"chickpea flour", "buckwheat flour", "gluten-free flour", "rice noodle", "corn tortilla",
		"gluten-free bread", "gluten-free pasta", "tamari soy sauce",
	}
	nuts = []string{
		"almond", "walnut", "pecan", "cashew", "pistachio", "hazelnut", "macadamia",
		"peanut", "pine nut", "brazil nut", "nut",
	}
	nutExempt = []string{"nutmeg", "coconut", "butternut", "water chestnut"}
)

// DefaultDiets returns the built-in diet catalog keyed by normalized tag.
func DefaultDiets() map[string]Diet {
	join := func(lists ...[]string) []string {
		var out []string
		for _, l := range lists {
			out = append(out, l...)
		}
		return out
	}
	diets := []Diet{
		{Name: "vegetarian", Forbidden: join(meats, seafood)},
		{Name: "pescatarian", Forbidden: meats},
		{
			Name:      "vegan",
			Forbidden: join(meats, seafood, dairy, []string{"egg", "honey", "mayonnaise"}),
			Exempt:    join(dairyExempt, []string{"eggplant", "egg-free"}),
		},
		{Name: "dairy-free", Forbidden: dairy, Exempt: dairyExempt},
		{Name: "gluten-free", Forbidden: gluten, Exempt: glutenExempt},
		{Name: "nut-free", Forbidden: nuts, Exempt: nutExempt},
	}
	out := make(map[string]Diet, len(diets))
	for _, d := range diets {
		out[d.Name] = d
	}
	return out
}

// NormalizeTag lower-cases a diet tag and joins words with hyphens, so
// "Gluten Free" and "gluten_free" both become "gluten-free".
func NormalizeTag(tag string) string {
	fields := strings.FieldsFunc(strings.ToLower(tag), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})
	return strings.Join(fields, "-")
}

// words returns the ingredient as " w1 w2 ... " for whole-word matching.
func words(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	return " " + strings.Join(fields, " ") + " "
}

// Violates reports the first forbidden term found in ingredient.
func (d *Diet) Violates(ingredient string) (string, bool) {
	w := words(ingredient)
	for _, ex := range d.Exempt {
		for _, phrase := range []string{" " + ex + " ", " " + ex + "s ", " " + ex + "es "} {
			for strings.Contains(w, phrase) {
				w = strings.Replace(w, phrase, " ", 1)
			}
		}
	}
	for _, term := range d.Forbidden {
		if strings.Contains(w, " "+term+" ") ||
			strings.Contains(w, " "+term+"s ") ||
			strings.Contains(w, " "+term+"es ") {
			return term, true
		}
	}
	return "", false
}
