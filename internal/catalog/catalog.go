// Package catalog holds the static cost-of-living data used for budget
// suggestions.
package catalog

import (
	"strings"

	"acorn/internal/core"
)

type entry struct {
	key      string
	template core.BudgetTemplate
}

func usd(city, state string, b core.Budget) core.BudgetTemplate {
	return core.BudgetTemplate{City: city, State: state, Country: "USA", Currency: "USD", Budget: b}
}

// entries are kept in definition order; Locations relies on it.
var entries = []entry{
	{"new york, ny", usd("New York", "NY", core.Budget{Housing: 3000, Food: 600, Transportation: 150, Utilities: 180, Entertainment: 300, Healthcare: 450, Other: 320})},
	{"los angeles, ca", usd("Los Angeles", "CA", core.Budget{Housing: 2500, Food: 550, Transportation: 200, Utilities: 160, Entertainment: 280, Healthcare: 400, Other: 310})},
	{"chicago, il", usd("Chicago", "IL", core.Budget{Housing: 1800, Food: 500, Transportation: 130, Utilities: 150, Entertainment: 250, Healthcare: 380, Other: 290})},
	{"austin, tx", usd("Austin", "TX", core.Budget{Housing: 1600, Food: 480, Transportation: 140, Utilities: 170, Entertainment: 270, Healthcare: 360, Other: 280})},
	{"miami, fl", usd("Miami", "FL", core.Budget{Housing: 2200, Food: 520, Transportation: 160, Utilities: 190, Entertainment: 290, Healthcare: 370, Other: 300})},
	{"seattle, wa", usd("Seattle", "WA", core.Budget{Housing: 2400, Food: 580, Transportation: 140, Utilities: 170, Entertainment: 300, Healthcare: 420, Other: 310})},
	{"boston, ma", usd("Boston", "MA", core.Budget{Housing: 2600, Food: 590, Transportation: 120, Utilities: 180, Entertainment: 290, Healthcare: 440, Other: 320})},
	{"denver, co", usd("Denver", "CO", core.Budget{Housing: 1900, Food: 520, Transportation: 150, Utilities: 160, Entertainment: 280, Healthcare: 390, Other: 300})},
}

var byKey = func() map[string]core.BudgetTemplate {
	m := make(map[string]core.BudgetTemplate, len(entries))
	for _, e := range entries {
		m[e.key] = e.template
	}
	return m
}()

// Normalize turns user input into a catalog key.
func Normalize(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// Lookup returns the template for location. Matching is exact after
// trimming and lowercasing; there is no partial or fuzzy matching.
func Lookup(location string) (core.BudgetTemplate, bool) {
	t, ok := byKey[Normalize(location)]
	return t, ok
}

// Locations lists every known location as "City, ST" in definition order.
func Locations() []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.template.Display())
	}
	return out
}

// Suggestions returns the first n locations.
func Suggestions(n int) []string {
	all := Locations()
	if n < 0 || n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// NotFoundMessage is the hint returned when a lookup misses.
func NotFoundMessage() string {
	return "We don't have cost of living data for this location yet. Try: " + strings.Join(Suggestions(3), " • ")
}
