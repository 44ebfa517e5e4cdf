package energy

import "strings"

// #region category
// Category is one of the six style-energy buckets.
type Category int

const (
	Classic Category = iota
	Playful
	Romantic
	Utility
	Drama
	Edge
)

// NumCategories is the size of the closed category set.
const NumCategories = 6

// All lists the categories in canonical order. Canonical order breaks every tie.
var All = [NumCategories]Category{Classic, Playful, Romantic, Utility, Drama, Edge}

var categoryNames = [NumCategories]string{"classic", "playful", "romantic", "utility", "drama", "edge"}

// String returns the lower-case category name.
func (c Category) String() string {
	if c < 0 || int(c) >= NumCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory resolves a category name (case-insensitive).
func ParseCategory(name string) (Category, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range categoryNames {
		if s == n {
			return Category(i), true
		}
	}
	return 0, false
}

// #endregion category
