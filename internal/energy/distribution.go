package energy

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// #region constants
// Total is the fixed sum of every valid distribution.
const Total = 21

// Max holds the per-category ceilings.
var Max = [NumCategories]int{10, 8, 8, 7, 6, 5}

// Balanced is returned when there is no signal at all.
var Balanced = Distribution{4, 4, 4, 3, 3, 3}

// #endregion constants

// #region distribution
// Distribution is the integer allocation of Total points across the categories.
type Distribution [NumCategories]int

// Get returns the points for one category.
func (d Distribution) Get(c Category) int {
	return d[c]
}

// Sum adds all fields.
func (d Distribution) Sum() int {
	s := 0
	for _, v := range d {
		s += v
	}
	return s
}

// Valid reports whether the distribution sums to Total with every field inside [0, Max].
func (d Distribution) Valid() bool {
	for i, v := range d {
		if v < 0 || v > Max[i] {
			return false
		}
	}
	return d.Sum() == Total
}

// Share returns the category's fraction of Total.
func (d Distribution) Share(c Category) float64 {
	return float64(d[c]) / float64(Total)
}

// Ranked returns categories by points descending; canonical order breaks ties.
func (d Distribution) Ranked() []Category {
	out := make([]Category, NumCategories)
	copy(out, All[:])
	sort.SliceStable(out, func(i, j int) bool {
		return d[out[i]] > d[out[j]]
	})
	return out
}

// Dominant returns the top-ranked category.
func (d Distribution) Dominant() Category {
	return d.Ranked()[0]
}

// Repair returns a valid distribution as close to d as the constraints allow.
func (d Distribution) Repair() Distribution {
	out := d
	for i := range out {
		if out[i] < 0 {
			out[i] = 0
		}
		if out[i] > Max[i] {
			out[i] = Max[i]
		}
	}
	for out.Sum() > Total {
		out[largest(out)]--
	}
	for out.Sum() < Total {
		out[mostHeadroom(out)]++
	}
	return out
}

// String renders "classic=4 playful=4 ...".
func (d Distribution) String() string {
	s := ""
	for i, c := range All {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", c, d[c])
	}
	return s
}

// Map returns the distribution keyed by category name.
func (d Distribution) Map() map[string]int {
	m := make(map[string]int, NumCategories)
	for _, c := range All {
		m[c.String()] = d[c]
	}
	return m
}

// MarshalJSON encodes the distribution as a name-keyed object.
func (d Distribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// UnmarshalJSON decodes a name-keyed object. Unknown names are rejected.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode distribution: %w", err)
	}
	var out Distribution
	for name, v := range m {
		c, ok := ParseCategory(name)
		if !ok {
			return fmt.Errorf("decode distribution: unknown category %q", name)
		}
		out[c] = v
	}
	*d = out
	return nil
}

// #endregion distribution

// #region helpers
func largest(d Distribution) int {
	best := 0
	for i := 1; i < NumCategories; i++ {
		if d[i] > d[best] {
			best = i
		}
	}
	return best
}

func mostHeadroom(d Distribution) int {
	best := -1
	for i := 0; i < NumCategories; i++ {
		room := Max[i] - d[i]
		if room <= 0 {
			continue
		}
		if best < 0 || room > Max[best]-d[best] {
			best = i
		}
	}
	return best
}

// #endregion helpers
