package selection

import (
	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
)

// #region suit-tables
type groupBoost map[string]float64

var (
	kineticHigh = groupBoost{catalog.GroupWands: 1.5, catalog.GroupSwords: 1.0, catalog.GroupPentacles: -1.0}
	kineticLow  = groupBoost{catalog.GroupPentacles: 1.5, catalog.GroupCups: 1.0, catalog.GroupWands: -1.0}
)

// structuredMajors are the major cards favoured on high-strategy days.
var structuredMajors = map[string]bool{
	"the_emperor":    true,
	"the_hierophant": true,
	"justice":        true,
	"the_world":      true,
	"temperance":     true,
}

// starterMajors are the major cards favoured on low-strategy days.
var starterMajors = map[string]bool{
	"the_fool":     true,
	"the_magician": true,
}

var publicCards = map[string]bool{
	"the_sun": true, "the_star": true, "the_world": true, "the_chariot": true,
	"the_magician": true, "the_empress": true, "judgement": true, "strength": true,
	"king_of_wands": true, "queen_of_wands": true, "six_of_wands": true,
	"three_of_cups": true, "ten_of_cups": true, "king_of_pentacles": true, "ten_of_pentacles": true,
}

var privateCards = map[string]bool{
	"the_hermit": true, "the_high_priestess": true, "the_moon": true, "the_hanged_man": true,
	"four_of_swords": true, "two_of_swords": true, "eight_of_cups": true, "four_of_cups": true,
	"page_of_cups": true, "nine_of_pentacles": true, "seven_of_pentacles": true,
}

// #endregion suit-tables

// #region suit-boost

// courtRank is the first court rank (page) in a numbered suit.
const courtRank = 11

func isStructured(c catalog.Candidate) bool {
	if c.IsMinor() {
		return c.Rank >= courtRank
	}
	return structuredMajors[c.ID]
}

func isStarter(c catalog.Candidate) bool {
	if c.IsMinor() {
		return c.Rank == 1
	}
	return starterMajors[c.ID]
}

// SuitBoost sums the table bonuses for the day's vector. Unclamped.
func (e *Engine) SuitBoost(c catalog.Candidate, v axis.Vector) float64 {
	hi, lo := e.config.HighThreshold, e.config.LowThreshold
	var b float64

	switch k := v.Kinetic(); {
	case k >= hi:
		b += kineticHigh[c.Group]
	case k <= lo:
		b += kineticLow[c.Group]
	}

	switch {
	case v.Strategy >= hi && isStructured(c):
		b += 1.0
	case v.Strategy <= lo && isStarter(c):
		b += 1.0
	}

	switch {
	case v.Visibility >= hi && publicCards[c.ID]:
		b += 1.0
	case v.Visibility <= lo && privateCards[c.ID]:
		b += 1.0
	}
	return b
}

// #endregion suit-boost
