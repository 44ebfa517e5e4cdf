package catalog

import (
	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
)

// #region groups
// Group tags carried by the default deck.
const (
	GroupMajor     = "major"
	GroupWands     = "wands"
	GroupCups      = "cups"
	GroupSwords    = "swords"
	GroupPentacles = "pentacles"
)

// #endregion groups

// #region candidate

// Axes holds a candidate's position on the 0..100 axis scale.
type Axes struct {
	Action     float64 `yaml:"action" json:"action" validate:"gte=0,lte=100"`
	Tempo      float64 `yaml:"tempo" json:"tempo" validate:"gte=0,lte=100"`
	Strategy   float64 `yaml:"strategy" json:"strategy" validate:"gte=0,lte=100"`
	Visibility float64 `yaml:"visibility" json:"visibility" validate:"gte=0,lte=100"`
}

// Scaled returns the axes divided by 10, comparable with an axis vector.
func (a Axes) Scaled() [4]float64 {
	return [4]float64{a.Action / 10, a.Tempo / 10, a.Strategy / 10, a.Visibility / 10}
}

// Candidate is one immutable catalog entry.
type Candidate struct {
	ID       string
	Name     string
	Axes     Axes
	Energy   map[energy.Category]float64
	Keywords map[string]bool
	Group    string
	Rank     int
	Special  bool
}

// Affinity returns the candidate's affinity for c, 0 when absent.
func (c Candidate) Affinity(cat energy.Category) float64 {
	return c.Energy[cat]
}

// HasKeyword reports whether the normalized keyword is in the candidate's set.
func (c Candidate) HasKeyword(key string) bool {
	return c.Keywords[key]
}

// IsMinor reports whether the candidate belongs to a numbered suit.
func (c Candidate) IsMinor() bool {
	return c.Group != GroupMajor
}

// #endregion candidate
