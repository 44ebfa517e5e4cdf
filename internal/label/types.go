package label

import (
	"math"
	"strings"
)

// #region category
// Category is the semantic bucket an upstream producer assigned to a label.
type Category string

const (
	CategoryMood         Category = "mood"
	CategoryTexture      Category = "texture"
	CategoryStructure    Category = "structure"
	CategoryExpression   Category = "expression"
	CategoryColor        Category = "color"
	CategoryColorQuality Category = "color_quality"
	CategoryElement      Category = "element"
	CategoryWeather      Category = "weather"
)

// #endregion category

// #region origin
// Origin records which upstream subsystem produced a label.
type Origin string

const (
	OriginNatal        Origin = "natal"
	OriginProgressed   Origin = "progressed"
	OriginTransit      Origin = "transit"
	OriginPhase        Origin = "phase"
	OriginWeather      Origin = "weather"
	OriginAxis         Origin = "axis"
	OriginCurrentEvent Origin = "current_event"
)

// #endregion origin

// #region label
// Label is one weighted semantic label. Immutable once produced.
type Label struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Weight   float64  `json:"weight"`
	Origin   Origin   `json:"origin"`
	Planet   string   `json:"planet,omitempty"`
	Sign     string   `json:"sign,omitempty"`
	House    int      `json:"house,omitempty"`
	Aspect   string   `json:"aspect,omitempty"`
}

// New builds a label with a sanitized weight (negative or NaN becomes 0).
func New(name string, category Category, weight float64, origin Origin) Label {
	return Label{
		Name:     name,
		Category: category,
		Weight:   SanitizeWeight(weight),
		Origin:   origin,
	}
}

// Key returns the normalized label name used for vocabulary lookups.
func (l Label) Key() string {
	return Normalize(l.Name)
}

// EffectiveWeight returns the weight clamped to >= 0.
func (l Label) EffectiveWeight() float64 {
	return SanitizeWeight(l.Weight)
}

// HasAspect reports whether the label came from a relational (aspect) source.
func (l Label) HasAspect() bool {
	return strings.TrimSpace(l.Aspect) != ""
}

// #endregion label

// #region helpers
// Normalize lower-cases a name and folds spaces and hyphens to underscores.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	return strings.Join(strings.Fields(n), "_")
}

// SanitizeWeight maps NaN, negative and infinite weights to 0.
func SanitizeWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}

// #endregion helpers
