package energy

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
)

// #region config
// AllocatorConfig holds the tunable constants of the allocation.
type AllocatorConfig struct {
	HitMultiplier  float64 // raw score per unit of label weight
	OutlierCap     float64 // max fraction of the raw total any one category may hold
	HeavyWeight    float64 // labels at or above this weight earn HeavyBonus
	CategoryBonus  float64
	PlanetBonus    float64
	SignBonus      float64
	HeavyBonus     float64
	WeatherBonus   float64 // weather-origin labels on Utility
	TransientBonus float64 // transit / current-event labels on Drama and Edge
}

// DefaultAllocatorConfig returns the reference constants.
func DefaultAllocatorConfig() AllocatorConfig {
	return AllocatorConfig{
		HitMultiplier:  2.0,
		OutlierCap:     0.6,
		HeavyWeight:    3.0,
		CategoryBonus:  1.0,
		PlanetBonus:    1.0,
		SignBonus:      0.75,
		HeavyBonus:     0.5,
		WeatherBonus:   1.0,
		TransientBonus: 0.5,
	}
}

// #endregion config

// #region allocator
// Scores holds one raw score per category.
type Scores [NumCategories]float64

// Sum adds all scores.
func (s Scores) Sum() float64 {
	var t float64
	for _, v := range s {
		t += v
	}
	return t
}

// Allocator turns a label pool into a fixed-sum Distribution.
type Allocator struct {
	config AllocatorConfig
}

// NewAllocator creates an allocator with the given configuration.
func NewAllocator(config AllocatorConfig) *Allocator {
	return &Allocator{config: config}
}

// Allocate scores the pool, applies the personality row, caps outliers and
// distributes Total points. Always returns a valid distribution.
func (a *Allocator) Allocate(pool label.Pool, personality string) Distribution {
	raw := a.RawScores(pool, personality)
	return Distribute(CapOutliers(raw, a.config.OutlierCap))
}

// RawScores returns the personality-scaled scores before capping.
func (a *Allocator) RawScores(pool label.Pool, personality string) Scores {
	var raw Scores
	for _, l := range pool {
		w := l.EffectiveWeight()
		if w == 0 {
			continue
		}
		key := l.Key()
		for _, c := range All {
			if !vocabulary[c][key] {
				continue
			}
			raw[c] += w*a.config.HitMultiplier + a.bonus(l, c)
		}
	}
	mult := Multipliers(personality)
	for i := range raw {
		raw[i] *= mult[i]
	}
	return raw
}

// bonus adds fixed increments for metadata that shows stronger domain affinity.
func (a *Allocator) bonus(l label.Label, c Category) float64 {
	var b float64
	if affineLabelCategories[c][l.Category] {
		b += a.config.CategoryBonus
	}
	if affinePlanets[c][label.Normalize(l.Planet)] {
		b += a.config.PlanetBonus
	}
	if affineSigns[c][label.Normalize(l.Sign)] {
		b += a.config.SignBonus
	}
	if l.EffectiveWeight() >= a.config.HeavyWeight {
		b += a.config.HeavyBonus
	}
	if c == Utility && l.Origin == label.OriginWeather {
		b += a.config.WeatherBonus
	}
	if (c == Drama || c == Edge) && (l.Origin == label.OriginTransit || l.Origin == label.OriginCurrentEvent) {
		b += a.config.TransientBonus
	}
	return b
}

// #endregion allocator

// #region capping
// CapOutliers limits every score to frac of the raw total.
func CapOutliers(s Scores, frac float64) Scores {
	total := s.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return s
	}
	limit := total * frac
	out := s
	for i, v := range out {
		if v > limit {
			out[i] = limit
		}
	}
	return out
}

// #endregion capping

// #region distribute
// Distribute scales scores to Total with largest-remainder rounding, then
// enforces the per-category maxima. Zero or invalid input yields Balanced.
func Distribute(s Scores) Distribution {
	var clean Scores
	for i, v := range s {
		if v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean[i] = v
		}
	}
	sum := clean.Sum()
	if sum <= 0 {
		return Balanced
	}

	var exact [NumCategories]float64
	var out Distribution
	assigned := 0
	for i, v := range clean {
		exact[i] = v / sum * Total
		out[i] = int(math.Floor(exact[i]))
		assigned += out[i]
	}

	// Leftover units go to the largest fractional remainders.
	order := make([]int, NumCategories)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return exact[order[a]]-float64(out[order[a]]) > exact[order[b]]-float64(out[order[b]])
	})
	for k := 0; assigned < Total; k = (k + 1) % NumCategories {
		out[order[k]]++
		assigned++
	}

	// Clamp to maxima and hand overflow to the categories with the most unmet demand.
	overflow := 0
	for i := range out {
		if out[i] > Max[i] {
			overflow += out[i] - Max[i]
			out[i] = Max[i]
		}
	}
	for ; overflow > 0; overflow-- {
		best := -1
		for i := 0; i < NumCategories; i++ {
			if out[i] >= Max[i] {
				continue
			}
			if best < 0 || exact[i]-float64(out[i]) > exact[best]-float64(out[best]) {
				best = i
			}
		}
		out[best]++
	}

	if !out.Valid() {
		return out.Repair()
	}
	return out
}

// #endregion distribute
