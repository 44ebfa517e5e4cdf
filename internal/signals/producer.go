package signals

import (
	"math"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
)

// #region producer

// Producer extracts axis drives from a label pool.
type Producer struct {
	config ProducerConfig
}

// NewProducer creates a Producer.
func NewProducer(config ProducerConfig) *Producer {
	return &Producer{config: config}
}

// #endregion producer

// #region produce

// Produce computes all axis drives from the pool. An empty pool yields zero drives.
func (p *Producer) Produce(pool label.Pool) AxisSignals {
	sig := AxisSignals{
		LabelCount:  pool.Len(),
		TotalWeight: pool.TotalWeight(),
		Damping:     1,
	}
	if pool.Empty() {
		return sig
	}
	if p.config.ReferenceMass > 0 {
		sig.Damping = math.Max(1, sig.TotalWeight/p.config.ReferenceMass)
	}
	sig.AspectDensity = float64(pool.AspectCount()) / float64(pool.Len())
	sig.Phase, sig.HasPhase = phaseOf(pool)

	sig.Action = p.action(pool) / sig.Damping
	sig.Strategy = p.strategy(pool) / sig.Damping
	sig.Visibility = p.visibility(pool) / sig.Damping
	sig.Tempo = p.tempoWords(pool)/sig.Damping + sig.AspectDensity*p.config.DensityWeight
	if sig.HasPhase {
		sig.Tempo += (UnitToScale(sig.Phase) - 5.5) * p.config.PhaseWeight
	}
	return sig
}

// #endregion produce

// #region axes

func (p *Producer) action(pool label.Pool) float64 {
	var drive float64
	for _, l := range pool {
		w, key := l.EffectiveWeight(), l.Key()
		planet, sign := label.Normalize(l.Planet), label.Normalize(l.Sign)
		switch {
		case actionStrongPlanets[planet]:
			drive += w * p.config.StrongMultiplier
		case actionSecondaryPlanets[planet] || actionSecondarySigns[sign]:
			drive += w * p.config.StrongMultiplier * p.config.SecondaryScale
		}
		if label.ContainsAny(key, actionWords) {
			drive += w * p.config.KeywordMultiplier
		}
		if label.ContainsAny(key, restraintWords) {
			drive -= w * p.config.CounterMultiplier
		}
	}
	return drive
}

func (p *Producer) tempoWords(pool label.Pool) float64 {
	var drive float64
	for _, l := range pool {
		w, key := l.EffectiveWeight(), l.Key()
		if label.ContainsAny(key, fastWords) {
			drive += w * p.config.CounterMultiplier
		}
		if label.ContainsAny(key, slowWords) {
			drive -= w * p.config.CounterMultiplier
		}
	}
	return drive
}

func (p *Producer) strategy(pool label.Pool) float64 {
	var drive float64
	for _, l := range pool {
		w, key := l.EffectiveWeight(), l.Key()
		if structurePlanets[label.Normalize(l.Planet)] || l.Category == label.CategoryStructure {
			drive += w * p.config.StrongMultiplier
		}
		if label.ContainsAny(key, disciplineWords) {
			drive += w * p.config.KeywordMultiplier
		}
		if label.ContainsAny(key, chaosWords) {
			drive -= w * p.config.CounterMultiplier
		}
	}
	return drive
}

func (p *Producer) visibility(pool label.Pool) float64 {
	var drive float64
	for _, l := range pool {
		w, key := l.EffectiveWeight(), l.Key()
		if prominencePlanets[label.Normalize(l.Planet)] || prominenceHouses[l.House] {
			drive += w * p.config.StrongMultiplier
		}
		if introversionHouses[l.House] {
			drive -= w * p.config.StrongMultiplier
		}
		if label.ContainsAny(key, visibilityWords) {
			drive += w * p.config.KeywordMultiplier
		}
		if label.ContainsAny(key, introversionWords) {
			drive -= w * p.config.IntroversionMultiplier
		}
	}
	return drive
}

// #endregion axes

// #region helpers

// phaseOf returns the weight-averaged illumination of phase labels.
func phaseOf(pool label.Pool) (float64, bool) {
	var sum, weights float64
	n := 0
	for _, l := range pool {
		if l.Origin != label.OriginPhase {
			continue
		}
		v, ok := phaseIllumination[l.Key()]
		if !ok {
			continue
		}
		w := l.EffectiveWeight()
		if w == 0 {
			w = 1
		}
		sum += v * w
		weights += w
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / weights, true
}

// UnitToScale maps [0,1] onto the [1,10] axis scale, clamping the input.
func UnitToScale(v float64) float64 {
	return 1 + 9*clamp(v)
}

// clamp restricts v to [0, 1]. NaN becomes 0.
func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
