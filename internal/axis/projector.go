package axis

import (
	"math"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/signals"
)

// #region config

// ProjectorConfig controls the adaptive axis share.
type ProjectorConfig struct {
	MinShare      float64 // lower bound for the share
	MaxShare      float64 // upper bound for the share
	BaseShare     float64 // share at zero gap
	Amplification float64 // gap multiplier over the share band
	Smoothing     float64 // weight of the previous share (alpha)
	Signals       signals.ProducerConfig
}

// DefaultProjectorConfig returns sensible defaults.
func DefaultProjectorConfig() ProjectorConfig {
	return ProjectorConfig{
		MinShare:      0.05,
		MaxShare:      0.25,
		BaseShare:     0.15,
		Amplification: 2.0,
		Smoothing:     0.3,
		Signals:       signals.DefaultProducerConfig(),
	}
}

// #endregion config

// #region types

// Features are raw scalar chart features. Fractions are in [0,1].
type Features struct {
	AngularMomentum   float64 `json:"angular_momentum"`
	LunarPhase        float64 `json:"lunar_phase"`
	AspectCount       int     `json:"aspect_count"`
	MaxAspects        int     `json:"max_aspects"`
	StructuralTension float64 `json:"structural_tension"`
	VisibilityIndex   float64 `json:"visibility_index"`
}

// Source records which path produced a projection.
type Source string

const (
	SourceLabels   Source = "labels"
	SourceFeatures Source = "features"
	SourceNeutral  Source = "neutral"
)

// Projection is the AxisProjector output.
type Projection struct {
	Vector   Vector  `json:"vector"`
	Gap      float64 `json:"gap"`
	RawShare float64 `json:"raw_share"`
	Share    float64 `json:"share"`
	Source   Source  `json:"source"`
}

// #endregion types

// #region projector

// Projector maps a label pool or raw features onto the axis vector. It never fails.
type Projector struct {
	config   ProjectorConfig
	producer *signals.Producer
}

// NewProjector creates a Projector.
func NewProjector(config ProjectorConfig) *Projector {
	return &Projector{config: config, producer: signals.NewProducer(config.Signals)}
}

// Project computes the vector and the smoothed share. Features, when given,
// take precedence over the pool. An empty pool without features returns the
// neutral vector and leaves lastShare unchanged.
func (p *Projector) Project(pool label.Pool, features *Features, lastShare float64) Projection {
	var v Vector
	var src Source
	switch {
	case features != nil:
		v, src = FromFeatures(*features), SourceFeatures
	case pool.Empty():
		return Projection{
			Vector:   NeutralVector(),
			RawShare: lastShare,
			Share:    lastShare,
			Source:   SourceNeutral,
		}
	default:
		v, src = p.fromLabels(pool), SourceLabels
	}

	gap := v.Gap()
	raw := p.RawShare(gap)
	return Projection{
		Vector:   v,
		Gap:      gap,
		RawShare: raw,
		Share:    p.Smooth(lastShare, raw),
		Source:   src,
	}
}

func (p *Projector) fromLabels(pool label.Pool) Vector {
	sig := p.producer.Produce(pool)
	return NewVector(
		Neutral+sig.Action,
		Neutral+sig.Tempo,
		Neutral+sig.Strategy,
		Neutral+sig.Visibility,
	)
}

// FromFeatures maps raw chart features onto the axes.
func FromFeatures(f Features) Vector {
	density := 0.0
	if f.MaxAspects > 0 {
		density = math.Min(1, float64(f.AspectCount)/float64(f.MaxAspects))
	}
	return NewVector(
		signals.UnitToScale(f.AngularMomentum),
		(signals.UnitToScale(f.LunarPhase)+signals.UnitToScale(density))/2,
		signals.UnitToScale(f.StructuralTension),
		signals.UnitToScale(f.VisibilityIndex),
	)
}

// #endregion projector

// #region share

// RawShare converts a gap into an unsmoothed share within [MinShare, MaxShare].
func (p *Projector) RawShare(gap float64) float64 {
	c := p.config
	return p.clampShare(c.BaseShare + gap*c.Amplification*(c.MaxShare-c.MinShare))
}

// Smooth blends the previous share with the raw one. A non-finite previous
// share is treated as the base share.
func (p *Projector) Smooth(last, raw float64) float64 {
	if math.IsNaN(last) || math.IsInf(last, 0) {
		last = p.config.BaseShare
	}
	a := p.config.Smoothing
	return p.clampShare(last*a + raw*(1-a))
}

// clampShare restricts s to the configured band. NaN maps to the base share.
func (p *Projector) clampShare(s float64) float64 {
	if math.IsNaN(s) {
		return p.config.BaseShare
	}
	return math.Max(p.config.MinShare, math.Min(p.config.MaxShare, s))
}

// #endregion share
