package gate

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
)

// maxDistance is the largest Euclidean distance between two points on the
// four [1,10] axes.
var maxDistance = math.Sqrt(4 * 9 * 9)

// #region gate
// Gate decides which candidates enter scoring.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate checks the cooldown veto, then the adaptive axis floor.
func (g *Gate) Evaluate(c catalog.Candidate, v axis.Vector, d energy.Distribution, cooled bool) Admission {
	sim := AxisSimilarity(c, v)
	align := g.Alignment(c, d)
	floor := g.Floor(align)
	adm := Admission{Similarity: sim, Alignment: align, Floor: floor}

	if cooled {
		adm.VetoSignals = append(adm.VetoSignals, VetoSignal{
			Type:   VetoCooldown,
			Reason: fmt.Sprintf("%s picked inside the cooldown window", c.ID),
		})
	}
	if sim < floor {
		adm.VetoSignals = append(adm.VetoSignals, VetoSignal{
			Type:   VetoAxisFloor,
			Reason: fmt.Sprintf("axis similarity %.4f below floor %.4f", sim, floor),
		})
	}
	adm.Admitted = len(adm.VetoSignals) == 0
	return adm
}

// Floor lowers the base floor when energy alignment is strong.
func (g *Gate) Floor(alignment float64) float64 {
	c := g.config
	switch {
	case alignment >= c.StrongAlignment:
		return math.Max(c.MinFloor, c.BaseFloor-c.StrongReduction)
	case alignment >= c.MediumAlignment:
		return math.Max(c.MinFloor, c.BaseFloor-c.MediumReduction)
	default:
		return c.BaseFloor
	}
}

// Alignment blends the candidate's affinity for the top-3 categories, each
// rank weight scaled by the category's share of the distribution and renormalized.
func (g *Gate) Alignment(c catalog.Candidate, d energy.Distribution) float64 {
	ranked := d.Ranked()
	var num, den float64
	for i, w := range g.config.RankWeights {
		cat := ranked[i]
		weight := w * d.Share(cat)
		num += weight * c.Affinity(cat)
		den += weight
	}
	if den <= 0 {
		return 0
	}
	return clamp01(num / den)
}

// #endregion gate

// #region helpers

// AxisSimilarity is 1 - dist(candidate axes / 10, v) / maxDistance, in [0,1].
func AxisSimilarity(c catalog.Candidate, v axis.Vector) float64 {
	ca := c.Axes.Scaled()
	va := v.Values()
	var sumSq float64
	for i := range ca {
		d := ca[i] - va[i]
		sumSq += d * d
	}
	return clamp01(1 - math.Sqrt(sumSq)/maxDistance)
}

// DominantMatch is the candidate's affinity for the top-ranked category.
func DominantMatch(c catalog.Candidate, d energy.Distribution) float64 {
	return c.Affinity(d.Dominant())
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// #endregion helpers
