package axis

import (
	"math"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
)

// #region tokens

// tokenWords holds the low/high word for each axis in Names order.
var tokenWords = [NumAxes][2]string{
	{"gentle", "bold"},
	{"slow", "quick"},
	{"spontaneous", "structured"},
	{"introspective", "radiant"},
}

// Tokens emits axis-origin labels whose combined weight makes up share of the
// pool once appended. Weight is split across axes in proportion to their
// distance from the midpoint. Returns nil for an empty pool or a zero share.
func Tokens(v Vector, share, poolWeight float64) []label.Label {
	if poolWeight <= 0 || math.IsNaN(share) || share <= 0 || share >= 1 {
		return nil
	}
	total := share * poolWeight / (1 - share)

	vals := v.Values()
	var dist [NumAxes]float64
	var sum float64
	for i, a := range vals {
		dist[i] = math.Abs(a - Midpoint)
		sum += dist[i]
	}
	if sum == 0 {
		return nil
	}

	out := make([]label.Label, 0, NumAxes)
	for i, a := range vals {
		if dist[i] == 0 {
			continue
		}
		word := tokenWords[i][0]
		if a > Midpoint {
			word = tokenWords[i][1]
		}
		out = append(out, label.New(word, label.CategoryExpression, total*dist[i]/sum, label.OriginAxis))
	}
	return out
}

// #endregion tokens

// #region variation

// DefaultAmplitude is the daily variation amplitude.
const DefaultAmplitude = 0.35

var variationFrequencies = [NumAxes]float64{1.0, 1.7, 2.3, 3.1}

const variationModulus = 10007

// Vary perturbs each axis by amplitude*sin(k*f) with k = seed mod 10007 and a
// distinct frequency per axis, then re-clamps.
func Vary(v Vector, seed int64, amplitude float64) Vector {
	k := float64(((seed % variationModulus) + variationModulus) % variationModulus)
	vals := v.Values()
	for i := range vals {
		vals[i] += amplitude * math.Sin(k*variationFrequencies[i])
	}
	return FromValues(vals)
}

// #endregion variation
