package axis

import (
	"fmt"
	"math"
)

// #region bounds
const (
	Min     = 1.0
	Max     = 10.0
	Neutral = 5.0
	// Midpoint is the centre of the [Min, Max] scale used for gap and token math.
	Midpoint = 5.5
	// NumAxes is the number of behavioural axes.
	NumAxes = 4
)

// Names lists the axes in Values() order.
var Names = [NumAxes]string{"action", "tempo", "strategy", "visibility"}

// #endregion bounds

// #region vector

// Vector is a point on the four behavioural axes, each in [1,10].
// Build it through NewVector so the range holds.
type Vector struct {
	Action     float64 `json:"action"`
	Tempo      float64 `json:"tempo"`
	Strategy   float64 `json:"strategy"`
	Visibility float64 `json:"visibility"`
}

// NewVector clamps each axis to [1,10]. NaN maps to 5.
func NewVector(action, tempo, strategy, visibility float64) Vector {
	return Vector{
		Action:     clampAxis(action),
		Tempo:      clampAxis(tempo),
		Strategy:   clampAxis(strategy),
		Visibility: clampAxis(visibility),
	}
}

// NeutralVector returns (5,5,5,5).
func NeutralVector() Vector {
	return Vector{Neutral, Neutral, Neutral, Neutral}
}

// FromValues builds a clamped vector from an array in Names order.
func FromValues(v [NumAxes]float64) Vector {
	return NewVector(v[0], v[1], v[2], v[3])
}

// Values returns the axes in Names order.
func (v Vector) Values() [NumAxes]float64 {
	return [NumAxes]float64{v.Action, v.Tempo, v.Strategy, v.Visibility}
}

// InRange reports whether every axis lies in [1,10].
func (v Vector) InRange() bool {
	for _, a := range v.Values() {
		if math.IsNaN(a) || a < Min || a > Max {
			return false
		}
	}
	return true
}

// Kinetic is the mean of action and tempo.
func (v Vector) Kinetic() float64 {
	return (v.Action + v.Tempo) / 2
}

// Gap is the mean normalized distance of the axes from the midpoint, in [0,1].
func (v Vector) Gap() float64 {
	var sum float64
	for _, a := range v.Values() {
		sum += math.Abs(a-Midpoint) / (Max - Midpoint)
	}
	return sum / NumAxes
}

func (v Vector) String() string {
	return fmt.Sprintf("A%.2f T%.2f S%.2f V%.2f", v.Action, v.Tempo, v.Strategy, v.Visibility)
}

// #endregion vector

func clampAxis(a float64) float64 {
	switch {
	case math.IsNaN(a):
		return Neutral
	case a < Min:
		return Min
	case a > Max:
		return Max
	}
	return a
}
