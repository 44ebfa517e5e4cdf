package gate

// #region veto-type
// VetoType enumerates stage-1 rejection reasons.
type VetoType string

const (
	VetoCooldown  VetoType = "cooldown"
	VetoAxisFloor VetoType = "axis_floor"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents one reason a candidate was not admitted.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds the adaptive axis floor thresholds.
type GateConfig struct {
	BaseFloor       float64    // axis similarity floor with weak energy alignment
	MinFloor        float64    // floor never drops below this
	StrongAlignment float64    // alignment at or above which StrongReduction applies
	StrongReduction float64    // floor reduction for strong alignment
	MediumAlignment float64    // alignment at or above which MediumReduction applies
	MediumReduction float64    // floor reduction for medium alignment
	RankWeights     [3]float64 // weights for the top-3 energy categories
}

// DefaultGateConfig returns sensible defaults.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		BaseFloor:       0.60,
		MinFloor:        0.40,
		StrongAlignment: 0.70,
		StrongReduction: 0.15,
		MediumAlignment: 0.50,
		MediumReduction: 0.08,
		RankWeights:     [3]float64{0.60, 0.25, 0.15},
	}
}

// #endregion gate-config

// #region admission
// Admission is the stage-1 outcome for one candidate.
type Admission struct {
	Similarity  float64 // axis similarity in [0,1]
	Alignment   float64 // energy alignment in [0,1]
	Floor       float64 // adaptive similarity floor
	Admitted    bool
	VetoSignals []VetoSignal
}

// #endregion admission
