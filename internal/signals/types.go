package signals

// #region config

// ProducerConfig holds tuning knobs for axis drive extraction.
type ProducerConfig struct {
	StrongMultiplier       float64 // per unit weight for primary driver sources
	SecondaryScale         float64 // fraction of StrongMultiplier for secondary sources
	KeywordMultiplier      float64 // per unit weight for vocabulary matches
	CounterMultiplier      float64 // per unit weight for opposing vocabulary
	IntroversionMultiplier float64 // per unit weight subtracted from visibility
	PhaseWeight            float64 // scale of the phase signal around the midpoint
	DensityWeight          float64 // scale of the aspect density on tempo
	ReferenceMass          float64 // pool weight above which drives are damped
}

// DefaultProducerConfig returns sensible defaults.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		StrongMultiplier:       0.30,
		SecondaryScale:         0.7,
		KeywordMultiplier:      0.45,
		CounterMultiplier:      0.40,
		IntroversionMultiplier: 0.45,
		PhaseWeight:            0.5,
		DensityWeight:          3.0,
		ReferenceMass:          25,
	}
}

// #endregion config

// #region axis-signals

// AxisSignals carries the per-axis drives extracted from one label pool.
// Drives are offsets from the 5.0 base, already damped.
type AxisSignals struct {
	Action     float64
	Tempo      float64
	Strategy   float64
	Visibility float64

	Phase         float64 // [0,1], meaningful when HasPhase
	HasPhase      bool
	AspectDensity float64 // labels with an aspect source / label count
	Damping       float64 // divisor applied to weight-driven terms (>= 1)
	LabelCount    int
	TotalWeight   float64
}

// #endregion axis-signals
