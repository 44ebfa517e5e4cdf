package eval

// #region eval-config
// EvalConfig holds the bounds checked after each draw is computed.
type EvalConfig struct {
	MinShare float64 // hysteresis share lower bound
	MaxShare float64 // hysteresis share upper bound
	MaxGap   float64 // informational: warn when the vector gap exceeds this
}

// DefaultEvalConfig mirrors the projector's share bounds.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MinShare: 0.05,
		MaxShare: 0.25,
		MaxGap:   0.9,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of post-allocation validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// Metric returns the named metric.
func (r EvalResult) Metric(name string) (EvalMetric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

// #endregion eval-result
