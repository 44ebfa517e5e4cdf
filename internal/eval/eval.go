package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
)

// #region eval-harness
// EvalHarness checks the computed vector, distribution and share before selection.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run validates one draw's intermediate results. The gap check is informational.
func (h *EvalHarness) Run(v axis.Vector, d energy.Distribution, share float64) EvalResult {
	var metrics []EvalMetric
	var failReasons []string
	check := func(name string, value float64, pass bool, reason string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. every axis inside [1,10]
	for i, val := range v.Values() {
		ok := !math.IsNaN(val) && val >= axis.Min && val <= axis.Max
		check("axis_"+axis.Names[i], val, ok,
			fmt.Sprintf("%s %.4f outside [%g,%g]", axis.Names[i], val, axis.Min, axis.Max))
	}

	// 2. distribution sum and per-category range
	sum := d.Sum()
	check("distribution_sum", float64(sum), sum == energy.Total,
		fmt.Sprintf("distribution sums to %d, want %d", sum, energy.Total))
	worst := 0
	for i, val := range d {
		if over := val - energy.Max[i]; over > worst {
			worst = over
		}
		if val < 0 && -val > worst {
			worst = -val
		}
	}
	check("distribution_range", float64(worst), worst == 0,
		fmt.Sprintf("distribution %s has a field outside its range", d))

	// 3. share bounds
	shareOK := !math.IsNaN(share) && share >= h.config.MinShare && share <= h.config.MaxShare
	check("share", share, shareOK,
		fmt.Sprintf("share %.4f outside [%.2f,%.2f]", share, h.config.MinShare, h.config.MaxShare))

	// 4. gap, informational only
	gap := v.Gap()
	metrics = append(metrics, EvalMetric{Name: "gap", Value: gap, Pass: gap <= h.config.MaxGap})

	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
	}

	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness
