package update

import (
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/state"
)

// #region update-function
// Update is a pure function that computes the next hysteresis version from
// the active one and a projection. A neutral projection or an unchanged share
// returns the old version with a no_op decision.
func Update(old state.ShareRecord, proj axis.Projection, ctx UpdateContext, config UpdateConfig) UpdateResult {
	metrics := Metrics{
		RawShare: proj.RawShare,
		Gap:      proj.Gap,
		Source:   string(proj.Source),
		DrawID:   ctx.DrawID,
	}

	if proj.Source == axis.SourceNeutral {
		return UpdateResult{
			NewState: old,
			Decision: Decision{Action: "no_op", Reason: "empty label pool"},
			Metrics:  metrics,
		}
	}

	next := proj.Share
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return UpdateResult{
			NewState: old,
			Decision: Decision{Action: "no_op", Reason: "non-finite share"},
			Metrics:  metrics,
		}
	}
	delta := next - old.Share
	if config.MaxStep > 0 && math.Abs(delta) > config.MaxStep {
		delta = math.Copysign(config.MaxStep, delta)
		next = old.Share + delta
		metrics.Clamped = true
	}
	metrics.Delta = delta

	if math.Abs(delta) < config.MinDelta {
		return UpdateResult{
			NewState: old,
			Decision: Decision{Action: "no_op", Reason: "share unchanged"},
			Metrics:  metrics,
		}
	}

	metrics.RawShare, metrics.Gap = finite(metrics.RawShare), finite(metrics.Gap)
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		metricsJSON = []byte("{}")
	}
	return UpdateResult{
		NewState: state.ShareRecord{
			VersionID:   uuid.New().String(),
			ParentID:    old.VersionID,
			Share:       next,
			Gap:         metrics.Gap,
			CreatedAt:   time.Now().UTC(),
			MetricsJSON: string(metricsJSON),
		},
		Decision: Decision{
			Action: "commit",
			Reason: fmt.Sprintf("share %.4f -> %.4f (gap %.4f)", old.Share, next, proj.Gap),
		},
		Metrics: metrics,
	}
}

// finite maps NaN and infinities to 0; JSON cannot encode them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// #endregion update-function
