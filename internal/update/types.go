package update

import "github.com/danielpatrickdp/dailycard/go-controller/internal/state"

// #region update-context
// UpdateContext carries per-draw context into the pure update function.
type UpdateContext struct {
	DrawID    string
	ProfileID string
	Date      string
}

// #endregion update-context

// #region decision
// Decision records what the update function decided.
type Decision struct {
	Action string // "commit" | "no_op"; the pipeline may rewrite a commit to "eval_rollback"
	Reason string
}

// #endregion decision

// #region metrics
// Metrics captures telemetry from one share update.
type Metrics struct {
	Delta    float64 `json:"delta"`
	RawShare float64 `json:"raw_share"`
	Gap      float64 `json:"gap"`
	Source   string  `json:"source"`
	DrawID   string  `json:"draw_id,omitempty"`
	Clamped  bool    `json:"clamped,omitempty"`
}

// #endregion metrics

// #region update-config
// UpdateConfig bounds how the hysteresis share may move per draw.
type UpdateConfig struct {
	MinDelta float64 // changes smaller than this are a no_op
	MaxStep  float64 // cap on |new - old| per draw (0 = disabled)
}

// DefaultUpdateConfig returns sensible defaults.
func DefaultUpdateConfig() UpdateConfig {
	return UpdateConfig{
		MinDelta: 1e-9,
		MaxStep:  0,
	}
}

// #endregion update-config

// #region update-result
// UpdateResult bundles everything returned by Update().
type UpdateResult struct {
	NewState state.ShareRecord
	Decision Decision
	Metrics  Metrics
}

// #endregion update-result
