package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/eval"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/profile"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/seed"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/selection"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/update"
)

// #region errors
// Recoverable pipeline conditions, reported in Draw.Degraded alongside the engine's.
var (
	ErrShareUnavailable      = errors.New("hysteresis store unavailable")
	ErrProvenanceUnavailable = errors.New("provenance log unavailable")
	ErrProfileUnavailable    = errors.New("profile registry unavailable")
)

// #endregion errors

// #region contracts

// Profiles resolves registered profiles. profile.Store satisfies it.
type Profiles interface {
	Get(ctx context.Context, id string) (profile.Profile, error)
}

// #endregion contracts

// #region config

// Config bundles the stage configurations for one draw.
type Config struct {
	Projector          axis.ProjectorConfig
	Allocator          energy.AllocatorConfig
	Selection          selection.Config
	Update             update.UpdateConfig
	Eval               eval.EvalConfig
	DailyVariation     bool    // apply axis.Vary with the draw seed
	VariationAmplitude float64 // amplitude for axis.Vary
	DefaultPersonality string  // used when neither request nor profile names one
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	proj := axis.DefaultProjectorConfig()
	ev := eval.DefaultEvalConfig()
	ev.MinShare, ev.MaxShare = proj.MinShare, proj.MaxShare
	return Config{
		Projector:          proj,
		Allocator:          energy.DefaultAllocatorConfig(),
		Selection:          selection.DefaultConfig(),
		Update:             update.DefaultUpdateConfig(),
		Eval:               ev,
		VariationAmplitude: axis.DefaultAmplitude,
	}
}

// #endregion config

// #region request-draw

// Request is one daily draw.
type Request struct {
	ProfileID   string
	At          time.Time       // draw time; zero means now
	Labels      label.Pool      // opaque ordered pool from the label producer
	Features    *axis.Features  // optional raw chart features, take precedence over labels
	Personality string          // overrides the profile's personality key
	Birth       *seed.BirthData // seeds the draw when the caller has no stable profile id
	Seed        *int64          // explicit seed, wins over everything
}

// Draw is the full outcome of one request.
type Draw struct {
	ID           string
	ProfileID    string
	At           time.Time
	Seed         int64
	HasSeed      bool
	Personality  string
	PrevShare    float64 // share entering the draw
	Projection   axis.Projection
	Vector       axis.Vector // after daily variation and eval repair
	Pool         label.Pool  // request labels plus axis tokens
	Distribution energy.Distribution
	Eval         eval.EvalResult
	Update       update.UpdateResult
	VersionID    string // active share version after the draw
	Selection    selection.Result
	Degraded     []error
	Duration     time.Duration
}

// Card returns the winning card id.
func (d Draw) Card() string {
	return d.Selection.Winner.ID
}

// #endregion request-draw
