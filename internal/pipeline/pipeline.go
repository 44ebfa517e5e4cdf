package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/eval"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/metrics"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/profile"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/seed"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/selection"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/state"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/update"
)

// #region pipeline-struct

// Deps are the injected stores. Catalog and Share are required.
type Deps struct {
	Catalog    selection.Catalog
	History    selection.History // nil disables recency
	Share      state.Versioned
	Profiles   Profiles // nil skips profile lookup
	Provenance *sql.DB  // nil skips the provenance log
}

// Pipeline runs one daily draw end to end: project, allocate, check, commit
// the share, select, log.
type Pipeline struct {
	deps      Deps
	config    Config
	projector *axis.Projector
	allocator *energy.Allocator
	engine    *selection.Engine
	eval      *eval.EvalHarness

	profiles *keyedMutex // one draw per profile at a time
	shareMu  sync.Mutex  // hysteresis read-modify-write
}

// New wires a pipeline.
func New(deps Deps, config Config) (*Pipeline, error) {
	if deps.Catalog == nil {
		return nil, errors.New("new pipeline: catalog is required")
	}
	if deps.Share == nil {
		return nil, errors.New("new pipeline: share store is required")
	}
	return &Pipeline{
		deps:      deps,
		config:    config,
		projector: axis.NewProjector(config.Projector),
		allocator: energy.NewAllocator(config.Allocator),
		engine:    selection.NewEngine(deps.Catalog, deps.History, config.Selection),
		eval:      eval.NewEvalHarness(config.Eval),
		profiles:  newKeyedMutex(),
	}, nil
}

// #endregion pipeline-struct

// #region draw

// Draw runs one request. The only error is catalog unavailability.
func (p *Pipeline) Draw(ctx context.Context, req Request) (Draw, error) {
	start := time.Now()
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	log := logging.Ctx(ctx).With().Str("component", "pipeline").Str("profile", req.ProfileID).Logger()

	unlock := p.profiles.Lock(req.ProfileID)
	defer unlock()

	d := Draw{ID: uuid.New().String(), ProfileID: req.ProfileID, At: req.At}
	if d.At.IsZero() {
		d.At = time.Now().UTC()
	}

	prof := p.resolveProfile(ctx, req, &d)
	d.Personality = firstNonEmpty(req.Personality, prof.Personality, p.config.DefaultPersonality)
	d.Seed, d.HasSeed = resolveSeed(req, prof, d.At)

	p.project(ctx, req, &d)

	res, err := p.engine.Select(ctx, selection.Request{
		Labels:       d.Pool,
		Vector:       d.Vector,
		Distribution: d.Distribution,
		Seed:         d.Seed,
		HasSeed:      d.HasSeed,
		ProfileID:    req.ProfileID,
		At:           d.At,
	})
	if err != nil {
		metrics.RecordDrawError()
		log.Error().Err(err).Msg("draw failed")
		return Draw{}, fmt.Errorf("draw: %w", err)
	}
	d.Selection = res
	d.Degraded = append(d.Degraded, res.Degraded...)

	p.logProvenance(ctx, req, &d)
	d.Duration = time.Since(start)
	p.recordMetrics(d)

	log.Info().
		Str("draw_id", d.ID).
		Str("card", d.Card()).
		Str("vector", d.Vector.String()).
		Str("distribution", d.Distribution.String()).
		Float64("share", d.Projection.Share).
		Str("decision", d.Update.Decision.Action).
		Int("degraded", len(d.Degraded)).
		Dur("took", d.Duration).
		Msg("draw complete")
	return d, nil
}

// project computes vector, pool and distribution and advances the share,
// all under the hysteresis lock.
func (p *Pipeline) project(ctx context.Context, req Request, d *Draw) {
	log := logging.Ctx(ctx).With().Str("component", "pipeline").Logger()
	p.shareMu.Lock()
	defer p.shareMu.Unlock()

	shareOK := true
	current, err := p.deps.Share.EnsureInitial(p.config.Projector.BaseShare)
	if err != nil {
		shareOK = false
		current = state.ShareRecord{Share: p.config.Projector.BaseShare}
		p.degrade(ctx, d, ErrShareUnavailable, "load share", err)
	}

	d.PrevShare = current.Share
	d.Projection = p.projector.Project(req.Labels, req.Features, current.Share)
	d.Vector = d.Projection.Vector
	if p.config.DailyVariation && d.HasSeed {
		d.Vector = axis.Vary(d.Vector, d.Seed, p.config.VariationAmplitude)
	}

	d.Pool = req.Labels.With(axis.Tokens(d.Vector, d.Projection.Share, req.Labels.TotalWeight())...)
	d.Distribution = p.allocator.Allocate(d.Pool, d.Personality)

	d.Eval = p.eval.Run(d.Vector, d.Distribution, d.Projection.Share)
	shareValid := true
	if !d.Eval.Passed {
		metrics.RecordEvalFailure()
		log.Warn().Str("reason", d.Eval.Reason).Msg("eval failed, repairing")
		d.Vector = axis.FromValues(d.Vector.Values())
		if !d.Distribution.Valid() {
			d.Distribution = d.Distribution.Repair()
		}
		if m, ok := d.Eval.Metric("share"); ok && !m.Pass {
			shareValid = false
		}
	}

	d.Update = update.Update(current, d.Projection, update.UpdateContext{
		DrawID:    d.ID,
		ProfileID: req.ProfileID,
		Date:      d.At.UTC().Format(seed.DateLayout),
	}, p.config.Update)
	d.VersionID = current.VersionID

	if d.Update.Decision.Action != "commit" || !shareOK {
		return
	}
	if !shareValid {
		d.Update.NewState = current
		d.Update.Decision = update.Decision{Action: "eval_rollback", Reason: d.Eval.Reason}
		return
	}
	if err := p.deps.Share.CommitState(d.Update.NewState); err != nil {
		p.degrade(ctx, d, ErrShareUnavailable, "commit share", err)
		return
	}
	d.VersionID = d.Update.NewState.VersionID
}

// #endregion draw

// #region helpers

func (p *Pipeline) resolveProfile(ctx context.Context, req Request, d *Draw) profile.Profile {
	prof := profile.Profile{ID: req.ProfileID}
	if p.deps.Profiles == nil || req.ProfileID == "" {
		return prof
	}
	got, err := p.deps.Profiles.Get(ctx, req.ProfileID)
	switch {
	case err == nil:
		return got
	case errors.Is(err, profile.ErrNotFound):
		return prof
	default:
		p.degrade(ctx, d, ErrProfileUnavailable, "get profile", err)
		return prof
	}
}

// resolveSeed prefers an explicit seed, then request birth data, then the profile.
func resolveSeed(req Request, prof profile.Profile, at time.Time) (int64, bool) {
	if req.Seed != nil {
		return *req.Seed, true
	}
	if req.Birth != nil {
		return seed.FromBirth(*req.Birth, at), true
	}
	return prof.Seed(at)
}

func (p *Pipeline) logProvenance(ctx context.Context, req Request, d *Draw) {
	if p.deps.Provenance == nil || d.VersionID == "" {
		return
	}
	if err := logging.LogDraw(p.deps.Provenance, d.VersionID, Record(req, *d)); err != nil {
		p.degrade(ctx, d, ErrProvenanceUnavailable, "log draw", err)
	}
}

func (p *Pipeline) degrade(ctx context.Context, d *Draw, kind error, op string, err error) {
	d.Degraded = append(d.Degraded, fmt.Errorf("%w: %s: %v", kind, op, err))
	logging.Ctx(ctx).Warn().Err(err).Str("component", "pipeline").Str("op", op).Msg("continuing degraded")
}

func (p *Pipeline) recordMetrics(d Draw) {
	axes := make(map[string]float64, axis.NumAxes)
	for i, v := range d.Vector.Values() {
		axes[axis.Names[i]] = v
	}
	metrics.RecordDraw(metrics.Draw{
		Fallback: string(d.Selection.Fallback),
		TieBreak: string(d.Selection.TieBreak),
		Group:    d.Selection.Winner.Group,
		Share:    d.Projection.Share,
		Axes:     axes,
		Energy:   d.Distribution.Map(),
		Degraded: DegradedReasons(d.Degraded),
		Duration: d.Duration,
	})
}

// DegradedReasons maps degraded errors to short metric labels.
func DegradedReasons(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		switch {
		case errors.Is(err, selection.ErrFilterExhausted):
			out = append(out, "filter_exhausted")
		case errors.Is(err, selection.ErrCooldownExhausted):
			out = append(out, "cooldown_exhausted")
		case errors.Is(err, selection.ErrPersistenceUnavailable):
			out = append(out, "persistence_unavailable")
		case errors.Is(err, ErrShareUnavailable):
			out = append(out, "share_unavailable")
		case errors.Is(err, ErrProvenanceUnavailable):
			out = append(out, "provenance_unavailable")
		case errors.Is(err, ErrProfileUnavailable):
			out = append(out, "profile_unavailable")
		default:
			out = append(out, "other")
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// #endregion helpers
