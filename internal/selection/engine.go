package selection

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/gate"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/recency"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/seed"
)

// #region engine

// Engine runs filter, score and tie-break over the catalog.
type Engine struct {
	catalog Catalog
	history History
	gate    *gate.Gate
	config  Config
}

// NewEngine creates an engine. history may be nil, which behaves as an empty log.
func NewEngine(cat Catalog, history History, config Config) *Engine {
	return &Engine{
		catalog: cat,
		history: history,
		gate:    gate.NewGate(config.Gate),
		config:  config,
	}
}

// Select picks exactly one candidate and appends it to the history. The only
// error is catalog.ErrCatalogUnavailable; everything else degrades.
func (e *Engine) Select(ctx context.Context, req Request) (Result, error) {
	cands, err := e.catalog.Get()
	if err != nil {
		return Result{}, fmt.Errorf("select: %w", err)
	}
	if len(cands) == 0 {
		return Result{}, fmt.Errorf("select: %w", catalog.ErrCatalogUnavailable)
	}
	log := logging.Ctx(ctx).With().Str("component", "selection").Str("profile", req.ProfileID).Logger()

	var res Result
	recent := e.recent(ctx, req, &res)
	cooled := e.cooldown(ctx, req, &res)

	// Stage 1: cooldown veto then adaptive axis floor.
	adm := make([]gate.Admission, len(cands))
	pool := make([]int, 0, len(cands))
	for i, c := range cands {
		adm[i] = e.gate.Evaluate(c, req.Vector, req.Distribution, cooled[c.ID])
		if !cooled[c.ID] {
			pool = append(pool, i)
		}
	}

	penalty := func(c catalog.Candidate) float64 { return e.recencyPenalty(recent[c.ID]) }
	if len(pool) == 0 {
		res.Fallback = FallbackCooldownExhausted
		res.Degraded = append(res.Degraded, ErrCooldownExhausted)
		yesterday := e.yesterday(ctx, req, &res)
		penalty = func(c catalog.Candidate) float64 {
			if yesterday != "" && c.ID == yesterday {
				return e.config.YesterdayPenalty
			}
			return 0
		}
		for i, c := range cands {
			adm[i] = e.gate.Evaluate(c, req.Vector, req.Distribution, false)
			pool = append(pool, i)
		}
		log.Warn().Int("cooled", len(cooled)).Msg("cooldown exhausted the catalog, using full catalog")
	}

	admitted := pool[:0:0]
	for _, i := range pool {
		if adm[i].Admitted {
			admitted = append(admitted, i)
		}
	}

	// Stage 2: score.
	var scored []Scored
	if len(admitted) == 0 {
		if res.Fallback == FallbackNone {
			res.Fallback = FallbackFilterExhausted
		}
		res.Degraded = append(res.Degraded, ErrFilterExhausted)
		log.Warn().Msg("axis filter exhausted, ranking by energy alignment only")
		scored = make([]Scored, 0, len(pool))
		for _, i := range pool {
			scored = append(scored, e.vibeOnly(cands[i], i, adm[i], req, penalty(cands[i])))
		}
	} else {
		scored = make([]Scored, 0, len(admitted))
		for _, i := range admitted {
			scored = append(scored, e.score(cands[i], i, adm[i], req, penalty(cands[i])))
		}
	}

	// Stage 3: rank and tie-break.
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Total != scored[b].Total {
			return scored[a].Total > scored[b].Total
		}
		return scored[a].order < scored[b].order
	})
	winner, how := e.tieBreak(scored, req)
	res.Winner = winner.Candidate
	res.Score = winner
	res.Ranked = scored
	res.TieBreak = how

	e.record(ctx, req, winner.Candidate.ID, &res)
	log.Debug().
		Str("card", winner.Candidate.ID).
		Float64("total", winner.Total).
		Str("fallback", string(res.Fallback)).
		Str("tie_break", string(how)).
		Int("scored", len(scored)).
		Msg("card selected")
	return res, nil
}

// #endregion engine

// #region scoring

func (e *Engine) score(c catalog.Candidate, order int, adm gate.Admission, req Request, penalty float64) Scored {
	suit := e.SuitBoost(c, req.Vector)
	kw := KeywordMatch(c, req.Labels)
	capped := math.Max(-e.config.SuitCap, math.Min(e.config.SuitCap, suit))
	boost := 0.0
	if e.config.SuitCap > 0 {
		boost = (capped/e.config.SuitCap*e.config.SuitShare + kw*e.config.KeywordShare) * e.config.BoostWeight
	}
	s := Scored{
		Candidate:     c,
		Admission:     adm,
		AxisScore:     adm.Similarity * e.config.AxisWeight,
		VibeScore:     adm.Alignment * e.config.VibeWeight,
		BoostScore:    boost,
		SuitBoost:     suit,
		KeywordMatch:  kw,
		DominantMatch: gate.DominantMatch(c, req.Distribution),
		Penalty:       penalty,
		order:         order,
	}
	s.Total = s.AxisScore + s.VibeScore + s.BoostScore - s.Penalty
	return s
}

// vibeOnly is the fallback ranking: energy alignment minus recency, no axis or boosts.
func (e *Engine) vibeOnly(c catalog.Candidate, order int, adm gate.Admission, req Request, penalty float64) Scored {
	s := Scored{
		Candidate:     c,
		Admission:     adm,
		VibeScore:     adm.Alignment * e.config.VibeWeight,
		DominantMatch: gate.DominantMatch(c, req.Distribution),
		Penalty:       penalty,
		order:         order,
	}
	s.Total = s.VibeScore - s.Penalty
	return s
}

// KeywordMatch is the weight of labels whose normalized name is one of the
// candidate's keywords, over the pool weight.
func KeywordMatch(c catalog.Candidate, pool label.Pool) float64 {
	total := pool.TotalWeight()
	if total <= 0 {
		return 0
	}
	var hit float64
	for _, l := range pool {
		if c.HasKeyword(l.Key()) {
			hit += l.EffectiveWeight()
		}
	}
	return hit / total
}

func (e *Engine) recencyPenalty(daysAgo int) float64 {
	if daysAgo < 0 || daysAgo >= len(e.config.RecencyPenalties) {
		return 0
	}
	return e.config.RecencyPenalties[daysAgo]
}

// #endregion scoring

// #region tie-break

// tieBreak expects scored sorted best first.
func (e *Engine) tieBreak(scored []Scored, req Request) (Scored, TieBreak) {
	best := scored[0].Total
	tied := make([]Scored, 0, 4)
	for _, s := range scored {
		if best-s.Total <= e.config.Epsilon {
			tied = append(tied, s)
		}
	}
	if len(tied) == 1 {
		return tied[0], TieBreakScore
	}

	tied = keepBest(tied, func(s Scored) float64 { return s.VibeScore }, e.config.VibeMargin)
	if len(tied) == 1 {
		return tied[0], TieBreakVibe
	}
	tied = keepBest(tied, func(s Scored) float64 { return s.DominantMatch }, 1e-12)
	if len(tied) == 1 {
		return tied[0], TieBreakDominant
	}
	tied = keepBest(tied, func(s Scored) float64 { return s.AxisScore }, 1e-12)
	if len(tied) == 1 {
		return tied[0], TieBreakAxis
	}

	sort.SliceStable(tied, func(a, b int) bool { return tied[a].order < tied[b].order })
	if req.HasSeed {
		return tied[seed.NewRand(req.Seed).Intn(len(tied))], TieBreakSeed
	}
	return tied[0], TieBreakOrder
}

// keepBest keeps the entries whose key is within margin of the maximum.
func keepBest(in []Scored, key func(Scored) float64, margin float64) []Scored {
	top := math.Inf(-1)
	for _, s := range in {
		top = math.Max(top, key(s))
	}
	out := in[:0:0]
	for _, s := range in {
		if top-key(s) <= margin {
			out = append(out, s)
		}
	}
	return out
}

// #endregion tie-break

// #region history

func (e *Engine) recent(ctx context.Context, req Request, res *Result) map[string]int {
	out := make(map[string]int)
	if e.history == nil || req.ProfileID == "" {
		return out
	}
	recs, err := e.history.Recent(ctx, req.ProfileID, e.at(req))
	if err != nil {
		e.degrade(ctx, res, "read recent selections", err)
		return out
	}
	for _, r := range recs {
		out[r.CandidateID] = r.DaysAgo
	}
	return out
}

func (e *Engine) cooldown(ctx context.Context, req Request, res *Result) map[string]bool {
	if !e.config.HardCooldown || e.history == nil || req.ProfileID == "" {
		return map[string]bool{}
	}
	set, err := e.history.CooldownSet(ctx, req.ProfileID, e.at(req))
	if err != nil {
		e.degrade(ctx, res, "read cooldown set", err)
		return map[string]bool{}
	}
	return set
}

func (e *Engine) yesterday(ctx context.Context, req Request, res *Result) string {
	id, ok, err := e.history.Yesterday(ctx, req.ProfileID, e.at(req))
	if err != nil {
		e.degrade(ctx, res, "read yesterday", err)
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

func (e *Engine) record(ctx context.Context, req Request, cardID string, res *Result) {
	if e.history == nil || req.ProfileID == "" {
		return
	}
	err := e.history.Record(ctx, recency.Record{CandidateID: cardID, ProfileID: req.ProfileID, At: e.at(req)})
	if err != nil {
		e.degrade(ctx, res, "record selection", err)
	}
}

func (e *Engine) degrade(ctx context.Context, res *Result, op string, err error) {
	res.Degraded = append(res.Degraded, fmt.Errorf("%w: %s: %v", ErrPersistenceUnavailable, op, err))
	logging.Ctx(ctx).Warn().Err(err).Str("component", "selection").Str("op", op).Msg("recency store unavailable, continuing without history")
}

func (e *Engine) at(req Request) time.Time {
	if req.At.IsZero() {
		return time.Now().UTC()
	}
	return req.At
}

// #endregion history
