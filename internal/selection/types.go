package selection

import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/gate"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/recency"
)

// #region errors
// Recoverable conditions. They are reported in Result.Degraded, never returned.
var (
	ErrFilterExhausted        = errors.New("axis filter left no candidates")
	ErrCooldownExhausted      = errors.New("cooldown left no candidates")
	ErrPersistenceUnavailable = errors.New("recency store unavailable")
)

// #endregion errors

// #region contracts

// Catalog serves the loaded candidate list.
type Catalog interface {
	Get() ([]catalog.Candidate, error)
}

// History is the recency contract the engine reads and appends to.
type History interface {
	Recent(ctx context.Context, profileID string, at time.Time) ([]recency.Recent, error)
	CooldownSet(ctx context.Context, profileID string, at time.Time) (map[string]bool, error)
	Yesterday(ctx context.Context, profileID string, at time.Time) (string, bool, error)
	Record(ctx context.Context, rec recency.Record) error
}

// #endregion contracts

// #region config

// Config holds scoring weights and recency policy.
type Config struct {
	AxisWeight   float64 // share of total for axis similarity
	VibeWeight   float64 // share of total for energy alignment
	BoostWeight  float64 // share of total for suit and keyword boosts
	SuitShare    float64 // fraction of the boost from the suit table
	KeywordShare float64 // fraction of the boost from keyword matches
	SuitCap      float64 // suit boost is clamped to [-SuitCap, SuitCap]

	HighThreshold float64 // axis value at or above which "high" table rows apply
	LowThreshold  float64 // axis value at or below which "low" table rows apply

	Epsilon    float64 // totals within this of the best are tied
	VibeMargin float64 // tied candidates within this of the best vibe stay in

	RecencyPenalties []float64 // penalty by days ago; index 0 is today
	YesterdayPenalty float64   // penalty on yesterday's card when cooldown empties the set
	HardCooldown     bool      // exclude cooled-down candidates in stage 1

	Gate gate.GateConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		AxisWeight:       0.35,
		VibeWeight:       0.50,
		BoostWeight:      0.15,
		SuitShare:        0.6,
		KeywordShare:     0.4,
		SuitCap:          3,
		HighThreshold:    7,
		LowThreshold:     4,
		Epsilon:          0.02,
		VibeMargin:       0.05,
		RecencyPenalties: []float64{1.0, 0.25, 0.12, 0.05},
		YesterdayPenalty: 0.5,
		HardCooldown:     false,
		Gate:             gate.DefaultGateConfig(),
	}
}

// #endregion config

// #region request-result

// Request is one selection call.
type Request struct {
	Labels       label.Pool
	Vector       axis.Vector
	Distribution energy.Distribution
	Seed         int64
	HasSeed      bool
	ProfileID    string
	At           time.Time
}

// Fallback names the degraded path a selection took.
type Fallback string

const (
	FallbackNone              Fallback = ""
	FallbackFilterExhausted   Fallback = "filter_exhausted"
	FallbackCooldownExhausted Fallback = "cooldown_exhausted"
)

// TieBreak names the criterion that settled the winner.
type TieBreak string

const (
	TieBreakScore    TieBreak = "score"
	TieBreakVibe     TieBreak = "vibe"
	TieBreakDominant TieBreak = "dominant"
	TieBreakAxis     TieBreak = "axis"
	TieBreakSeed     TieBreak = "seed"
	TieBreakOrder    TieBreak = "catalog_order"
)

// Scored is one candidate's breakdown.
type Scored struct {
	Candidate     catalog.Candidate
	Admission     gate.Admission
	AxisScore     float64
	VibeScore     float64
	BoostScore    float64
	SuitBoost     float64
	KeywordMatch  float64
	DominantMatch float64
	Penalty       float64
	Total         float64

	order int // catalog position
}

// Result is the selection outcome.
type Result struct {
	Winner   catalog.Candidate
	Score    Scored
	Ranked   []Scored // scored candidates, best first
	Fallback Fallback
	TieBreak TieBreak
	Degraded []error
}

// #endregion request-result
