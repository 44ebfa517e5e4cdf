package logging

import (
	"time"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
)

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table.
type ProvenanceEntry struct {
	VersionID    string // share version active after the draw
	ContextHash  string // profile|date
	TriggerType  string // "draw" | "replay"
	SignalsJSON  string // DrawRecord JSON
	EvidenceRefs string // winning card id
	Decision     string // "commit" | "no_op"
	Reason       string
	CreatedAt    time.Time
}

// #endregion provenance-entry

// #region draw-record
// DrawRecord captures the complete inputs and outputs of one daily draw.
// Serialized as JSON into provenance_log.signals_json for deterministic replay.
type DrawRecord struct {
	DrawID      string         `json:"draw_id"`
	ProfileID   string         `json:"profile_id"`
	Date        string         `json:"date"`
	Seed        int64          `json:"seed"`
	Personality string         `json:"personality,omitempty"`
	Labels      []label.Label  `json:"labels"`
	Features    *axis.Features `json:"features,omitempty"`

	// Axis projection
	PrevShare float64            `json:"prev_share"` // share entering the draw
	Source    string             `json:"source"`
	Axes      map[string]float64 `json:"axes"`
	Gap       float64            `json:"gap"`
	RawShare  float64            `json:"raw_share"`
	Share     float64            `json:"share"`

	Distribution map[string]int `json:"distribution"`

	// Selection output
	CardID   string         `json:"card_id"`
	CardName string         `json:"card_name"`
	Scores   DrawScores     `json:"scores"`
	Gate     DrawThresholds `json:"gate"`
	Fallback string         `json:"fallback,omitempty"` // "filter_exhausted" | "cooldown_exhausted" | ""
	TieBreak string         `json:"tie_break,omitempty"`
	Decision string         `json:"decision"` // share update: "commit" | "no_op" | "eval_rollback"
	Degraded []string       `json:"degraded,omitempty"`
}

// DrawScores are the winner's score components.
type DrawScores struct {
	Axis    float64 `json:"axis"`
	Vibe    float64 `json:"vibe"`
	Boost   float64 `json:"boost"`
	Penalty float64 `json:"penalty"`
	Total   float64 `json:"total"`
}

// DrawThresholds captures the stage-1 admission values for the winner.
type DrawThresholds struct {
	Similarity float64 `json:"similarity"`
	Alignment  float64 `json:"alignment"`
	Floor      float64 `json:"floor"`
}

// #endregion draw-record
