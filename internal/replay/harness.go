package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/recency"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/seed"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/selection"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/state"
)

// #region types

// Day is one draw to replay.
type Day struct {
	DrawID  string
	Request pipeline.Request
}

// ReplayResult captures the outcome of replaying one day through the pipeline.
type ReplayResult struct {
	DrawID    string
	ProfileID string
	Date      string
	CardID    string
	Action    string // share decision: "commit" | "no_op" | "eval_rollback"
	Reason    string
	Fallback  string
	TieBreak  string
	Share     float64
	Degraded  int
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalDraws    int
	Commits       int
	NoOps         int
	EvalRollbacks int
	Fallbacks     int
	DistinctCards int
	FinalShare    float64
}

// Mismatch is one difference between a replay and its expectations.
type Mismatch struct {
	Index  int
	DrawID string
	Field  string
	Want   string
	Got    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("draw %d (%s): %s want=%s got=%s", m.Index, m.DrawID, m.Field, m.Want, m.Got)
}

// #endregion types

// #region replay

// Replay runs every day through a fresh pipeline backed by in-memory recency
// and share stores, seeded with startShare. The history windows come from rc.
func Replay(ctx context.Context, cat selection.Catalog, startShare float64, days []Day, config pipeline.Config, rc recency.Config) ([]ReplayResult, error) {
	share := state.NewMemoryStore()
	if _, err := share.EnsureInitial(startShare); err != nil {
		return nil, fmt.Errorf("seed share: %w", err)
	}
	history := recency.NewHistory(recency.NewMemoryStore(), rc)
	p, err := pipeline.New(pipeline.Deps{Catalog: cat, History: history, Share: share}, config)
	if err != nil {
		return nil, err
	}

	results := make([]ReplayResult, 0, len(days))
	for _, day := range days {
		d, err := p.Draw(ctx, day.Request)
		if err != nil {
			return results, fmt.Errorf("replay %s: %w", day.DrawID, err)
		}
		results = append(results, ReplayResult{
			DrawID:    day.DrawID,
			ProfileID: d.ProfileID,
			Date:      d.At.UTC().Format(seed.DateLayout),
			CardID:    d.Card(),
			Action:    d.Update.Decision.Action,
			Reason:    d.Update.Decision.Reason,
			Fallback:  string(d.Selection.Fallback),
			TieBreak:  string(d.Selection.TieBreak),
			Share:     d.Projection.Share,
			Degraded:  len(d.Degraded),
		})
	}
	return results, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalDraws: len(results)}
	cards := make(map[string]bool)
	for _, r := range results {
		switch r.Action {
		case "commit":
			s.Commits++
		case "no_op":
			s.NoOps++
		case "eval_rollback":
			s.EvalRollbacks++
		}
		if r.Fallback != "" {
			s.Fallbacks++
		}
		cards[r.CardID] = true
		s.FinalShare = r.Share
	}
	s.DistinctCards = len(cards)
	return s
}

// Compare checks results against expectations in order.
func Compare(results []ReplayResult, expected []FixtureExpectedResult) []Mismatch {
	var out []Mismatch
	if len(results) != len(expected) {
		out = append(out, Mismatch{Index: -1, Field: "count",
			Want: fmt.Sprint(len(expected)), Got: fmt.Sprint(len(results))})
	}
	for i := 0; i < len(results) && i < len(expected); i++ {
		got, want := results[i], expected[i]
		if want.DrawID != "" && got.DrawID != want.DrawID {
			out = append(out, Mismatch{Index: i, DrawID: want.DrawID, Field: "draw_id", Want: want.DrawID, Got: got.DrawID})
		}
		if want.CardID != "" && got.CardID != want.CardID {
			out = append(out, Mismatch{Index: i, DrawID: want.DrawID, Field: "card_id", Want: want.CardID, Got: got.CardID})
		}
		if want.Action != "" && got.Action != want.Action {
			out = append(out, Mismatch{Index: i, DrawID: want.DrawID, Field: "action", Want: want.Action, Got: got.Action})
		}
	}
	return out
}

// #endregion replay
