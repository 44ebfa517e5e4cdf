package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/recency"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/seed"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// #region helpers
var today = time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)

func twin(id string, classic float64) catalog.Candidate {
	return catalog.Candidate{
		ID:       id,
		Name:     id,
		Axes:     catalog.Axes{Action: 50, Tempo: 50, Strategy: 50, Visibility: 50},
		Energy:   map[energy.Category]float64{energy.Classic: classic},
		Keywords: map[string]bool{},
		Group:    catalog.GroupMajor,
	}
}

func newHistory() *recency.History {
	return recency.NewHistory(recency.NewMemoryStore(), recency.DefaultConfig())
}

func neutralRequest() Request {
	return Request{
		Vector:       axis.NeutralVector(),
		Distribution: energy.Balanced,
		ProfileID:    "p1",
		At:           today,
	}
}

func deck(t *testing.T) *catalog.Store {
	t.Helper()
	s := catalog.NewStore("")
	_, err := s.Load()
	require.NoError(t, err)
	return s
}

type failingHistory struct{}

var errDiskGone = errors.New("disk gone")

func (failingHistory) Recent(context.Context, string, time.Time) ([]recency.Recent, error) {
	return nil, errDiskGone
}

func (failingHistory) CooldownSet(context.Context, string, time.Time) (map[string]bool, error) {
	return nil, errDiskGone
}

func (failingHistory) Yesterday(context.Context, string, time.Time) (string, bool, error) {
	return "", false, errDiskGone
}

func (failingHistory) Record(context.Context, recency.Record) error {
	return errDiskGone
}

// #endregion helpers

func TestSelectEmptyCatalog(t *testing.T) {
	e := NewEngine(catalog.NewStaticStore(nil), nil, DefaultConfig())
	_, err := e.Select(context.Background(), neutralRequest())
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
}

func TestSelectEmptyPoolReturnsCandidate(t *testing.T) {
	e := NewEngine(deck(t), newHistory(), DefaultConfig())
	res, err := e.Select(context.Background(), neutralRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Winner.ID)
	assert.NotEmpty(t, res.Ranked)
}

func TestSelectDeterministic(t *testing.T) {
	req := Request{
		Labels: label.Pool{
			label.New("bold", label.CategoryMood, 4, label.OriginTransit),
			label.New("radiant", label.CategoryExpression, 3, label.OriginNatal),
			label.New("velvet", label.CategoryTexture, 2, label.OriginNatal),
		},
		Vector:       axis.NewVector(7.5, 6.8, 4.2, 8.1),
		Distribution: energy.Distribution{3, 6, 2, 1, 6, 3},
		Seed:         seed.Derive("p1", today),
		HasSeed:      true,
		ProfileID:    "p1",
		At:           today,
	}
	require.True(t, req.Distribution.Valid())

	cat := deck(t)
	a, err := NewEngine(cat, newHistory(), DefaultConfig()).Select(context.Background(), req)
	require.NoError(t, err)
	b, err := NewEngine(cat, newHistory(), DefaultConfig()).Select(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Winner.ID, b.Winner.ID)
	assert.Equal(t, a.Score.Total, b.Score.Total)
	assert.Equal(t, a.TieBreak, b.TieBreak)
}

func TestYesterdayRankedLower(t *testing.T) {
	ctx := context.Background()
	hist := newHistory()
	require.NoError(t, hist.Record(ctx, recency.Record{ProfileID: "p1", CandidateID: "x", At: today.AddDate(0, 0, -1)}))

	e := NewEngine(catalog.NewStaticStore([]catalog.Candidate{twin("x", 0.8), twin("y", 0.8)}), hist, DefaultConfig())
	res, err := e.Select(ctx, neutralRequest())
	require.NoError(t, err)

	assert.Equal(t, "y", res.Winner.ID)
	require.Len(t, res.Ranked, 2)
	assert.Equal(t, "x", res.Ranked[1].Candidate.ID)
	assert.InDelta(t, 0.25, res.Ranked[1].Penalty, 1e-12)
	assert.Less(t, res.Ranked[1].Total, res.Ranked[0].Total)
	assert.Equal(t, FallbackNone, res.Fallback)
}

func TestSelectRecordsWinner(t *testing.T) {
	ctx := context.Background()
	hist := newHistory()
	e := NewEngine(catalog.NewStaticStore([]catalog.Candidate{twin("x", 0.8)}), hist, DefaultConfig())

	_, err := e.Select(ctx, neutralRequest())
	require.NoError(t, err)
	recent, err := hist.Recent(ctx, "p1", today)
	require.NoError(t, err)
	assert.Equal(t, []recency.Recent{{CandidateID: "x", DaysAgo: 0}}, recent)
}

func TestHardCooldown(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.HardCooldown = true

	t.Run("excludes cooled candidate", func(t *testing.T) {
		hist := newHistory()
		require.NoError(t, hist.Record(ctx, recency.Record{ProfileID: "p1", CandidateID: "x", At: today.AddDate(0, 0, -2)}))

		// x would win on alignment without the cooldown
		e := NewEngine(catalog.NewStaticStore([]catalog.Candidate{twin("x", 1.0), twin("y", 0.2)}), hist, cfg)
		res, err := e.Select(ctx, neutralRequest())
		require.NoError(t, err)
		assert.Equal(t, "y", res.Winner.ID)
		assert.Len(t, res.Ranked, 1)
	})

	t.Run("only candidate left falls back", func(t *testing.T) {
		hist := newHistory()
		require.NoError(t, hist.Record(ctx, recency.Record{ProfileID: "p1", CandidateID: "x", At: today.AddDate(0, 0, -1)}))

		e := NewEngine(catalog.NewStaticStore([]catalog.Candidate{twin("x", 1.0)}), hist, cfg)
		res, err := e.Select(ctx, neutralRequest())
		require.NoError(t, err)
		assert.Equal(t, "x", res.Winner.ID)
		assert.Equal(t, FallbackCooldownExhausted, res.Fallback)
		assert.ErrorIs(t, res.Degraded[0], ErrCooldownExhausted)
		assert.InDelta(t, cfg.YesterdayPenalty, res.Score.Penalty, 1e-12)
	})
}

func TestFilterExhaustedFallback(t *testing.T) {
	far := func(id string, classic float64) catalog.Candidate {
		c := twin(id, classic)
		c.Axes = catalog.Axes{Action: 100, Tempo: 100, Strategy: 100, Visibility: 100}
		return c
	}
	e := NewEngine(catalog.NewStaticStore([]catalog.Candidate{far("a", 0.2), far("b", 0.9)}), newHistory(), DefaultConfig())

	req := neutralRequest()
	req.Vector = axis.NewVector(1, 1, 1, 1)
	res, err := e.Select(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "b", res.Winner.ID)
	assert.Equal(t, FallbackFilterExhausted, res.Fallback)
	require.Len(t, res.Degraded, 1)
	assert.ErrorIs(t, res.Degraded[0], ErrFilterExhausted)
	assert.Zero(t, res.Score.AxisScore)
	assert.Zero(t, res.Score.BoostScore)
	// Balanced: top three share 4/21 each, so alignment is 0.6*0.9 / 1.0
	assert.InDelta(t, 0.54*0.5, res.Score.VibeScore, 1e-9)
}

func TestPersistenceUnavailableDegrades(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HardCooldown = true
	e := NewEngine(catalog.NewStaticStore([]catalog.Candidate{twin("x", 0.8)}), failingHistory{}, cfg)

	res, err := e.Select(context.Background(), neutralRequest())
	require.NoError(t, err)
	assert.Equal(t, "x", res.Winner.ID)
	require.Len(t, res.Degraded, 3) // recent, cooldown, record
	for _, d := range res.Degraded {
		assert.ErrorIs(t, d, ErrPersistenceUnavailable)
	}
}

func TestSelectWithoutHistory(t *testing.T) {
	e := NewEngine(catalog.NewStaticStore([]catalog.Candidate{twin("x", 0.8)}), nil, DefaultConfig())
	res, err := e.Select(context.Background(), neutralRequest())
	require.NoError(t, err)
	assert.Empty(t, res.Degraded)
}

func TestSuitBoost(t *testing.T) {
	e := NewEngine(catalog.NewStaticStore(nil), nil, DefaultConfig())
	minor := func(group string, rank int) catalog.Candidate {
		return catalog.Candidate{ID: group + "_x", Group: group, Rank: rank}
	}
	major := func(id string) catalog.Candidate {
		return catalog.Candidate{ID: id, Group: catalog.GroupMajor}
	}
	mid := 5.5

	tests := []struct {
		name string
		c    catalog.Candidate
		v    axis.Vector
		want float64
	}{
		{"kinetic high wands", minor(catalog.GroupWands, 3), axis.NewVector(8, 8, mid, mid), 1.5},
		{"kinetic high pentacles", minor(catalog.GroupPentacles, 3), axis.NewVector(8, 8, mid, mid), -1.0},
		{"kinetic low cups", minor(catalog.GroupCups, 3), axis.NewVector(3, 3, mid, mid), 1.0},
		{"kinetic low wands", minor(catalog.GroupWands, 3), axis.NewVector(3, 3, mid, mid), -1.0},
		{"neutral kinetic", minor(catalog.GroupWands, 3), axis.NewVector(mid, mid, mid, mid), 0},
		{"structured court", minor(catalog.GroupSwords, 14), axis.NewVector(mid, mid, 8, mid), 1.0},
		{"structured major", major("the_emperor"), axis.NewVector(mid, mid, 8, mid), 1.0},
		{"starter ace", minor(catalog.GroupCups, 1), axis.NewVector(mid, mid, 2, mid), 1.0},
		{"starter fool", major("the_fool"), axis.NewVector(mid, mid, 2, mid), 1.0},
		{"court on low strategy", minor(catalog.GroupSwords, 14), axis.NewVector(mid, mid, 2, mid), 0},
		{"public on high visibility", major("the_sun"), axis.NewVector(mid, mid, mid, 9), 1.0},
		{"private on low visibility", major("the_hermit"), axis.NewVector(mid, mid, mid, 2), 1.0},
		{"stacked", major("the_magician"), axis.NewVector(9, 9, 2, 9), 2.0},
		{"wands everything", catalog.Candidate{ID: "king_of_wands", Group: catalog.GroupWands, Rank: 14}, axis.NewVector(9, 9, 9, 9), 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.SuitBoost(tt.c, tt.v), 1e-12)
		})
	}
}

func TestBoostIsCapped(t *testing.T) {
	e := NewEngine(catalog.NewStaticStore(nil), nil, DefaultConfig())
	c := catalog.Candidate{ID: "king_of_wands", Group: catalog.GroupWands, Rank: 14, Keywords: map[string]bool{}}
	req := neutralRequest()
	req.Vector = axis.NewVector(9, 9, 9, 9)

	s := e.score(c, 0, e.gate.Evaluate(c, req.Vector, req.Distribution, false), req, 0)
	assert.InDelta(t, 3.5, s.SuitBoost, 1e-12)
	assert.InDelta(t, 0.6*0.15, s.BoostScore, 1e-12)
}

func TestKeywordMatch(t *testing.T) {
	c := catalog.Candidate{Keywords: map[string]bool{"radiant": true, "warm": true}}
	pool := label.Pool{
		label.New("Radiant", label.CategoryExpression, 3, label.OriginNatal),
		label.New("cold", label.CategoryMood, 1, label.OriginWeather),
	}
	assert.InDelta(t, 0.75, KeywordMatch(c, pool), 1e-12)
	assert.Zero(t, KeywordMatch(c, nil))
}

func TestTieBreak(t *testing.T) {
	e := NewEngine(catalog.NewStaticStore(nil), nil, DefaultConfig())
	mk := func(id string, order int, total, vibe, dom, ax float64) Scored {
		return Scored{Candidate: catalog.Candidate{ID: id}, order: order, Total: total, VibeScore: vibe, DominantMatch: dom, AxisScore: ax}
	}

	t.Run("clear winner", func(t *testing.T) {
		w, how := e.tieBreak([]Scored{mk("a", 0, 0.9, 0.4, 0, 0), mk("b", 1, 0.8, 0.4, 0, 0)}, Request{})
		assert.Equal(t, "a", w.Candidate.ID)
		assert.Equal(t, TieBreakScore, how)
	})
	t.Run("vibe", func(t *testing.T) {
		w, how := e.tieBreak([]Scored{mk("a", 0, 0.80, 0.30, 0, 0.4), mk("b", 1, 0.79, 0.40, 0, 0.3)}, Request{})
		assert.Equal(t, "b", w.Candidate.ID)
		assert.Equal(t, TieBreakVibe, how)
	})
	t.Run("dominant", func(t *testing.T) {
		w, how := e.tieBreak([]Scored{mk("a", 0, 0.80, 0.40, 0.5, 0.3), mk("b", 1, 0.79, 0.38, 0.9, 0.3)}, Request{})
		assert.Equal(t, "b", w.Candidate.ID)
		assert.Equal(t, TieBreakDominant, how)
	})
	t.Run("axis", func(t *testing.T) {
		w, how := e.tieBreak([]Scored{mk("a", 0, 0.80, 0.40, 0.5, 0.30), mk("b", 1, 0.80, 0.40, 0.5, 0.31)}, Request{})
		assert.Equal(t, "b", w.Candidate.ID)
		assert.Equal(t, TieBreakAxis, how)
	})

	tied := []Scored{mk("a", 0, 0.8, 0.4, 0.5, 0.3), mk("b", 1, 0.8, 0.4, 0.5, 0.3), mk("c", 2, 0.8, 0.4, 0.5, 0.3)}
	t.Run("catalog order without seed", func(t *testing.T) {
		w, how := e.tieBreak(tied, Request{})
		assert.Equal(t, "a", w.Candidate.ID)
		assert.Equal(t, TieBreakOrder, how)
	})
	t.Run("seeded", func(t *testing.T) {
		want := tied[seed.NewRand(42).Intn(3)].Candidate.ID
		for i := 0; i < 3; i++ {
			w, how := e.tieBreak(tied, Request{Seed: 42, HasSeed: true})
			assert.Equal(t, want, w.Candidate.ID)
			assert.Equal(t, TieBreakSeed, how)
		}
	})
}

func TestRecencyPenaltySchedule(t *testing.T) {
	e := NewEngine(catalog.NewStaticStore(nil), nil, DefaultConfig())
	for days, want := range map[int]float64{0: 1.0, 1: 0.25, 2: 0.12, 3: 0.05, 4: 0, -1: 0} {
		assert.Equal(t, want, e.recencyPenalty(days), "days=%d", days)
	}
}
