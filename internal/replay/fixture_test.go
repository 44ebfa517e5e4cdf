package replay

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/recency"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/state"
)

// #region helpers

func loadedDeck(t *testing.T) *catalog.Store {
	t.Helper()
	s := catalog.NewStore("")
	if _, err := s.Load(); err != nil {
		t.Fatalf("load deck: %v", err)
	}
	return s
}

// #endregion helpers

// #region fixture-tests

// TestFixture_SampleWeek replays the checked-in week and compares each draw's
// share decision. Card ids are left open in this fixture.
func TestFixture_SampleWeek(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "sample_week.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	days, err := f.ToDays()
	if err != nil {
		t.Fatalf("ToDays: %v", err)
	}

	results, err := Replay(context.Background(), loadedDeck(t), f.StartShare, days, f.Config.ToPipelineConfig(), f.Config.ToRecencyConfig())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for _, m := range Compare(results, f.ExpectedResults) {
		t.Errorf("%s", m)
	}
	if results[3].ProfileID != "bo" || results[3].Date != "2026-03-04" {
		t.Errorf("unexpected last result %+v", results[3])
	}
}

// TestFixture_SampleWeekDeterministic replays the same fixture twice.
func TestFixture_SampleWeekDeterministic(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "sample_week.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	days, err := f.ToDays()
	if err != nil {
		t.Fatalf("ToDays: %v", err)
	}
	cat := loadedDeck(t)
	config := f.Config.ToPipelineConfig()

	a, err := Replay(context.Background(), cat, f.StartShare, days, config, f.Config.ToRecencyConfig())
	if err != nil {
		t.Fatalf("first Replay: %v", err)
	}
	b, err := Replay(context.Background(), cat, f.StartShare, days, config, f.Config.ToRecencyConfig())
	if err != nil {
		t.Fatalf("second Replay: %v", err)
	}
	for i := range a {
		if a[i].CardID != b[i].CardID || a[i].Share != b[i].Share {
			t.Errorf("draw %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestFixture_ExportRoundTrip draws through a SQLite-backed pipeline, exports
// the provenance log to a fixture and replays it in memory. Every card must match.
func TestFixture_ExportRoundTrip(t *testing.T) {
	store, err := state.NewStore(filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	cat := loadedDeck(t)
	p, err := pipeline.New(pipeline.Deps{
		Catalog:    cat,
		History:    recency.NewHistory(recency.NewMemoryStore(), recency.DefaultConfig()),
		Share:      store,
		Provenance: store.DB(),
	}, pipeline.DefaultConfig())
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	pools := []label.Pool{
		{label.New("bold", label.CategoryExpression, 3, label.OriginNatal)},
		nil,
		{label.New("calm", label.CategoryMood, 2, label.OriginWeather), label.New("linen", label.CategoryTexture, 1.5, label.OriginNatal)},
		{label.New("radiant", label.CategoryExpression, 2.5, label.OriginTransit)},
		{label.New("bold", label.CategoryExpression, 3, label.OriginNatal)},
	}
	start := time.Date(2026, 4, 6, 7, 30, 0, 0, time.UTC)
	for i, pool := range pools {
		req := pipeline.Request{ProfileID: "ana", At: start.AddDate(0, 0, i), Labels: pool}
		if _, err := p.Draw(context.Background(), req); err != nil {
			t.Fatalf("Draw %d: %v", i, err)
		}
	}

	recs, err := logging.ReadDraws(store.DB(), 100)
	if err != nil {
		t.Fatalf("ReadDraws: %v", err)
	}
	f := FromDrawRecords("round trip", recs, FixtureConfig{})
	if f.StartShare != 0.15 {
		t.Fatalf("start share = %v, want 0.15", f.StartShare)
	}
	if len(f.Days) != len(pools) {
		t.Fatalf("expected %d days, got %d", len(pools), len(f.Days))
	}

	days, err := f.ToDays()
	if err != nil {
		t.Fatalf("ToDays: %v", err)
	}
	results, err := Replay(context.Background(), cat, f.StartShare, days, f.Config.ToPipelineConfig(), f.Config.ToRecencyConfig())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for _, m := range Compare(results, f.ExpectedResults) {
		t.Errorf("%s", m)
	}
	if f.ExpectedResults[1].Action != "no_op" {
		t.Errorf("empty pool day should record no_op, got %s", f.ExpectedResults[1].Action)
	}
}

// TestFixture_TunedExportRoundTrip draws under a tuned configuration, writes the
// fixture through JSON and replays it. The recorded knobs must reproduce every card.
func TestFixture_TunedExportRoundTrip(t *testing.T) {
	store, err := state.NewStore(filepath.Join(t.TempDir(), "tuned.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	config := pipeline.DefaultConfig()
	config.Selection.HardCooldown = true
	config.Selection.Epsilon = 0.2
	config.Selection.VibeMargin = 0.3
	config.Selection.RecencyPenalties = []float64{2, 0.9, 0.6, 0.4, 0.2}
	config.Selection.YesterdayPenalty = 0.7
	config.Projector.Smoothing = 0.5
	rc := recency.Config{LookbackDays: 5, CooldownDays: 5}

	cat := loadedDeck(t)
	p, err := pipeline.New(pipeline.Deps{
		Catalog:    cat,
		History:    recency.NewHistory(recency.NewMemoryStore(), rc),
		Share:      store,
		Provenance: store.DB(),
	}, config)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	pool := label.Pool{label.New("bold", label.CategoryExpression, 3, label.OriginNatal)}
	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		req := pipeline.Request{ProfileID: "ana", At: start.AddDate(0, 0, i), Labels: pool}
		if _, err := p.Draw(context.Background(), req); err != nil {
			t.Fatalf("Draw %d: %v", i, err)
		}
	}

	recs, err := logging.ReadDraws(store.DB(), 100)
	if err != nil {
		t.Fatalf("ReadDraws: %v", err)
	}
	data, err := json.Marshal(FromDrawRecords("tuned", recs, NewFixtureConfig(config, rc)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := f.Config.ToRecencyConfig(); got != rc {
		t.Fatalf("recency config = %+v, want %+v", got, rc)
	}
	days, err := f.ToDays()
	if err != nil {
		t.Fatalf("ToDays: %v", err)
	}
	results, err := Replay(context.Background(), cat, f.StartShare, days, f.Config.ToPipelineConfig(), f.Config.ToRecencyConfig())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for _, m := range Compare(results, f.ExpectedResults) {
		t.Errorf("%s", m)
	}
}

func TestFixtureConfig_Overrides(t *testing.T) {
	eps, margin, outlierCap, minShare := 0.15, 0.01, 0.4, 0.1
	fc := FixtureConfig{
		HardCooldown:     true,
		CooldownDays:     4,
		Epsilon:          &eps,
		VibeMargin:       &margin,
		OutlierCap:       &outlierCap,
		MinShare:         &minShare,
		RecencyPenalties: []float64{3, 1},
	}
	c := fc.ToPipelineConfig()
	def := pipeline.DefaultConfig()

	if !c.Selection.HardCooldown || c.Selection.Epsilon != eps || c.Selection.VibeMargin != margin {
		t.Errorf("selection overrides not applied: %+v", c.Selection)
	}
	if c.Allocator.OutlierCap != outlierCap {
		t.Errorf("outlier cap = %v, want %v", c.Allocator.OutlierCap, outlierCap)
	}
	if c.Projector.MinShare != minShare || c.Eval.MinShare != minShare {
		t.Errorf("min share = %v/%v, want %v", c.Projector.MinShare, c.Eval.MinShare, minShare)
	}
	if len(c.Selection.RecencyPenalties) != 2 || c.Selection.RecencyPenalties[0] != 3 {
		t.Errorf("recency penalties = %v", c.Selection.RecencyPenalties)
	}
	if c.Selection.AxisWeight != def.Selection.AxisWeight || c.Projector.MaxShare != def.Projector.MaxShare {
		t.Error("absent fields must keep defaults")
	}

	rc := fc.ToRecencyConfig()
	if rc.CooldownDays != 4 || rc.LookbackDays != recency.DefaultConfig().LookbackDays {
		t.Errorf("recency config = %+v", rc)
	}
}

// TestFixtureConfig_ZeroOverride keeps an explicit zero rather than the default.
func TestFixtureConfig_ZeroOverride(t *testing.T) {
	zero := 0.0
	c := (&FixtureConfig{YesterdayPenalty: &zero}).ToPipelineConfig()
	if c.Selection.YesterdayPenalty != 0 {
		t.Errorf("yesterday penalty = %v, want 0", c.Selection.YesterdayPenalty)
	}
}

func TestFixtureDay_BadDate(t *testing.T) {
	fd := FixtureDay{DrawID: "x", Date: "03/04/2026"}
	if _, err := fd.ToDay(); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

// #endregion fixture-tests
