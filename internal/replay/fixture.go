package replay

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/recency"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/seed"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	StartShare      float64                 `json:"start_share"`
	Config          FixtureConfig           `json:"config"`
	Days            []FixtureDay            `json:"days"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureConfig holds the knobs that change replay outcomes. Absent optional
// fields keep the defaults, so hand-written fixtures only name what they tune.
type FixtureConfig struct {
	HardCooldown       bool   `json:"hard_cooldown"`
	DailyVariation     bool   `json:"daily_variation"`
	DefaultPersonality string `json:"default_personality,omitempty"`

	LookbackDays int `json:"lookback_days,omitempty"`
	CooldownDays int `json:"cooldown_days,omitempty"`

	AxisWeight       *float64  `json:"axis_weight,omitempty"`
	VibeWeight       *float64  `json:"vibe_weight,omitempty"`
	BoostWeight      *float64  `json:"boost_weight,omitempty"`
	Epsilon          *float64  `json:"epsilon,omitempty"`
	VibeMargin       *float64  `json:"vibe_margin,omitempty"`
	RecencyPenalties []float64 `json:"recency_penalties,omitempty"`
	YesterdayPenalty *float64  `json:"yesterday_penalty,omitempty"`
	OutlierCap       *float64  `json:"outlier_cap,omitempty"`

	MinShare           *float64 `json:"min_share,omitempty"`
	MaxShare           *float64 `json:"max_share,omitempty"`
	BaseShare          *float64 `json:"base_share,omitempty"`
	Amplification      *float64 `json:"amplification,omitempty"`
	Smoothing          *float64 `json:"smoothing,omitempty"`
	VariationAmplitude *float64 `json:"variation_amplitude,omitempty"`
}

// FixtureDay is one recorded draw request.
type FixtureDay struct {
	DrawID      string         `json:"draw_id"`
	ProfileID   string         `json:"profile_id"`
	Date        string         `json:"date"` // YYYY-MM-DD
	Labels      []label.Label  `json:"labels"`
	Features    *axis.Features `json:"features,omitempty"`
	Personality string         `json:"personality,omitempty"`
	Seed        *int64         `json:"seed,omitempty"`
}

// FixtureExpectedResult is the expected outcome per draw. An empty CardID is not checked.
type FixtureExpectedResult struct {
	DrawID string `json:"draw_id"`
	CardID string `json:"card_id,omitempty"`
	Action string `json:"action"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToDay converts a FixtureDay into a replayable Day.
func (fd *FixtureDay) ToDay() (Day, error) {
	date, err := time.Parse(seed.DateLayout, fd.Date)
	if err != nil {
		return Day{}, fmt.Errorf("draw %s: bad date %q: %w", fd.DrawID, fd.Date, err)
	}
	return Day{
		DrawID: fd.DrawID,
		Request: pipeline.Request{
			ProfileID:   fd.ProfileID,
			At:          date.Add(12 * time.Hour),
			Labels:      label.Pool(fd.Labels),
			Features:    fd.Features,
			Personality: fd.Personality,
			Seed:        fd.Seed,
		},
	}, nil
}

// ToDays converts every fixture day.
func (f *Fixture) ToDays() ([]Day, error) {
	out := make([]Day, 0, len(f.Days))
	for i := range f.Days {
		d, err := f.Days[i].ToDay()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ToPipelineConfig applies the fixture knobs over the default configuration.
func (fc *FixtureConfig) ToPipelineConfig() pipeline.Config {
	c := pipeline.DefaultConfig()
	c.Selection.HardCooldown = fc.HardCooldown
	c.DailyVariation = fc.DailyVariation
	c.DefaultPersonality = fc.DefaultPersonality

	override(&c.Selection.AxisWeight, fc.AxisWeight)
	override(&c.Selection.VibeWeight, fc.VibeWeight)
	override(&c.Selection.BoostWeight, fc.BoostWeight)
	override(&c.Selection.Epsilon, fc.Epsilon)
	override(&c.Selection.VibeMargin, fc.VibeMargin)
	override(&c.Selection.YesterdayPenalty, fc.YesterdayPenalty)
	if len(fc.RecencyPenalties) > 0 {
		c.Selection.RecencyPenalties = append([]float64(nil), fc.RecencyPenalties...)
	}
	override(&c.Allocator.OutlierCap, fc.OutlierCap)

	override(&c.Projector.MinShare, fc.MinShare)
	override(&c.Projector.MaxShare, fc.MaxShare)
	override(&c.Projector.BaseShare, fc.BaseShare)
	override(&c.Projector.Amplification, fc.Amplification)
	override(&c.Projector.Smoothing, fc.Smoothing)
	override(&c.VariationAmplitude, fc.VariationAmplitude)
	c.Eval.MinShare, c.Eval.MaxShare = c.Projector.MinShare, c.Projector.MaxShare
	return c
}

// ToRecencyConfig applies the fixture windows over the default history config.
func (fc *FixtureConfig) ToRecencyConfig() recency.Config {
	c := recency.DefaultConfig()
	if fc.LookbackDays > 0 {
		c.LookbackDays = fc.LookbackDays
	}
	if fc.CooldownDays > 0 {
		c.CooldownDays = fc.CooldownDays
	}
	return c
}

// NewFixtureConfig records every knob of a running configuration so that an
// exported fixture replays under the same settings.
func NewFixtureConfig(p pipeline.Config, r recency.Config) FixtureConfig {
	ptr := func(v float64) *float64 { return &v }
	return FixtureConfig{
		HardCooldown:       p.Selection.HardCooldown,
		DailyVariation:     p.DailyVariation,
		DefaultPersonality: p.DefaultPersonality,
		LookbackDays:       r.LookbackDays,
		CooldownDays:       r.CooldownDays,
		AxisWeight:         ptr(p.Selection.AxisWeight),
		VibeWeight:         ptr(p.Selection.VibeWeight),
		BoostWeight:        ptr(p.Selection.BoostWeight),
		Epsilon:            ptr(p.Selection.Epsilon),
		VibeMargin:         ptr(p.Selection.VibeMargin),
		RecencyPenalties:   append([]float64(nil), p.Selection.RecencyPenalties...),
		YesterdayPenalty:   ptr(p.Selection.YesterdayPenalty),
		OutlierCap:         ptr(p.Allocator.OutlierCap),
		MinShare:           ptr(p.Projector.MinShare),
		MaxShare:           ptr(p.Projector.MaxShare),
		BaseShare:          ptr(p.Projector.BaseShare),
		Amplification:      ptr(p.Projector.Amplification),
		Smoothing:          ptr(p.Projector.Smoothing),
		VariationAmplitude: ptr(p.VariationAmplitude),
	}
}

func override(dst, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// #endregion fixture-loader

// #region fixture-export

// FromDrawRecords builds a fixture from provenance draws, oldest first. Seeds
// and personalities are pinned so the replay does not depend on profile data.
func FromDrawRecords(description string, recs []logging.DrawRecord, config FixtureConfig) Fixture {
	f := Fixture{
		Description: description,
		StartShare:  pipeline.DefaultConfig().Projector.BaseShare,
		Config:      config,
	}
	if len(recs) > 0 {
		f.StartShare = recs[0].PrevShare
	}
	for _, r := range recs {
		s := r.Seed
		f.Days = append(f.Days, FixtureDay{
			DrawID:      r.DrawID,
			ProfileID:   r.ProfileID,
			Date:        r.Date,
			Labels:      r.Labels,
			Features:    r.Features,
			Personality: r.Personality,
			Seed:        &s,
		})
		f.ExpectedResults = append(f.ExpectedResults, FixtureExpectedResult{
			DrawID: r.DrawID,
			CardID: r.CardID,
			Action: actionFor(r),
		})
	}
	return f
}

// actionFor returns the recorded share decision, inferring it for records
// written without one.
func actionFor(r logging.DrawRecord) string {
	if r.Decision != "" {
		return r.Decision
	}
	if r.Source == string(axis.SourceNeutral) || r.Share == r.PrevShare {
		return "no_op"
	}
	return "commit"
}

// #endregion fixture-export
