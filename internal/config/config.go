package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/recency"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/selection"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/validation"
)

// #region config

// Config is the full runtime configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Axis      AxisConfig      `koanf:"axis"`
	Selection SelectionConfig `koanf:"selection"`
	Energy    EnergyConfig    `koanf:"energy"`
}

// DatabaseConfig locates the durable stores.
type DatabaseConfig struct {
	Path           string `koanf:"path" validate:"required"`
	RecencyBackend string `koanf:"recency_backend" validate:"oneof=sqlite badger memory"`
	BadgerDir      string `koanf:"badger_dir"` // empty runs badger in memory
}

// CatalogConfig locates the card catalog. An empty path uses the embedded deck.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// ServerConfig holds listener addresses for cardd.
type ServerConfig struct {
	GRPCAddr string `koanf:"grpc_addr" validate:"required"`
	HTTPAddr string `koanf:"http_addr" validate:"required"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// AxisConfig tunes the adaptive share.
type AxisConfig struct {
	MinShare           float64 `koanf:"min_share" validate:"gt=0,lt=1"`
	MaxShare           float64 `koanf:"max_share" validate:"gt=0,lt=1"`
	BaseShare          float64 `koanf:"base_share" validate:"gt=0,lt=1"`
	Amplification      float64 `koanf:"amplification" validate:"gte=0"`
	Smoothing          float64 `koanf:"smoothing" validate:"gte=0,lte=1"`
	DailyVariation     bool    `koanf:"daily_variation"`
	VariationAmplitude float64 `koanf:"variation_amplitude" validate:"gte=0,lte=2"`
}

// SelectionConfig tunes scoring and recency.
type SelectionConfig struct {
	AxisWeight       float64   `koanf:"axis_weight" validate:"gte=0,lte=1"`
	VibeWeight       float64   `koanf:"vibe_weight" validate:"gte=0,lte=1"`
	BoostWeight      float64   `koanf:"boost_weight" validate:"gte=0,lte=1"`
	Epsilon          float64   `koanf:"epsilon" validate:"gte=0"`
	VibeMargin       float64   `koanf:"vibe_margin" validate:"gte=0"`
	HardCooldown     bool      `koanf:"hard_cooldown"`
	LookbackDays     int       `koanf:"lookback_days" validate:"gte=1,lte=30"`
	CooldownDays     int       `koanf:"cooldown_days" validate:"gte=0,lte=30"`
	RecencyPenalties []float64 `koanf:"recency_penalties" validate:"required,min=1,dive,gte=0,lte=1"`
	YesterdayPenalty float64   `koanf:"yesterday_penalty" validate:"gte=0,lte=1"`
}

// EnergyConfig tunes the allocator.
type EnergyConfig struct {
	Personality string  `koanf:"personality"`
	OutlierCap  float64 `koanf:"outlier_cap" validate:"gt=0,lte=1"`
}

// #endregion config

// #region defaults

func defaultConfig() *Config {
	proj := axis.DefaultProjectorConfig()
	sel := selection.DefaultConfig()
	rec := recency.DefaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Path:           "dailycard.db",
			RecencyBackend: "sqlite",
		},
		Server: ServerConfig{
			GRPCAddr: ":50061",
			HTTPAddr: ":9091",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Axis: AxisConfig{
			MinShare:           proj.MinShare,
			MaxShare:           proj.MaxShare,
			BaseShare:          proj.BaseShare,
			Amplification:      proj.Amplification,
			Smoothing:          proj.Smoothing,
			DailyVariation:     false,
			VariationAmplitude: axis.DefaultAmplitude,
		},
		Selection: SelectionConfig{
			AxisWeight:       sel.AxisWeight,
			VibeWeight:       sel.VibeWeight,
			BoostWeight:      sel.BoostWeight,
			Epsilon:          sel.Epsilon,
			VibeMargin:       sel.VibeMargin,
			HardCooldown:     sel.HardCooldown,
			LookbackDays:     rec.LookbackDays,
			CooldownDays:     rec.CooldownDays,
			RecencyPenalties: sel.RecencyPenalties,
			YesterdayPenalty: sel.YesterdayPenalty,
		},
		Energy: EnergyConfig{
			Personality: "",
			OutlierCap:  energy.DefaultAllocatorConfig().OutlierCap,
		},
	}
}

// #endregion defaults

// #region validate

// Validate checks struct tags, then the cross-field constraints.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	var errs []error
	if c.Axis.MinShare > c.Axis.BaseShare || c.Axis.BaseShare > c.Axis.MaxShare {
		errs = append(errs, fmt.Errorf("axis shares must satisfy min <= base <= max, got %.3f/%.3f/%.3f",
			c.Axis.MinShare, c.Axis.BaseShare, c.Axis.MaxShare))
	}
	s := c.Selection
	if sum := s.AxisWeight + s.VibeWeight + s.BoostWeight; math.Abs(sum-1) > 1e-6 {
		errs = append(errs, fmt.Errorf("selection weights must sum to 1, got %.4f", sum))
	}
	if c.Energy.Personality != "" && !energy.KnownPersonality(c.Energy.Personality) {
		errs = append(errs, fmt.Errorf("energy.personality %q is not a known personality", c.Energy.Personality))
	}
	return errors.Join(errs...)
}

// #endregion validate

// #region converters

// ProjectorConfig builds the axis projector configuration.
func (c *Config) ProjectorConfig() axis.ProjectorConfig {
	p := axis.DefaultProjectorConfig()
	p.MinShare = c.Axis.MinShare
	p.MaxShare = c.Axis.MaxShare
	p.BaseShare = c.Axis.BaseShare
	p.Amplification = c.Axis.Amplification
	p.Smoothing = c.Axis.Smoothing
	return p
}

// SelectionConfig builds the engine configuration.
func (c *Config) SelectionConfig() selection.Config {
	s := selection.DefaultConfig()
	s.AxisWeight = c.Selection.AxisWeight
	s.VibeWeight = c.Selection.VibeWeight
	s.BoostWeight = c.Selection.BoostWeight
	s.Epsilon = c.Selection.Epsilon
	s.VibeMargin = c.Selection.VibeMargin
	s.HardCooldown = c.Selection.HardCooldown
	s.RecencyPenalties = append([]float64(nil), c.Selection.RecencyPenalties...)
	s.YesterdayPenalty = c.Selection.YesterdayPenalty
	return s
}

// RecencyConfig builds the history windows.
func (c *Config) RecencyConfig() recency.Config {
	return recency.Config{
		LookbackDays: c.Selection.LookbackDays,
		CooldownDays: c.Selection.CooldownDays,
	}
}

// AllocatorConfig builds the energy allocator configuration.
func (c *Config) AllocatorConfig() energy.AllocatorConfig {
	a := energy.DefaultAllocatorConfig()
	a.OutlierCap = c.Energy.OutlierCap
	return a
}

// PipelineConfig assembles the full draw pipeline configuration.
func (c *Config) PipelineConfig() pipeline.Config {
	p := pipeline.DefaultConfig()
	p.Projector = c.ProjectorConfig()
	p.Allocator = c.AllocatorConfig()
	p.Selection = c.SelectionConfig()
	p.Eval.MinShare, p.Eval.MaxShare = c.Axis.MinShare, c.Axis.MaxShare
	p.DailyVariation = c.Axis.DailyVariation
	p.VariationAmplitude = c.Axis.VariationAmplitude
	p.DefaultPersonality = c.Energy.Personality
	return p
}

// LoggerConfig builds the logger configuration.
func (c *Config) LoggerConfig() logging.Config {
	l := logging.DefaultConfig()
	l.Level = c.Logging.Level
	l.Format = c.Logging.Format
	l.Caller = c.Logging.Caller
	return l
}

// #endregion converters
