package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #region collectors
var (
	// Draw metrics
	DrawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailycard_draws_total",
			Help: "Total number of daily draws by fallback path",
		},
		[]string{"fallback"}, // "none", "filter_exhausted", "cooldown_exhausted"
	)

	DrawDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dailycard_draw_duration_seconds",
			Help:    "Duration of one draw from label pool to recorded card",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	DrawErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dailycard_draw_errors_total",
			Help: "Total number of draws that returned an error",
		},
	)

	DegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailycard_degraded_total",
			Help: "Recoverable conditions hit during draws",
		},
		[]string{"reason"},
	)

	TieBreaksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailycard_tie_breaks_total",
			Help: "Which criterion settled the winner",
		},
		[]string{"criterion"},
	)

	CardsDrawn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailycard_cards_drawn_total",
			Help: "Winners by catalog group",
		},
		[]string{"group"},
	)

	// Projection and allocation
	AxisShare = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dailycard_axis_share",
			Help: "Current smoothed axis token share",
		},
	)

	AxisValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dailycard_axis_value",
			Help: "Axis values of the latest draw",
		},
		[]string{"axis"},
	)

	EnergyPoints = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dailycard_energy_points",
			Help: "Energy distribution of the latest draw",
		},
		[]string{"category"},
	)

	EvalFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dailycard_eval_failures_total",
			Help: "Draws whose intermediate results failed validation and were repaired",
		},
	)

	// Catalog
	CatalogCards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dailycard_catalog_cards",
			Help: "Number of candidates in the loaded catalog",
		},
	)

	// RPC
	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailycard_rpc_requests_total",
			Help: "Total number of RPC requests",
		},
		[]string{"method", "code"},
	)

	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dailycard_rpc_duration_seconds",
			Help:    "RPC handler latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// #endregion collectors

// #region helpers

// Draw is the summary of one completed draw.
type Draw struct {
	Fallback string
	TieBreak string
	Group    string
	Share    float64
	Axes     map[string]float64
	Energy   map[string]int
	Degraded []string
	Duration time.Duration
}

// RecordDraw updates every draw collector.
func RecordDraw(d Draw) {
	fallback := d.Fallback
	if fallback == "" {
		fallback = "none"
	}
	DrawsTotal.WithLabelValues(fallback).Inc()
	DrawDuration.Observe(d.Duration.Seconds())
	if d.TieBreak != "" {
		TieBreaksTotal.WithLabelValues(d.TieBreak).Inc()
	}
	if d.Group != "" {
		CardsDrawn.WithLabelValues(d.Group).Inc()
	}
	for _, reason := range d.Degraded {
		DegradedTotal.WithLabelValues(reason).Inc()
	}
	AxisShare.Set(d.Share)
	for name, v := range d.Axes {
		AxisValue.WithLabelValues(name).Set(v)
	}
	for name, v := range d.Energy {
		EnergyPoints.WithLabelValues(name).Set(float64(v))
	}
}

// RecordDrawError counts a failed draw.
func RecordDrawError() {
	DrawErrors.Inc()
}

// RecordEvalFailure counts a repaired draw.
func RecordEvalFailure() {
	EvalFailures.Inc()
}

// SetCatalogSize records the loaded catalog size.
func SetCatalogSize(n int) {
	CatalogCards.Set(float64(n))
}

// RecordRPC records one RPC call.
func RecordRPC(method, code string, duration time.Duration) {
	RPCRequests.WithLabelValues(method, code).Inc()
	RPCDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// #endregion helpers
