package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDraw(t *testing.T) {
	none := testutil.ToFloat64(DrawsTotal.WithLabelValues("none"))
	seeded := testutil.ToFloat64(TieBreaksTotal.WithLabelValues("seed"))
	persist := testutil.ToFloat64(DegradedTotal.WithLabelValues("persistence_unavailable"))

	RecordDraw(Draw{
		TieBreak: "seed",
		Group:    "cups",
		Share:    0.17,
		Axes:     map[string]float64{"action": 7.25},
		Energy:   map[string]int{"classic": 6},
		Degraded: []string{"persistence_unavailable"},
		Duration: 2 * time.Millisecond,
	})

	assert.Equal(t, none+1, testutil.ToFloat64(DrawsTotal.WithLabelValues("none")))
	assert.Equal(t, seeded+1, testutil.ToFloat64(TieBreaksTotal.WithLabelValues("seed")))
	assert.Equal(t, persist+1, testutil.ToFloat64(DegradedTotal.WithLabelValues("persistence_unavailable")))
	assert.Equal(t, 0.17, testutil.ToFloat64(AxisShare))
	assert.Equal(t, 7.25, testutil.ToFloat64(AxisValue.WithLabelValues("action")))
	assert.Equal(t, 6.0, testutil.ToFloat64(EnergyPoints.WithLabelValues("classic")))
}

func TestRecordDrawFallbackLabel(t *testing.T) {
	before := testutil.ToFloat64(DrawsTotal.WithLabelValues("filter_exhausted"))
	RecordDraw(Draw{Fallback: "filter_exhausted"})
	assert.Equal(t, before+1, testutil.ToFloat64(DrawsTotal.WithLabelValues("filter_exhausted")))
}

func TestCountersAndGauges(t *testing.T) {
	errs := testutil.ToFloat64(DrawErrors)
	evals := testutil.ToFloat64(EvalFailures)
	calls := testutil.ToFloat64(RPCRequests.WithLabelValues("Draw", "OK"))

	RecordDrawError()
	RecordEvalFailure()
	SetCatalogSize(78)
	RecordRPC("Draw", "OK", time.Millisecond)

	assert.Equal(t, errs+1, testutil.ToFloat64(DrawErrors))
	assert.Equal(t, evals+1, testutil.ToFloat64(EvalFailures))
	assert.Equal(t, 78.0, testutil.ToFloat64(CatalogCards))
	assert.Equal(t, calls+1, testutil.ToFloat64(RPCRequests.WithLabelValues("Draw", "OK")))
}
