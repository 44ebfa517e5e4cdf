package pipeline

import (
	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/seed"
)

// Record flattens a draw into its provenance payload. Labels are the request
// pool without axis tokens so the draw can be replayed.
func Record(req Request, d Draw) logging.DrawRecord {
	axes := make(map[string]float64, axis.NumAxes)
	for i, v := range d.Vector.Values() {
		axes[axis.Names[i]] = v
	}
	win := d.Selection.Score
	reasons := make([]string, 0, len(d.Degraded))
	for _, err := range d.Degraded {
		reasons = append(reasons, err.Error())
	}
	return logging.DrawRecord{
		DrawID:       d.ID,
		ProfileID:    d.ProfileID,
		Date:         d.At.UTC().Format(seed.DateLayout),
		Seed:         d.Seed,
		Personality:  d.Personality,
		Labels:       req.Labels,
		Features:     req.Features,
		PrevShare:    d.PrevShare,
		Source:       string(d.Projection.Source),
		Axes:         axes,
		Gap:          d.Projection.Gap,
		RawShare:     d.Projection.RawShare,
		Share:        d.Projection.Share,
		Distribution: d.Distribution.Map(),
		CardID:       d.Selection.Winner.ID,
		CardName:     d.Selection.Winner.Name,
		Scores: logging.DrawScores{
			Axis:    win.AxisScore,
			Vibe:    win.VibeScore,
			Boost:   win.BoostScore,
			Penalty: win.Penalty,
			Total:   win.Total,
		},
		Gate: logging.DrawThresholds{
			Similarity: win.Admission.Similarity,
			Alignment:  win.Admission.Alignment,
			Floor:      win.Admission.Floor,
		},
		Fallback: string(d.Selection.Fallback),
		TieBreak: string(d.Selection.TieBreak),
		Decision: d.Update.Decision.Action,
		Degraded: reasons,
	}
}
