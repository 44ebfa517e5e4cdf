package rpc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/seed"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "dailycard.v1.CardService"

// DrawMethod is the full method path of the Draw RPC.
const DrawMethod = "/" + ServiceName + "/Draw"

// #region wire-types

// Birth is birth data on the wire. Dates are ISO calendar dates.
type Birth struct {
	Date      string  `json:"date" validate:"required"`
	Time      string  `json:"time,omitempty"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// DrawRequest is the Draw RPC payload. Seeds travel as decimal strings
// because struct values carry numbers as float64.
type DrawRequest struct {
	ProfileID   string         `json:"profile_id" validate:"required"`
	At          string         `json:"at,omitempty"` // RFC 3339 or YYYY-MM-DD, empty is now
	Labels      []label.Label  `json:"labels"`
	Features    *axis.Features `json:"features,omitempty"`
	Personality string         `json:"personality,omitempty"`
	Birth       *Birth         `json:"birth,omitempty"`
	Seed        string         `json:"seed,omitempty"`
}

// DrawResponse is the Draw RPC result.
type DrawResponse struct {
	DrawID       string             `json:"draw_id"`
	ProfileID    string             `json:"profile_id"`
	Date         string             `json:"date"`
	Seed         string             `json:"seed,omitempty"`
	CardID       string             `json:"card_id"`
	CardName     string             `json:"card_name"`
	Group        string             `json:"group"`
	Axes         map[string]float64 `json:"axes"`
	Energy       map[string]int     `json:"energy"`
	Share        float64            `json:"share"`
	Decision     string             `json:"decision"`
	Fallback     string             `json:"fallback,omitempty"`
	TieBreak     string             `json:"tie_break,omitempty"`
	Degraded     []string           `json:"degraded,omitempty"`
	DurationMsec int64              `json:"duration_ms"`
}

// #endregion wire-types

// #region convert

var errBadRequest = errors.New("bad request")

// ToPipeline converts a wire request into a pipeline request.
func (r DrawRequest) ToPipeline(now time.Time) (pipeline.Request, error) {
	at, err := parseAt(r.At, now)
	if err != nil {
		return pipeline.Request{}, err
	}
	req := pipeline.Request{
		ProfileID:   strings.TrimSpace(r.ProfileID),
		At:          at,
		Labels:      label.Pool(r.Labels),
		Features:    r.Features,
		Personality: r.Personality,
	}
	if r.Birth != nil {
		d, err := time.Parse(seed.DateLayout, r.Birth.Date)
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("%w: birth date %q", errBadRequest, r.Birth.Date)
		}
		req.Birth = &seed.BirthData{Date: d, Time: r.Birth.Time, Latitude: r.Birth.Latitude, Longitude: r.Birth.Longitude}
	}
	if r.Seed != "" {
		s, err := strconv.ParseInt(r.Seed, 10, 64)
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("%w: seed %q", errBadRequest, r.Seed)
		}
		req.Seed = &s
	}
	return req, nil
}

func parseAt(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(seed.DateLayout, s); err == nil {
		return t.Add(12 * time.Hour), nil
	}
	return time.Time{}, fmt.Errorf("%w: at %q", errBadRequest, s)
}

// FromDraw flattens a pipeline draw into its wire response.
func FromDraw(d pipeline.Draw) DrawResponse {
	axes := make(map[string]float64, axis.NumAxes)
	for i, v := range d.Vector.Values() {
		axes[axis.Names[i]] = v
	}
	resp := DrawResponse{
		DrawID:       d.ID,
		ProfileID:    d.ProfileID,
		Date:         d.At.UTC().Format(seed.DateLayout),
		CardID:       d.Selection.Winner.ID,
		CardName:     d.Selection.Winner.Name,
		Group:        d.Selection.Winner.Group,
		Axes:         axes,
		Energy:       d.Distribution.Map(),
		Share:        d.Projection.Share,
		Decision:     d.Update.Decision.Action,
		Fallback:     string(d.Selection.Fallback),
		TieBreak:     string(d.Selection.TieBreak),
		Degraded:     pipeline.DegradedReasons(d.Degraded),
		DurationMsec: d.Duration.Milliseconds(),
	}
	if d.HasSeed {
		resp.Seed = strconv.FormatInt(d.Seed, 10)
	}
	return resp
}

// #endregion convert
