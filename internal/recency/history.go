package recency

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// #region history

// History answers the recency questions selection asks on top of a Store.
type History struct {
	store  Store
	config Config
}

// NewHistory wraps a store.
func NewHistory(store Store, config Config) *History {
	return &History{store: store, config: config}
}

// Recent returns, for every candidate picked in the last LookbackDays calendar
// days, its most recent distance in days. Sorted by DaysAgo then candidate id.
func (h *History) Recent(ctx context.Context, profileID string, at time.Time) ([]Recent, error) {
	recs, err := h.window(ctx, profileID, at, h.config.LookbackDays)
	if err != nil {
		return nil, err
	}
	best := make(map[string]int)
	for _, r := range recs {
		d := DaysBetween(r.At, at)
		if cur, ok := best[r.CandidateID]; !ok || d < cur {
			best[r.CandidateID] = d
		}
	}
	out := make([]Recent, 0, len(best))
	for id, d := range best {
		out = append(out, Recent{CandidateID: id, DaysAgo: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DaysAgo != out[j].DaysAgo {
			return out[i].DaysAgo < out[j].DaysAgo
		}
		return out[i].CandidateID < out[j].CandidateID
	})
	return out, nil
}

// CooldownSet returns the candidates picked in the last CooldownDays days, today included.
func (h *History) CooldownSet(ctx context.Context, profileID string, at time.Time) (map[string]bool, error) {
	recs, err := h.window(ctx, profileID, at, h.config.CooldownDays)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(recs))
	for _, r := range recs {
		set[r.CandidateID] = true
	}
	return set, nil
}

// Yesterday returns the latest candidate picked on the previous calendar day.
func (h *History) Yesterday(ctx context.Context, profileID string, at time.Time) (string, bool, error) {
	recs, err := h.window(ctx, profileID, at, 1)
	if err != nil {
		return "", false, err
	}
	id, found := "", false
	for _, r := range recs {
		if DaysBetween(r.At, at) == 1 {
			id, found = r.CandidateID, true
		}
	}
	return id, found, nil
}

// Record appends a selection, assigning an id when missing.
func (h *History) Record(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.CandidateID) == "" || strings.TrimSpace(rec.ProfileID) == "" {
		return fmt.Errorf("record selection: candidate and profile are required")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	return h.store.Append(ctx, rec)
}

// Prune removes records older than before.
func (h *History) Prune(ctx context.Context, before time.Time) (int, error) {
	return h.store.Prune(ctx, before)
}

// window returns records from the last days calendar days up to and including at's day.
func (h *History) window(ctx context.Context, profileID string, at time.Time, days int) ([]Record, error) {
	if days < 0 {
		days = 0
	}
	since := StartOfDay(at).AddDate(0, 0, -days)
	recs, err := h.store.Since(ctx, profileID, since)
	if err != nil {
		return nil, err
	}
	out := recs[:0:0]
	for _, r := range recs {
		if d := DaysBetween(r.At, at); d >= 0 && d <= days {
			out = append(out, r)
		}
	}
	return out, nil
}

// #endregion history

// #region days

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of UTC calendar days from then to now.
// Negative when then is after now.
func DaysBetween(then, now time.Time) int {
	return int(StartOfDay(now).Sub(StartOfDay(then)).Hours() / 24)
}

// #endregion days
