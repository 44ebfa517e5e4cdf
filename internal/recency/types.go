package recency

import (
	"context"
	"time"
)

// #region record

// Record is one appended selection.
type Record struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidate_id"`
	ProfileID   string    `json:"profile_id"`
	At          time.Time `json:"at"`
}

// Recent is the most recent pick of one candidate inside the lookback window.
type Recent struct {
	CandidateID string
	DaysAgo     int
}

// #endregion record

// #region backend

// Store is the durable append-only selection log a History reads from.
type Store interface {
	// Append writes one record. Writes are serialized by the implementation.
	Append(ctx context.Context, rec Record) error
	// Since returns the profile's records at or after since, oldest first.
	Since(ctx context.Context, profileID string, since time.Time) ([]Record, error)
	// Prune deletes every record older than before and returns the count.
	Prune(ctx context.Context, before time.Time) (int, error)
}

// #endregion backend

// #region config

// Config sets the windows used by History.
type Config struct {
	LookbackDays int // days considered by Recent and Yesterday
	CooldownDays int // days a pick stays in the cooldown set
}

// DefaultConfig returns a 3-day lookback and cooldown.
func DefaultConfig() Config {
	return Config{LookbackDays: 3, CooldownDays: 3}
}

// #endregion config
