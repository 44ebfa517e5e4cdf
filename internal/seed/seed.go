package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format fed into the hash.
const DateLayout = "2006-01-02"

// #region derive
// Derive returns the deterministic daily seed for a profile and calendar date.
// Identical inputs give identical seeds on every platform. The date is the
// UTC calendar day, the same day recency counts in.
func Derive(profileID string, date time.Time) int64 {
	return hash(strings.TrimSpace(profileID) + "|" + date.UTC().Format(DateLayout))
}

// #endregion derive

// #region birth
// BirthData identifies a person when no stable profile id exists.
type BirthData struct {
	Date      time.Time `json:"date"`
	Time      string    `json:"time"` // "HH:MM", empty when unknown
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// Canonical renders birth data in the fixed form used for hashing.
func (b BirthData) Canonical() string {
	clock := strings.TrimSpace(b.Time)
	if clock == "" {
		clock = "12:00"
	}
	return fmt.Sprintf("birth|%s|%s|%.4f|%.4f", b.Date.Format(DateLayout), clock, b.Latitude, b.Longitude)
}

// FromBirth derives the daily seed from raw birth data using the same hash primitive.
func FromBirth(b BirthData, date time.Time) int64 {
	return Derive(b.Canonical(), date)
}

// #endregion birth

// #region hash
// hash truncates SHA-256 to a non-negative int64.
func hash(s string) int64 {
	sum := sha256.Sum256([]byte(s))
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}

// #endregion hash
