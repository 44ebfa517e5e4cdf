package state

import (
	"context"
	"errors"
	"time"
)

// ErrNoState is returned when no share version has been committed yet.
var ErrNoState = errors.New("no active share version")

// #region share-record
// ShareRecord is one versioned snapshot of the hysteresis state: the axis
// share used by the previous projection.
type ShareRecord struct {
	VersionID   string
	ParentID    string
	Share       float64
	Gap         float64
	CreatedAt   time.Time
	MetricsJSON string
}

// #endregion share-record

// #region contracts

// Hysteresis is the minimal get/set contract for the installation-wide share.
type Hysteresis interface {
	Get(ctx context.Context) (float64, error)
	Set(ctx context.Context, share float64) error
}

// Versioned is the version-chain view the pipeline commits through.
type Versioned interface {
	Hysteresis
	EnsureInitial(share float64) (ShareRecord, error)
	GetCurrent() (ShareRecord, error)
	CommitState(rec ShareRecord) error
}

// #endregion contracts

// #region version-with-provenance
// VersionWithProvenance pairs a share version with its latest provenance row fields.
type VersionWithProvenance struct {
	ShareRecord
	Decision    string
	Reason      string
	SignalsJSON string
}

// #endregion version-with-provenance
