package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS share_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	share         REAL NOT NULL,
	gap           REAL NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	metrics_json  TEXT,
	FOREIGN KEY (parent_id) REFERENCES share_versions(version_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL,
	context_hash  TEXT,
	trigger_type  TEXT NOT NULL,
	signals_json  TEXT,
	evidence_refs TEXT,
	decision      TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES share_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_share (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES share_versions(version_id)
);
`

// #endregion schema

// #region store-struct
// Store manages the versioned hysteresis share in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (recency, profile, logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion close

// #region create-initial
// CreateInitialState creates a root version holding share and makes it active.
func (s *Store) CreateInitialState(share float64) (ShareRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createInitial(share)
}

func (s *Store) createInitial(share float64) (ShareRecord, error) {
	rec := ShareRecord{
		VersionID: uuid.New().String(),
		Share:     share,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return ShareRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO share_versions (version_id, parent_id, share, gap, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.VersionID, nil, rec.Share, 0.0, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return ShareRecord{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_share (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return ShareRecord{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ShareRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// EnsureInitial returns the active version, creating a root holding share on first run.
func (s *Store) EnsureInitial(share float64) (ShareRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.current()
	if err == nil {
		return cur, nil
	}
	if !errors.Is(err, ErrNoState) {
		return ShareRecord{}, err
	}
	return s.createInitial(share)
}

// #endregion create-initial

// #region get-current
// GetCurrent reads the active share version.
func (s *Store) GetCurrent() (ShareRecord, error) {
	return s.current()
}

func (s *Store) current() (ShareRecord, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_share WHERE id = 1`).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return ShareRecord{}, ErrNoState
	}
	if err != nil {
		return ShareRecord{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetVersion(versionID)
}

// #endregion get-current

// #region get-version
// GetVersion retrieves a specific share version by ID.
func (s *Store) GetVersion(id string) (ShareRecord, error) {
	row := s.db.QueryRow(
		`SELECT version_id, parent_id, share, gap, created_at, metrics_json
		 FROM share_versions WHERE version_id = ?`, id,
	)
	rec, err := scanShare(row)
	if err != nil {
		return ShareRecord{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get-version

// #region commit-state
// CommitState inserts a new version and updates the active pointer atomically.
func (s *Store) CommitState(rec ShareRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err = tx.Exec(
		`INSERT INTO share_versions (version_id, parent_id, share, gap, created_at, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(rec.ParentID), rec.Share, rec.Gap,
		rec.CreatedAt.Format(time.RFC3339Nano), nullIfEmpty(rec.MetricsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_share (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return fmt.Errorf("update active: %w", err)
	}

	return tx.Commit()
}

// #endregion commit-state

// #region hysteresis
// Get returns the active share.
func (s *Store) Get(_ context.Context) (float64, error) {
	cur, err := s.current()
	if err != nil {
		return 0, err
	}
	return cur.Share, nil
}

// Set commits share as a child of the active version.
func (s *Store) Set(_ context.Context, share float64) error {
	parent := ""
	if cur, err := s.current(); err == nil {
		parent = cur.VersionID
	} else if !errors.Is(err, ErrNoState) {
		return err
	}
	return s.CommitState(ShareRecord{
		VersionID: uuid.New().String(),
		ParentID:  parent,
		Share:     share,
	})
}

// #endregion hysteresis

// #region rollback
// Rollback sets the active pointer to a previous version.
func (s *Store) Rollback(targetVersionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM share_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s not found", targetVersionID)
	}

	_, err = s.db.Exec(`UPDATE active_share SET version_id = ? WHERE id = 1`, targetVersionID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list-versions
// ListVersions returns the most recent share versions, newest first.
func (s *Store) ListVersions(limit int) ([]ShareRecord, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, share, gap, created_at, metrics_json
		 FROM share_versions ORDER BY rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []ShareRecord
	for rows.Next() {
		rec, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListVersionsWithProvenance returns the most recent versions joined with
// their latest provenance row, newest first.
func (s *Store) ListVersionsWithProvenance(limit int) ([]VersionWithProvenance, error) {
	versions, err := s.ListVersions(limit)
	if err != nil {
		return nil, err
	}
	out := make([]VersionWithProvenance, 0, len(versions))
	for _, v := range versions {
		vp, err := s.withProvenance(v)
		if err != nil {
			return nil, err
		}
		out = append(out, vp)
	}
	return out, nil
}

// GetVersionWithProvenance returns one version joined with its latest provenance row.
func (s *Store) GetVersionWithProvenance(id string) (VersionWithProvenance, error) {
	v, err := s.GetVersion(id)
	if err != nil {
		return VersionWithProvenance{}, err
	}
	return s.withProvenance(v)
}

func (s *Store) withProvenance(v ShareRecord) (VersionWithProvenance, error) {
	vp := VersionWithProvenance{ShareRecord: v}
	var reason, signals sql.NullString
	err := s.db.QueryRow(
		`SELECT decision, reason, signals_json FROM provenance_log
		 WHERE version_id = ? ORDER BY id DESC LIMIT 1`, v.VersionID,
	).Scan(&vp.Decision, &reason, &signals)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return VersionWithProvenance{}, fmt.Errorf("get provenance %s: %w", v.VersionID, err)
	}
	vp.Reason = reason.String
	vp.SignalsJSON = signals.String
	return vp, nil
}

// #endregion list-versions

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanShare(row scanner) (ShareRecord, error) {
	var rec ShareRecord
	var parentID, metricsJSON sql.NullString
	var createdStr string
	if err := row.Scan(&rec.VersionID, &parentID, &rec.Share, &rec.Gap, &createdStr, &metricsJSON); err != nil {
		return ShareRecord{}, err
	}
	rec.ParentID = parentID.String
	rec.MetricsJSON = metricsJSON.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
