package recency

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS selections (
	id            TEXT PRIMARY KEY,
	profile_id    TEXT NOT NULL,
	candidate_id  TEXT NOT NULL,
	selected_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_selections_profile ON selections(profile_id, selected_at);
`

// #endregion schema

// #region sqlite-store

// SQLiteStore persists the selection log in the shared SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore creates the selections table if needed.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create selections table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO selections (id, profile_id, candidate_id, selected_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.ProfileID, rec.CandidateID, rec.At.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert selection: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Since(ctx context.Context, profileID string, since time.Time) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, candidate_id, selected_at FROM selections
		 WHERE profile_id = ? AND selected_at >= ? ORDER BY selected_at, id`,
		profileID, since.UTC().UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("query selections: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var nanos int64
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.CandidateID, &nanos); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		r.At = time.Unix(0, nanos).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM selections WHERE selected_at < ?`, before.UTC().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune selections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune selections: %w", err)
	}
	return int(n), nil
}

// #endregion sqlite-store
