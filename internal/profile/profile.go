package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/seed"
)

// ErrNotFound is returned when a profile id has no row.
var ErrNotFound = errors.New("profile not found")

// #region types

// Profile is a registered draw subject.
type Profile struct {
	ID          string
	Personality string          // energy personality key, normalized
	Birth       *seed.BirthData // optional; seeds draws when ID is not stable
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Seed returns the daily seed. Birth data wins when present, then the id.
func (p Profile) Seed(date time.Time) (int64, bool) {
	switch {
	case p.Birth != nil:
		return seed.FromBirth(*p.Birth, date), true
	case strings.TrimSpace(p.ID) != "":
		return seed.Derive(p.ID, date), true
	default:
		return 0, false
	}
}

// #endregion types

// #region store

// Store manages profiles in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates the profiles table if needed and returns a store.
func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS profiles (
		id          TEXT PRIMARY KEY,
		personality TEXT NOT NULL DEFAULT '',
		birth_json  TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create profiles table: %w", err)
	}
	return &Store{db: db}, nil
}

// Upsert inserts or replaces a profile, keeping the original creation time.
func (s *Store) Upsert(ctx context.Context, p Profile) error {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return errors.New("upsert profile: empty id")
	}
	var birth any
	if p.Birth != nil {
		b, err := json.Marshal(p.Birth)
		if err != nil {
			return fmt.Errorf("marshal birth data: %w", err)
		}
		birth = string(b)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, personality, birth_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			personality = excluded.personality,
			birth_json  = excluded.birth_json,
			updated_at  = excluded.updated_at`,
		id, label.Normalize(p.Personality), birth, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", id, err)
	}
	return nil
}

// Get returns one profile or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Profile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, personality, birth_json, created_at, updated_at FROM profiles WHERE id = ?",
		strings.TrimSpace(id))
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("get profile %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile %s: %w", id, err)
	}
	return p, nil
}

// List returns all profiles ordered by id.
func (s *Store) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, personality, birth_json, created_at, updated_at FROM profiles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a profile. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return nil
}

// #endregion store

// #region helpers

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (Profile, error) {
	var p Profile
	var birth sql.NullString
	var created, updated string
	if err := row.Scan(&p.ID, &p.Personality, &birth, &created, &updated); err != nil {
		return Profile{}, err
	}
	if birth.Valid && birth.String != "" {
		var b seed.BirthData
		if err := json.Unmarshal([]byte(birth.String), &b); err != nil {
			return Profile{}, fmt.Errorf("decode birth data: %w", err)
		}
		p.Birth = &b
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return p, nil
}

// #endregion helpers
