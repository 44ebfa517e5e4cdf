package logging

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE provenance_log (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		version_id    TEXT NOT NULL,
		context_hash  TEXT,
		trigger_type  TEXT NOT NULL,
		signals_json  TEXT,
		evidence_refs TEXT,
		decision      TEXT NOT NULL,
		reason        TEXT,
		created_at    TEXT NOT NULL
	)`)
	require.NoError(t, err)
	return db
}

// #endregion helpers

// #region log-decision-tests
func TestLogDecision_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	err := LogDecision(db, ProvenanceEntry{
		VersionID:    "v1",
		ContextHash:  "p1|2026-01-01",
		TriggerType:  "draw",
		SignalsJSON:  `{"card_id":"the_sun"}`,
		EvidenceRefs: "the_sun",
		Decision:     "commit",
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var versionID, decision string
	require.NoError(t, db.QueryRow("SELECT version_id, decision FROM provenance_log").Scan(&versionID, &decision))
	assert.Equal(t, "v1", versionID)
	assert.Equal(t, "commit", decision)
}

func TestLogDecision_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, LogDecision(db, ProvenanceEntry{VersionID: "v2", TriggerType: "draw", Decision: "no_op"}))

	var createdAtStr string
	require.NoError(t, db.QueryRow("SELECT created_at FROM provenance_log").Scan(&createdAtStr))
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	require.NoError(t, err)
	assert.False(t, createdAt.Before(before))
}

func TestLogDecision_EmptyOptionalFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	require.NoError(t, LogDecision(db, ProvenanceEntry{VersionID: "v3", TriggerType: "draw", Decision: "no_op"}))

	var contextHash, signalsJSON, evidenceRefs, reason sql.NullString
	require.NoError(t, db.QueryRow("SELECT context_hash, signals_json, evidence_refs, reason FROM provenance_log").Scan(
		&contextHash, &signalsJSON, &evidenceRefs, &reason,
	))
	assert.False(t, contextHash.Valid)
	assert.False(t, signalsJSON.Valid)
	assert.False(t, evidenceRefs.Valid)
	assert.False(t, reason.Valid)
}

func TestLogDecision_Error(t *testing.T) {
	db := setupDB(t)
	db.Close()

	err := LogDecision(db, ProvenanceEntry{VersionID: "v4", TriggerType: "draw", Decision: "commit"})
	assert.Error(t, err)
}

// #endregion log-decision-tests

// #region draw-tests
func TestLogDrawAndReadDraws(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	for i, card := range []string{"the_fool", "ace_of_cups", "the_star"} {
		rec := DrawRecord{
			DrawID:    card,
			ProfileID: "p1",
			Date:      time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Labels:    []label.Label{label.New("bold", label.CategoryMood, 2, label.OriginTransit)},
			CardID:    card,
			Decision:  "commit",
		}
		require.NoError(t, LogDraw(db, "v1", rec))
	}
	require.NoError(t, LogDecision(db, ProvenanceEntry{VersionID: "v1", TriggerType: "replay", Decision: "no_op"}))

	draws, err := ReadDraws(db, 2)
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, "ace_of_cups", draws[0].CardID)
	assert.Equal(t, "the_star", draws[1].CardID)
	assert.Equal(t, "bold", draws[1].Labels[0].Name)
	assert.Equal(t, "commit", draws[1].Decision)

	var hash string
	require.NoError(t, db.QueryRow("SELECT context_hash FROM provenance_log WHERE id = 1").Scan(&hash))
	assert.Equal(t, "p1|2026-03-01", hash)
}

func TestReadDrawsMalformed(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	require.NoError(t, LogDecision(db, ProvenanceEntry{VersionID: "v1", TriggerType: "draw", SignalsJSON: "{nope", Decision: "commit"}))
	_, err := ReadDraws(db, 10)
	assert.Error(t, err)
}

// #endregion draw-tests

// #region null-if-empty-tests
func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "hello", nullIfEmpty("hello"))
}

// #endregion null-if-empty-tests
