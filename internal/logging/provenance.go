package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// #region log-decision
// LogDecision writes a provenance entry to the provenance_log table.
func LogDecision(db *sql.DB, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (version_id, context_hash, trigger_type, signals_json, evidence_refs, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.VersionID,
		nullIfEmpty(entry.ContextHash),
		entry.TriggerType,
		nullIfEmpty(entry.SignalsJSON),
		nullIfEmpty(entry.EvidenceRefs),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// LogDraw serializes rec and records it against versionID.
func LogDraw(db *sql.DB, versionID string, rec DrawRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal draw record: %w", err)
	}
	return LogDecision(db, ProvenanceEntry{
		VersionID:    versionID,
		ContextHash:  rec.ProfileID + "|" + rec.Date,
		TriggerType:  "draw",
		SignalsJSON:  string(payload),
		EvidenceRefs: rec.CardID,
		Decision:     rec.Decision,
		Reason:       rec.Fallback,
	})
}

// #endregion log-decision

// #region read-draws
// ReadDraws returns the most recent draw records, oldest first.
func ReadDraws(db *sql.DB, limit int) ([]DrawRecord, error) {
	rows, err := db.Query(
		`SELECT signals_json FROM provenance_log
		 WHERE trigger_type = 'draw' AND signals_json IS NOT NULL
		 ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query draws: %w", err)
	}
	defer rows.Close()

	var out []DrawRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan draw: %w", err)
		}
		var rec DrawRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal draw: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// #endregion read-draws

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
