package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SessionLogEntry is one append-only session-log row (§3).
type SessionLogEntry struct {
	ID        int64
	Session   string
	EntryType string
	Summary   string
	Detail    string
	TokenCost int
	Pinned    bool
	Refs      []string
	Metadata  map[string]any
	CreatedAt time.Time
}

// Session log entry types.
const (
	EntryLog          = "log"
	EntryCheckpoint   = "checkpoint"
	EntryDecisionMade = "decision-made"
)

// AppendSessionLog records one session-log entry.
func AppendSessionLog(ctx context.Context, ex Execer, session, entryType, summary, detail string, tokenCost int, pinned bool, refsJSON, metadataJSON string) (int64, error) {
	result, err := ex.ExecContext(ctx, `
		INSERT INTO session_log (session, entry_type, summary, detail, token_cost, pinned, refs, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, session, entryType, summary, detail, tokenCost, boolToInt(pinned), refsJSON, metadataJSON)
	if err != nil {
		return 0, fmt.Errorf("sqlite: append session log for %s: %w", session, err)
	}
	return result.LastInsertId()
}

// SessionEntries returns every entry for a session in chronological order.
func SessionEntries(ctx context.Context, q Queryer, session string) ([]*SessionLogEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, session, entry_type, summary, detail, token_cost, pinned, refs, metadata, created_at
		FROM session_log WHERE session = ? ORDER BY id
	`, session)
	if err != nil {
		return nil, fmt.Errorf("sqlite: session entries for %s: %w", session, err)
	}
	defer rows.Close()

	var entries []*SessionLogEntry
	for rows.Next() {
		var e SessionLogEntry
		var pinned int
		var refsJSON, metadataJSON string
		if err := rows.Scan(&e.ID, &e.Session, &e.EntryType, &e.Summary, &e.Detail, &e.TokenCost, &pinned, &refsJSON, &metadataJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan session entry: %w", err)
		}
		e.Pinned = pinned != 0
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// LatestCheckpoint returns the most recent checkpoint entry for a session,
// or nil if none exists (context() resumes from here, §4.10).
func LatestCheckpoint(ctx context.Context, q Queryer, session string) (*SessionLogEntry, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, session, entry_type, summary, detail, token_cost, pinned, refs, metadata, created_at
		FROM session_log WHERE session = ? AND entry_type = ? ORDER BY id DESC LIMIT 1
	`, session, EntryCheckpoint)
	var e SessionLogEntry
	var pinned int
	var refsJSON, metadataJSON string
	err := row.Scan(&e.ID, &e.Session, &e.EntryType, &e.Summary, &e.Detail, &e.TokenCost, &pinned, &refsJSON, &metadataJSON, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Pinned = pinned != 0
	return &e, nil
}
