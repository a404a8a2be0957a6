package sqlite

import (
	"context"
	"fmt"
	"time"
)

// Event statuses (§3).
const (
	EventPending    = "pending"
	EventInFlight   = "in-flight"
	EventCompleted  = "completed"
	EventFailed     = "failed"
	EventDeadLetter = "dead-letter"
)

// EventRow is one persisted WAL entry.
type EventRow struct {
	ID        string
	EventType string
	Status    string
	Payload   string
	Retries   int
	Session   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InsertEvent writes a new WAL row with status pending, before dispatch —
// this insert-then-dispatch order is the durability guarantee (§5).
func InsertEvent(ctx context.Context, ex Execer, id, eventType, payload, session string) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO event_log (id, event_type, status, payload, session) VALUES (?, ?, ?, ?, ?)
	`, id, eventType, EventPending, payload, session)
	if err != nil {
		return fmt.Errorf("sqlite: insert event %s: %w", id, err)
	}
	return nil
}

// UpdateEventStatus transitions an event's status and sets its retry count
// to retries when retries is non-negative (pass -1 to leave retries untouched).
func UpdateEventStatus(ctx context.Context, ex Execer, id, status string, retries int) error {
	if retries < 0 {
		_, err := ex.ExecContext(ctx, `
			UPDATE event_log SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
		`, status, id)
		if err != nil {
			return fmt.Errorf("sqlite: update event %s status: %w", id, err)
		}
		return nil
	}
	_, err := ex.ExecContext(ctx, `
		UPDATE event_log SET status = ?, retries = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, retries, id)
	if err != nil {
		return fmt.Errorf("sqlite: update event %s status/retries: %w", id, err)
	}
	return nil
}

// PendingEvents returns events in pending or failed status, for drain() to
// process (§4.12).
func PendingEvents(ctx context.Context, q Queryer) ([]*EventRow, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, event_type, status, payload, retries, session, created_at, updated_at
		FROM event_log WHERE status IN (?, ?)
		ORDER BY created_at
	`, EventPending, EventFailed)
	if err != nil {
		return nil, fmt.Errorf("sqlite: pending events: %w", err)
	}
	defer rows.Close()

	var events []*EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(&e.ID, &e.EventType, &e.Status, &e.Payload, &e.Retries, &e.Session, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
