package sqlite

import (
	"context"
	"fmt"

	"github.com/ThatDevStudio/ztlctl/internal/model"
)

// ReweaveLogEntry is one recorded edge addition or removal from a reweave
// pass, append-only (§3).
type ReweaveLogEntry struct {
	ID       int64
	BatchID  string
	SourceID string
	TargetID string
	EdgeType model.EdgeType
	Action   string // "add" | "remove"
	Score    float64
	Undone   bool
}

// AppendReweaveLog records one edge action for a batch.
func AppendReweaveLog(ctx context.Context, ex Execer, batchID, sourceID, targetID string, edgeType model.EdgeType, action string, score float64) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO reweave_log (batch_id, source_id, target_id, edge_type, action, score)
		VALUES (?, ?, ?, ?, ?, ?)
	`, batchID, sourceID, targetID, string(edgeType), action, score)
	if err != nil {
		return fmt.Errorf("sqlite: append reweave log for batch %s: %w", batchID, err)
	}
	return nil
}

// ReweaveBatch returns every (non-undone) entry for a batch id, in insertion
// order — the order `--undo` must replay in reverse.
func ReweaveBatch(ctx context.Context, q Queryer, batchID string) ([]*ReweaveLogEntry, error) {
	return queryReweaveEntries(ctx, q, `
		SELECT id, batch_id, source_id, target_id, edge_type, action, score, undone
		FROM reweave_log WHERE batch_id = ? AND undone = 0 ORDER BY id
	`, batchID)
}

// MostRecentReweaveBatch returns the batch id of the latest non-undone
// reweave entry, for `--undo` with no explicit batch argument.
func MostRecentReweaveBatch(ctx context.Context, q Queryer) (string, error) {
	var batchID string
	err := q.QueryRowContext(ctx, `
		SELECT batch_id FROM reweave_log WHERE undone = 0 ORDER BY id DESC LIMIT 1
	`).Scan(&batchID)
	if err != nil {
		return "", fmt.Errorf("sqlite: most recent reweave batch: %w", err)
	}
	return batchID, nil
}

// MarkBatchUndone flags every entry of a batch as undone, after the caller
// has replayed the edge actions in reverse.
func MarkBatchUndone(ctx context.Context, ex Execer, batchID string) error {
	_, err := ex.ExecContext(ctx, `UPDATE reweave_log SET undone = 1 WHERE batch_id = ?`, batchID)
	if err != nil {
		return fmt.Errorf("sqlite: mark batch %s undone: %w", batchID, err)
	}
	return nil
}

// StaleEdges returns edges marked stale, for `reweave --prune`.
func StaleEdges(ctx context.Context, q Queryer) ([]*model.Edge, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT source_id, target_id, edge_type, layer, weight, bidirectional, stale, created_at
		FROM edges WHERE stale = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: stale edges: %w", err)
	}
	defer rows.Close()

	var edges []*model.Edge
	for rows.Next() {
		var e model.Edge
		var edgeType, layer string
		var bidirectional, stale int
		if err := rows.Scan(&e.SourceID, &e.TargetID, &edgeType, &layer, &e.Weight, &bidirectional, &stale, &e.Created); err != nil {
			return nil, fmt.Errorf("sqlite: scan stale edge: %w", err)
		}
		e.Type = model.EdgeType(edgeType)
		e.Layer = model.Layer(layer)
		e.Bidirectional = bidirectional != 0
		e.Stale = stale != 0
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}

func queryReweaveEntries(ctx context.Context, q Queryer, query string, args ...any) ([]*ReweaveLogEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query reweave log: %w", err)
	}
	defer rows.Close()

	var entries []*ReweaveLogEntry
	for rows.Next() {
		var e ReweaveLogEntry
		var edgeType string
		var undone int
		if err := rows.Scan(&e.ID, &e.BatchID, &e.SourceID, &e.TargetID, &edgeType, &e.Action, &e.Score, &undone); err != nil {
			return nil, fmt.Errorf("sqlite: scan reweave log entry: %w", err)
		}
		e.EdgeType = model.EdgeType(edgeType)
		e.Undone = undone != 0
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
