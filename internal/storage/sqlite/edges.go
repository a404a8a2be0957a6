package sqlite

import (
	"context"
	"fmt"

	"github.com/ThatDevStudio/ztlctl/internal/model"
)

// UpsertEdge inserts an edge, or updates its weight/layer/staleness if the
// (source, target, type) key already exists — edges have no separate
// update path of their own.
func UpsertEdge(ctx context.Context, ex Execer, e *model.Edge) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO edges (source_id, target_id, edge_type, layer, weight, bidirectional, stale, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, edge_type) DO UPDATE SET
			layer = excluded.layer,
			weight = excluded.weight,
			bidirectional = excluded.bidirectional,
			stale = excluded.stale
	`, e.SourceID, e.TargetID, string(e.Type), string(e.Layer), e.Weight, boolToInt(e.Bidirectional), boolToInt(e.Stale), e.Created)
	if err != nil {
		return fmt.Errorf("sqlite: upsert edge %s->%s: %w", e.SourceID, e.TargetID, err)
	}
	return nil
}

// DeleteEdgesFrom removes all edges sourced at id. Used when the Index
// stage re-extracts links (delete+insert, like the FTS sync) and by the
// integrity checker's aggressive fix.
func DeleteEdgesFrom(ctx context.Context, ex Execer, sourceID string) error {
	_, err := ex.ExecContext(ctx, `DELETE FROM edges WHERE source_id = ?`, sourceID)
	if err != nil {
		return fmt.Errorf("sqlite: delete edges from %s: %w", sourceID, err)
	}
	return nil
}

// MarkEdgeStale marks one edge stale rather than deleting it. Reweave does
// not re-score existing edges, so it never marks an edge stale itself; it
// only prunes edges that are already stale.
func MarkEdgeStale(ctx context.Context, ex Execer, sourceID, targetID string, edgeType model.EdgeType) error {
	_, err := ex.ExecContext(ctx, `
		UPDATE edges SET stale = 1 WHERE source_id = ? AND target_id = ? AND edge_type = ?
	`, sourceID, targetID, string(edgeType))
	if err != nil {
		return fmt.Errorf("sqlite: mark edge stale %s->%s: %w", sourceID, targetID, err)
	}
	return nil
}

// DeleteEdge removes one edge outright. Used by `reweave --prune` (removes
// stale edges) and `reweave --undo` (replays the reweave log in reverse).
func DeleteEdge(ctx context.Context, ex Execer, sourceID, targetID string, edgeType model.EdgeType) error {
	_, err := ex.ExecContext(ctx, `
		DELETE FROM edges WHERE source_id = ? AND target_id = ? AND edge_type = ?
	`, sourceID, targetID, string(edgeType))
	if err != nil {
		return fmt.Errorf("sqlite: delete edge %s->%s: %w", sourceID, targetID, err)
	}
	return nil
}

// OutgoingEdgeCount counts non-stale outgoing edges for a node, used to
// recompute note machine status (§3).
func OutgoingEdgeCount(ctx context.Context, q Queryer, sourceID string) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM edges WHERE source_id = ? AND stale = 0
	`, sourceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count outgoing edges for %s: %w", sourceID, err)
	}
	return count, nil
}

// AllEdges returns every edge in the vault, for the graph engine's lazy load
// (§4.8) and for `check --rebuild`'s two-pass edge-resolution comparison.
func AllEdges(ctx context.Context, q Queryer) ([]*model.Edge, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT source_id, target_id, edge_type, layer, weight, bidirectional, stale, created_at
		FROM edges
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list edges: %w", err)
	}
	defer rows.Close()

	var edges []*model.Edge
	for rows.Next() {
		var e model.Edge
		var edgeType, layer string
		var bidirectional, stale int
		if err := rows.Scan(&e.SourceID, &e.TargetID, &edgeType, &layer, &e.Weight, &bidirectional, &stale, &e.Created); err != nil {
			return nil, fmt.Errorf("sqlite: scan edge: %w", err)
		}
		e.Type = model.EdgeType(edgeType)
		e.Layer = model.Layer(layer)
		e.Bidirectional = bidirectional != 0
		e.Stale = stale != 0
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}

// DanglingEdges returns edges whose source or target no longer has a node
// row, for the integrity checker's graph-health category (§4.11).
func DanglingEdges(ctx context.Context, q Queryer) ([]*model.Edge, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT e.source_id, e.target_id, e.edge_type, e.layer, e.weight, e.bidirectional, e.stale, e.created_at
		FROM edges e
		LEFT JOIN nodes s ON s.id = e.source_id
		LEFT JOIN nodes t ON t.id = e.target_id
		WHERE s.id IS NULL OR t.id IS NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: dangling edges: %w", err)
	}
	defer rows.Close()

	var edges []*model.Edge
	for rows.Next() {
		var e model.Edge
		var edgeType, layer string
		var bidirectional, stale int
		if err := rows.Scan(&e.SourceID, &e.TargetID, &edgeType, &layer, &e.Weight, &bidirectional, &stale, &e.Created); err != nil {
			return nil, fmt.Errorf("sqlite: scan dangling edge: %w", err)
		}
		e.Type = model.EdgeType(edgeType)
		e.Layer = model.Layer(layer)
		e.Bidirectional = bidirectional != 0
		e.Stale = stale != 0
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}
