package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// UpsertVector stores (or replaces) a node's embedding, for the optional
// semantic-search vector store (§4.4 Index stage, "if vectors available").
func UpsertVector(ctx context.Context, ex Execer, nodeID string, embedding []float64) error {
	raw, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("sqlite: marshal embedding for %s: %w", nodeID, err)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO vectors (node_id, embedding, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(node_id) DO UPDATE SET embedding = excluded.embedding, updated_at = CURRENT_TIMESTAMP
	`, nodeID, string(raw))
	if err != nil {
		return fmt.Errorf("sqlite: upsert vector for %s: %w", nodeID, err)
	}
	return nil
}

// GetVector fetches a node's stored embedding, or ErrNotFound if none has
// been indexed yet (a candidate with no embedding at query time, §9 open
// question 2).
func GetVector(ctx context.Context, q Queryer, nodeID string) ([]float64, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT embedding FROM vectors WHERE node_id = ?`, nodeID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get vector for %s: %w", nodeID, err)
	}
	var embedding []float64
	if err := json.Unmarshal([]byte(raw), &embedding); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal embedding for %s: %w", nodeID, err)
	}
	return embedding, nil
}

// AllVectors returns every stored embedding, keyed by node id.
func AllVectors(ctx context.Context, q Queryer) (map[string][]float64, error) {
	rows, err := q.QueryContext(ctx, `SELECT node_id, embedding FROM vectors`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list vectors: %w", err)
	}
	defer rows.Close()

	out := map[string][]float64{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan vector: %w", err)
		}
		var embedding []float64
		if err := json.Unmarshal([]byte(raw), &embedding); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal embedding for %s: %w", id, err)
		}
		out[id] = embedding
	}
	return out, rows.Err()
}
