package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThatDevStudio/ztlctl/internal/model"
)

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("sqlite: not found")

// Queryer is satisfied by both *sql.DB and *sql.Tx, letting read helpers run
// either standalone or inside a caller's transaction.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Execer is satisfied by both *sql.DB and *sql.Tx for write helpers.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertNode inserts a new node row. Called once per node, from the Create
// pipeline's Index stage (§4.4). Re-inserting an existing id is a CONFLICT
// at the caller's layer, not here — this performs a plain INSERT.
func InsertNode(ctx context.Context, ex Execer, n *model.Node) error {
	aliases, err := json.Marshal(n.Aliases)
	if err != nil {
		return fmt.Errorf("sqlite: marshal aliases: %w", err)
	}
	supersedes, err := json.Marshal(n.Supersedes)
	if err != nil {
		return fmt.Errorf("sqlite: marshal supersedes: %w", err)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO nodes (
			id, type, subtype, status, maturity, topic, path, aliases, session,
			archived, supersedes, superseded_by, title, created_at, modified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID, string(n.Type), string(n.Subtype), n.Status, string(n.Maturity), n.Topic, n.Path,
		string(aliases), n.Session, boolToInt(n.Archived), string(supersedes), n.SupersededBy,
		n.Title, n.Created, n.Modified,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert node %s: %w", n.ID, err)
	}
	return nil
}

// UpdateNode overwrites the mutable fields of an existing node row. Called
// from the Update pipeline's Index stage.
func UpdateNode(ctx context.Context, ex Execer, n *model.Node) error {
	aliases, err := json.Marshal(n.Aliases)
	if err != nil {
		return fmt.Errorf("sqlite: marshal aliases: %w", err)
	}
	supersedes, err := json.Marshal(n.Supersedes)
	if err != nil {
		return fmt.Errorf("sqlite: marshal supersedes: %w", err)
	}
	result, err := ex.ExecContext(ctx, `
		UPDATE nodes SET
			status = ?, maturity = ?, topic = ?, path = ?, aliases = ?,
			archived = ?, supersedes = ?, superseded_by = ?, title = ?, modified_at = ?
		WHERE id = ?
	`,
		n.Status, string(n.Maturity), n.Topic, n.Path, string(aliases),
		boolToInt(n.Archived), string(supersedes), n.SupersededBy, n.Title, n.Modified, n.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update node %s: %w", n.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update node %s rows affected: %w", n.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("sqlite: update node %s: %w", n.ID, ErrNotFound)
	}
	return nil
}

// GetNode fetches a node by id.
func GetNode(ctx context.Context, q Queryer, id string) (*model.Node, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, type, subtype, status, maturity, topic, path, aliases, session,
		       archived, supersedes, superseded_by, title, created_at, modified_at,
		       in_degree, out_degree, pagerank, cluster_id, betweenness
		FROM nodes WHERE id = ?
	`, id)
	return scanNode(row)
}

// GetNodeByPath fetches a node by its vault-relative path.
func GetNodeByPath(ctx context.Context, q Queryer, path string) (*model.Node, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, type, subtype, status, maturity, topic, path, aliases, session,
		       archived, supersedes, superseded_by, title, created_at, modified_at,
		       in_degree, out_degree, pagerank, cluster_id, betweenness
		FROM nodes WHERE path = ?
	`, path)
	return scanNode(row)
}

func scanNode(row *sql.Row) (*model.Node, error) {
	var n model.Node
	var typ, subtype, maturity, aliases, supersedes string
	var archived int
	if err := row.Scan(
		&n.ID, &typ, &subtype, &n.Status, &maturity, &n.Topic, &n.Path, &aliases, &n.Session,
		&archived, &supersedes, &n.SupersededBy, &n.Title, &n.Created, &n.Modified,
		&n.InDegree, &n.OutDegree, &n.PageRank, &n.ClusterID, &n.Betweenness,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: scan node: %w", err)
	}
	n.Type = model.Kind(typ)
	n.Subtype = model.Subtype(subtype)
	n.Maturity = model.Maturity(maturity)
	n.Archived = archived != 0
	if err := json.Unmarshal([]byte(aliases), &n.Aliases); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal aliases for %s: %w", n.ID, err)
	}
	if err := json.Unmarshal([]byte(supersedes), &n.Supersedes); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal supersedes for %s: %w", n.ID, err)
	}
	return &n, nil
}

// DeleteNode removes a node row outright. No pipeline calls it: rebuild
// clears all tables instead and the integrity checker archives orphans —
// the engine itself never deletes user content (archive only, §1 non-goals).
func DeleteNode(ctx context.Context, ex Execer, id string) error {
	_, err := ex.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete node %s: %w", id, err)
	}
	return nil
}

// SetMaterializedMetrics writes graph-engine-computed metrics onto a node
// row so SQL-level ranked search doesn't require the in-memory graph
// (§4.8's materialize_metrics).
func SetMaterializedMetrics(ctx context.Context, ex Execer, id string, inDeg, outDeg int, pagerank float64, clusterID int, betweenness float64) error {
	_, err := ex.ExecContext(ctx, `
		UPDATE nodes SET in_degree = ?, out_degree = ?, pagerank = ?, cluster_id = ?, betweenness = ?
		WHERE id = ?
	`, inDeg, outDeg, pagerank, clusterID, betweenness, id)
	if err != nil {
		return fmt.Errorf("sqlite: set materialized metrics for %s: %w", id, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
