package sqlite

import (
	"context"
	"fmt"

	"github.com/ThatDevStudio/ztlctl/internal/model"
)

// AllNodes returns every node row, for the graph engine's lazy load (§4.8)
// and for the integrity checker's structural validation pass.
func AllNodes(ctx context.Context, q Queryer) ([]*model.Node, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, type, subtype, status, maturity, topic, path, aliases, session,
		       archived, supersedes, superseded_by, title, created_at, modified_at,
		       in_degree, out_degree, pagerank, cluster_id, betweenness
		FROM nodes
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*model.Node
	for rows.Next() {
		n, err := scanNodeRow(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// OrphanNodes returns nodes with zero outgoing and zero incoming non-stale
// edges, for the integrity checker's graph-health category and the session
// close pipeline's orphan sweep (§4.6, §4.11).
func OrphanNodes(ctx context.Context, q Queryer) ([]*model.Node, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT n.id, n.type, n.subtype, n.status, n.maturity, n.topic, n.path, n.aliases, n.session,
		       n.archived, n.supersedes, n.superseded_by, n.title, n.created_at, n.modified_at,
		       n.in_degree, n.out_degree, n.pagerank, n.cluster_id, n.betweenness
		FROM nodes n
		WHERE NOT EXISTS (SELECT 1 FROM edges e WHERE e.source_id = n.id AND e.stale = 0)
		  AND NOT EXISTS (SELECT 1 FROM edges e WHERE e.target_id = n.id AND e.stale = 0)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: orphan nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*model.Node
	for rows.Next() {
		n, err := scanNodeRow(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// rowScanner is satisfied by *sql.Rows, letting scanNodeRow share the column
// layout with scanNode (which reads from a *sql.Row instead).
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNodeRow(rows rowScanner) (*model.Node, error) {
	var n model.Node
	var typ, subtype, maturity, aliases, supersedes string
	var archived int
	if err := rows.Scan(
		&n.ID, &typ, &subtype, &n.Status, &maturity, &n.Topic, &n.Path, &aliases, &n.Session,
		&archived, &supersedes, &n.SupersededBy, &n.Title, &n.Created, &n.Modified,
		&n.InDegree, &n.OutDegree, &n.PageRank, &n.ClusterID, &n.Betweenness,
	); err != nil {
		return nil, fmt.Errorf("sqlite: scan node row: %w", err)
	}
	n.Type = model.Kind(typ)
	n.Subtype = model.Subtype(subtype)
	n.Maturity = model.Maturity(maturity)
	n.Archived = archived != 0
	if err := unmarshalJSONSlice(aliases, &n.Aliases); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal aliases for %s: %w", n.ID, err)
	}
	if err := unmarshalJSONSlice(supersedes, &n.Supersedes); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal supersedes for %s: %w", n.ID, err)
	}
	return &n, nil
}

// ClearAllTables truncates every node/edge/tag row, the first half of
// `check --rebuild`'s two-pass procedure: clear, then re-insert nodes, then
// resolve and re-insert edges (§4.11), grounded on the same nodes-then-edges
// ordering as a from-scratch import.
func ClearAllTables(ctx context.Context, ex Execer) error {
	for _, table := range []string{"node_tags", "edges", "nodes_fts", "nodes"} {
		if _, err := ex.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("sqlite: clear %s: %w", table, err)
		}
	}
	return nil
}
