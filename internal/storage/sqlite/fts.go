package sqlite

import (
	"context"
	"fmt"
)

// IndexFTS refreshes a node's full-text row. The virtual table cannot be
// updated in place (§4.5 Index stage), so this is always delete+insert.
func IndexFTS(ctx context.Context, ex Execer, id, title, body string) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM nodes_fts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: clear fts row for %s: %w", id, err)
	}
	_, err := ex.ExecContext(ctx, `INSERT INTO nodes_fts (id, title, body) VALUES (?, ?, ?)`, id, title, body)
	if err != nil {
		return fmt.Errorf("sqlite: index fts for %s: %w", id, err)
	}
	return nil
}

// RemoveFTS deletes a node's full-text row without reinserting one.
func RemoveFTS(ctx context.Context, ex Execer, id string) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM nodes_fts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: remove fts row for %s: %w", id, err)
	}
	return nil
}

// FTSMatch is one BM25-scored lexical search hit.
type FTSMatch struct {
	ID    string
	Score float64 // raw bm25(); more negative is more relevant, per SQLite's convention
}

// SearchFTS runs a BM25-ranked full-text query over title and body, limited
// to candidateIDs when non-empty (reweave scores a bounded candidate set,
// §4.7). An empty candidateIDs means "search the whole vault" (structured
// retrieval's relevance ranking, §4.9).
func SearchFTS(ctx context.Context, q Queryer, query string, candidateIDs []string, limit int) ([]FTSMatch, error) {
	args := []any{query}
	sqlQuery := `
		SELECT id, bm25(nodes_fts) AS score
		FROM nodes_fts
		WHERE nodes_fts MATCH ?
	`
	if len(candidateIDs) > 0 {
		placeholders := "?"
		for i := 1; i < len(candidateIDs); i++ {
			placeholders += ",?"
		}
		sqlQuery += fmt.Sprintf(" AND id IN (%s)", placeholders)
		for _, id := range candidateIDs {
			args = append(args, id)
		}
	}
	sqlQuery += " ORDER BY score"
	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search fts %q: %w", query, err)
	}
	defer rows.Close()

	var matches []FTSMatch
	for rows.Next() {
		var m FTSMatch
		if err := rows.Scan(&m.ID, &m.Score); err != nil {
			return nil, fmt.Errorf("sqlite: scan fts match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// FTSRowExists reports whether a node currently has a full-text row, for the
// integrity checker's "re-insert missing FTS rows" safe fix (§4.11).
func FTSRowExists(ctx context.Context, q Queryer, id string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes_fts WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: check fts row for %s: %w", id, err)
	}
	return count > 0, nil
}
