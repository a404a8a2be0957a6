package sqlite

import (
	"context"
	"fmt"
	"strings"
)

// RegisterTag upserts a tag into the registry, splitting it into
// domain/scope if it carries the scoped `domain/scope` form. Unscoped tags
// (no `/`) are registered with an empty scope — the caller is responsible
// for surfacing the "unscoped tag" warning (§4.4 Validate), this just
// persists whatever tag string it is given.
func RegisterTag(ctx context.Context, ex Execer, tag string) error {
	domain, scope := splitTag(tag)
	_, err := ex.ExecContext(ctx, `
		INSERT INTO tags (tag, domain, scope) VALUES (?, ?, ?)
		ON CONFLICT(tag) DO NOTHING
	`, tag, domain, scope)
	if err != nil {
		return fmt.Errorf("sqlite: register tag %s: %w", tag, err)
	}
	return nil
}

func splitTag(tag string) (domain, scope string) {
	if idx := strings.Index(tag, "/"); idx >= 0 {
		return tag[:idx], tag[idx+1:]
	}
	return tag, ""
}

// SetNodeTags replaces a node's tag associations with exactly the given set.
func SetNodeTags(ctx context.Context, ex Execer, nodeID string, tags []string) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM node_tags WHERE node_id = ?`, nodeID); err != nil {
		return fmt.Errorf("sqlite: clear tags for %s: %w", nodeID, err)
	}
	for _, tag := range tags {
		if err := RegisterTag(ctx, ex, tag); err != nil {
			return err
		}
		_, err := ex.ExecContext(ctx, `
			INSERT INTO node_tags (node_id, tag) VALUES (?, ?)
			ON CONFLICT(node_id, tag) DO NOTHING
		`, nodeID, tag)
		if err != nil {
			return fmt.Errorf("sqlite: tag %s with %s: %w", nodeID, tag, err)
		}
	}
	return nil
}

// NodeTags returns the tags associated with a node.
func NodeTags(ctx context.Context, q Queryer, nodeID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT tag FROM node_tags WHERE node_id = ?`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: tags for %s: %w", nodeID, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("sqlite: scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
