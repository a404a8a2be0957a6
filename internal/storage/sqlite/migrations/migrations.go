// Package migrations holds ztlctl's ordered schema migrations. Each entry is
// idempotent: it checks the current schema before altering it, so re-running
// RunMigrations against an already-upgraded vault is a no-op.
package migrations

import (
	"database/sql"
	"fmt"
)

// Migration is one named, idempotent schema change.
type Migration struct {
	Name string
	Func func(*sql.DB) error
}

// registered is the ordered list of all migrations. New migrations are
// appended; existing entries are never reordered or removed once a released
// vault may have run them.
var registered = []Migration{
	{"materialized_metrics_defaults", migrateMaterializedMetricsDefaults},
	{"fts_external_content", migrateFTSExternalContent},
}

// Run executes every registered migration in order.
func Run(db *sql.DB) error {
	for _, m := range registered {
		if err := m.Func(db); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("check schema for %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, typ string
		var notnull, pk int
		var dflt *string
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("scan column info for %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// migrateMaterializedMetricsDefaults is a placeholder for a released vault
// whose nodes table predates the materialized-metrics columns; on a fresh
// vault (schema.go already declares them) this is a no-op.
func migrateMaterializedMetricsDefaults(db *sql.DB) error {
	for _, col := range []struct{ name, ddl string }{
		{"pagerank", "REAL NOT NULL DEFAULT 0"},
		{"cluster_id", "INTEGER NOT NULL DEFAULT 0"},
		{"betweenness", "REAL NOT NULL DEFAULT 0"},
	} {
		exists, err := columnExists(db, "nodes", col.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE nodes ADD COLUMN %s %s", col.name, col.ddl)); err != nil {
			return fmt.Errorf("add nodes.%s: %w", col.name, err)
		}
	}
	return nil
}

// migrateFTSExternalContent ensures nodes_fts exists even for vaults created
// before the full-text index was introduced.
func migrateFTSExternalContent(db *sql.DB) error {
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='nodes_fts'`).Scan(&name)
	if err == sql.ErrNoRows {
		_, err := db.Exec(`CREATE VIRTUAL TABLE nodes_fts USING fts5(id UNINDEXED, title, body)`)
		if err != nil {
			return fmt.Errorf("create nodes_fts: %w", err)
		}
		return nil
	}
	return err
}
