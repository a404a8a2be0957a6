// Package sqlite implements ztlctl's relational index: the derived,
// reconstructable half of the three representations described in §1 (files
// on disk are authoritative; the graph is derived from this index).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver" // registers the "sqlite3" driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embeds the pure-Go WASM build

	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite/migrations"
)

// Store wraps the relational index's *sql.DB with vault-engine-specific
// queries. It holds no in-memory cache of its own; the graph engine
// (internal/graph) is what caches, and it invalidates on every commit.
type Store struct {
	db *sql.DB
}

// Open opens (and, if needed, creates and migrates) the relational index at
// path. WAL mode permits concurrent readers; ztlctl's own concurrency model
// still expects a single writer per vault (§5).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", ConnString(path, false))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// The embedded pure-Go build serializes all access through the driver's
	// own connection; a single DB handle avoids cross-connection lock
	// contention on a single-writer vault.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for callers (e.g. the graph engine, the
// integrity checker) that need read-only access beyond this package's
// query surface.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Backup copies the live database file to destPath using SQLite's own
// online backup, safe to run against a database under active WAL writes.
func (s *Store) Backup(ctx context.Context, destPath string) error {
	_, err := s.db.ExecContext(ctx, "VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("sqlite: backup to %s: %w", destPath, err)
	}
	return nil
}

// WithTx runs fn inside a relational transaction, committing on success and
// rolling back on any error fn returns or panic it does not recover from.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// NextCounter atomically increments and returns the next integer for prefix,
// implementing ids.CounterStore. Must be called within the same transaction
// as the rest of the create pipeline to guarantee uniqueness (§4.1).
func NextCounter(tx *sql.Tx, prefix string) (int64, error) {
	var next int64
	err := tx.QueryRow(`
		INSERT INTO counters (prefix, next) VALUES (?, 1)
		ON CONFLICT(prefix) DO UPDATE SET next = next + 1
		RETURNING next
	`, prefix).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("sqlite: next counter for %s: %w", prefix, err)
	}
	return next, nil
}

// txCounterStore adapts a live *sql.Tx to ids.CounterStore for one pipeline
// invocation.
type txCounterStore struct {
	tx *sql.Tx
}

func (t txCounterStore) NextCounter(prefix string) (int64, error) {
	return NextCounter(t.tx, prefix)
}

// TxCounterStore wraps tx so it satisfies ids.CounterStore.
func TxCounterStore(tx *sql.Tx) txCounterStore {
	return txCounterStore{tx: tx}
}
