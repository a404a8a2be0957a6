// Package vault implements the vault transaction (§4.3): one relational
// transaction, tracked file writes rooted at the vault, and a deferred
// commit/rollback policy that keeps files and the relational index
// consistent with each other.
package vault

import (
	"context"
	"database/sql"
	"fmt"
)

// Store is the subset of *sqlite.Store a vault transaction needs. Defined
// here (rather than importing the sqlite package's concrete type) so vault
// depends only on database/sql, matching the teacher's habit of depending on
// narrow interfaces at package boundaries.
type Store interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Tx is a scoped unit of work: a relational connection plus tracked file
// create/modify/delete operations, committed or rolled back together.
// Callers must not observe the in-memory graph inside the scope (§4.3);
// Tx has no graph-reading surface of its own for exactly that reason.
type Tx struct {
	ctx    context.Context
	root   string
	sqlTx  *sql.Tx
	writes map[string]*trackedWrite
}

// Run opens a vault transaction rooted at root, invokes fn with it, and
// commits or rolls back depending on whether fn returns an error. invalidate
// is called exactly once, after the relational commit/rollback completes,
// unconditionally — the graph cache is invalidated whether the transaction
// succeeded or failed (§4.3, §9 "Cache invalidation").
func Run(ctx context.Context, store Store, root string, invalidate func(), fn func(tx *Tx) error) (err error) {
	defer func() {
		if invalidate != nil {
			invalidate()
		}
	}()

	var fnErr error
	txErr := store.WithTx(ctx, func(sqlTx *sql.Tx) error {
		tx := &Tx{ctx: ctx, root: root, sqlTx: sqlTx, writes: map[string]*trackedWrite{}}
		fnErr = fn(tx)
		if fnErr != nil {
			tx.rollbackFiles()
			return fnErr
		}
		return nil
	})
	if fnErr != nil {
		return fnErr
	}
	if txErr != nil {
		return fmt.Errorf("vault: commit transaction: %w", txErr)
	}
	return nil
}

// SQL exposes the underlying relational transaction to storage-layer
// helpers (sqlite.InsertNode, sqlite.UpsertEdge, ...).
func (tx *Tx) SQL() *sql.Tx {
	return tx.sqlTx
}

// Context returns the transaction's context, for storage calls that need one.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// rollbackFiles restores every tracked file to its pre-transaction state.
// Best-effort per file: one file's restoration failing must not mask the
// primary error that triggered the rollback, and must not stop the rest of
// the files from being restored (§4.3).
func (tx *Tx) rollbackFiles() {
	for path, w := range tx.writes {
		_ = w.undo(path)
	}
}
