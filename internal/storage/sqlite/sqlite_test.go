package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "ztlctl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInsertAndGetNode(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	n := &model.Node{
		ID: "ztl_deadbeef", Type: model.KindNote, Path: "notes/ml/ztl_deadbeef-transformers.md",
		Title: "Transformer Architectures", Status: model.NoteDraft,
		Created: time.Now().UTC(), Modified: time.Now().UTC(),
	}
	require.NoError(t, store.WithTx(ctx, func(tx *sql.Tx) error {
		return InsertNode(ctx, tx, n)
	}))

	got, err := GetNode(ctx, store.DB(), "ztl_deadbeef")
	require.NoError(t, err)
	assert.Equal(t, n.Title, got.Title)
	assert.Equal(t, model.NoteDraft, got.Status)
}

func TestUpdateNodeNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := UpdateNode(ctx, store.DB(), &model.Node{ID: "ztl_missing"})
	assert.Error(t, err)
}

func TestUpsertEdgeAndOutgoingCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	e := &model.Edge{SourceID: "ztl_a", TargetID: "ztl_b", Type: model.EdgeRelates, Created: time.Now().UTC()}
	require.NoError(t, UpsertEdge(ctx, store.DB(), e))

	count, err := OutgoingEdgeCount(ctx, store.DB(), "ztl_a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, MarkEdgeStale(ctx, store.DB(), "ztl_a", "ztl_b", model.EdgeRelates))
	count, err = OutgoingEdgeCount(ctx, store.DB(), "ztl_a")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNextCounterMonotonic(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var first, second int64
	require.NoError(t, store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		first, err = NextCounter(tx, "LOG-")
		return err
	}))
	require.NoError(t, store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		second, err = NextCounter(tx, "LOG-")
		return err
	}))
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestFTSIndexAndSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, IndexFTS(ctx, store.DB(), "ztl_a", "Graph Databases", "notes about graph databases"))
	matches, err := SearchFTS(ctx, store.DB(), "graph", nil, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ztl_a", matches[0].ID)
}

func TestOrphanNodes(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	n := &model.Node{ID: "ztl_lonely", Type: model.KindNote, Path: "notes/x/ztl_lonely.md", Title: "Lonely"}
	require.NoError(t, InsertNode(ctx, store.DB(), n))

	orphans, err := OrphanNodes(ctx, store.DB())
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "ztl_lonely", orphans[0].ID)
}
