package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/model"
)

func createRelatedNotes(t *testing.T, h *testHarness, n int) []string {
	t.Helper()
	ctx := context.Background()
	// Threshold relaxed to 0 so every other note in the vault qualifies as
	// a candidate; this isolates the idempotence/undo invariants from the
	// exact shape of the lexical/tag/graph/topic scoring functions.
	h.Engine.Config.Reweave.MinScoreThreshold = 0

	var ids []string
	for i := 0; i < n; i++ {
		res, err := h.Create.Create(ctx, CreateInput{
			Kind: model.KindNote, Title: fmt.Sprintf("Related Note %d", i),
			Topic: "graphs", Tags: []string{"domain/graphs"},
			Body: "this note discusses graph theory and related structures", Suppress: true,
		})
		require.NoError(t, err)
		require.True(t, res.OK)
		ids = append(ids, res.Data["id"].(string))
	}
	return ids
}

// §8 scenario 5: reweave idempotence — a second run with no intervening
// edits adds nothing.
func TestReweaveIdempotence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ids := createRelatedNotes(t, h, 10)

	first, err := h.Reweave.Reweave(ctx, ids[0], ReweaveOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Added)

	second, err := h.Reweave.Reweave(ctx, ids[0], ReweaveOptions{})
	require.NoError(t, err)
	assert.Empty(t, second.Added)
	assert.Empty(t, second.Warnings)
}

// §8 scenario 7: the undo law — reweave then undo restores the pre-reweave
// edge set exactly.
func TestReweaveUndoLaw(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ids := createRelatedNotes(t, h, 6)

	g, err := h.Engine.Graph(ctx)
	require.NoError(t, err)
	preEdges := len(g.Out(ids[0]))

	out, err := h.Reweave.Reweave(ctx, ids[0], ReweaveOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, out.Added)

	gAfter, err := h.Engine.Graph(ctx)
	require.NoError(t, err)
	assert.Greater(t, len(gAfter.Out(ids[0])), preEdges)

	undoRes := h.Reweave.Undo(ctx, out.BatchID)
	require.True(t, undoRes.OK)

	gRestored, err := h.Engine.Graph(ctx)
	require.NoError(t, err)
	assert.Equal(t, preEdges, len(gRestored.Out(ids[0])))
}

func TestReweaveGardenSkipped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	createRelatedNotes(t, h, 3)

	res, err := h.Create.Create(ctx, CreateInput{Kind: model.KindNote, Title: "Garden Note", Body: "x", Suppress: true})
	require.NoError(t, err)
	id := res.Data["id"].(string)

	maturity := "seed"
	_, err = h.Engine.Store.DB().ExecContext(ctx, `UPDATE nodes SET maturity = ? WHERE id = ?`, maturity, id)
	require.NoError(t, err)
	h.Engine.InvalidateGraph()

	out, err := h.Reweave.Reweave(ctx, id, ReweaveOptions{})
	require.NoError(t, err)
	assert.Empty(t, out.Added)
	assert.NotEmpty(t, out.Warnings)
}
