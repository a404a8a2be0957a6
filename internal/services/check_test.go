package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// §8 scenario 6: rebuilding the relational index from files alone
// reproduces the same node set (modulo materialized metrics, which
// rebuild never recomputes).
func TestCheckRebuildEquivalence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.Engine.Config.Reweave.AutoOnCreate = false

	var ids []string
	for i := 0; i < 8; i++ {
		kind := model.KindNote
		if i%3 == 0 {
			kind = model.KindTask
		}
		res, err := h.Create.Create(ctx, CreateInput{Kind: kind, Title: titleFor(i), Suppress: true})
		require.NoError(t, err)
		require.True(t, res.OK)
		ids = append(ids, res.Data["id"].(string))
	}

	before := map[string]*model.Node{}
	for _, id := range ids {
		n, err := sqlite.GetNode(ctx, h.Engine.Store.DB(), id)
		require.NoError(t, err)
		before[id] = n
	}

	res := h.Check.Rebuild(ctx, "")
	require.True(t, res.OK)
	assert.Equal(t, len(ids), res.Data["nodes"])

	for _, id := range ids {
		after, err := sqlite.GetNode(ctx, h.Engine.Store.DB(), id)
		require.NoError(t, err)
		b := before[id]
		assert.Equal(t, b.Title, after.Title)
		assert.Equal(t, b.Type, after.Type)
		assert.Equal(t, b.Status, after.Status)
		assert.Equal(t, b.Path, after.Path)
	}
}

func titleFor(i int) string {
	return "Rebuild Fixture Node " + string(rune('A'+i))
}

func TestCheckSucceedsOnFreshVault(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.Create.Create(ctx, CreateInput{Kind: model.KindNote, Title: "Solo Note", Suppress: true})
	require.NoError(t, err)

	res := h.Check.Check(ctx)
	assert.True(t, res.OK)
}
