package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/result"
)

// §8 scenario 1: re-creating an identical title collides with CONFLICT and
// surfaces the existing id/title in the error detail.
func TestCreateCollision(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	in := CreateInput{Kind: model.KindNote, Title: "Transformer Architectures", Body: "first draft"}
	res, err := h.Create.Create(ctx, in)
	require.NoError(t, err)
	require.True(t, res.OK)
	firstID := res.Data["id"].(string)

	res2, err := h.Create.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, res2.OK)
	assert.Equal(t, result.CodeConflict, res2.Error.Code)
	assert.Equal(t, firstID, res2.Error.Detail["existing_id"])
	assert.Equal(t, "Transformer Architectures", res2.Error.Detail["existing_title"])
}

// §8 scenario 2: titles that normalize to the same content hash collide
// even when their surface punctuation/spacing differs.
func TestCreateHashStability(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.Create.Create(ctx, CreateInput{Kind: model.KindNote, Title: "Café — Notes!", Body: "x"})
	require.NoError(t, err)
	require.True(t, res.OK)

	res2, err := h.Create.Create(ctx, CreateInput{Kind: model.KindNote, Title: "  Café   notes", Body: "y"})
	require.NoError(t, err)
	assert.False(t, res2.OK)
	assert.Equal(t, result.CodeConflict, res2.Error.Code)
}

func TestCreateUnknownKind(t *testing.T) {
	h := newHarness(t)
	res, err := h.Create.Create(context.Background(), CreateInput{Kind: model.Kind("bogus"), Title: "x"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, result.CodeInvalidInput, res.Error.Code)
}

func TestCreateMissingTitle(t *testing.T) {
	h := newHarness(t)
	res, err := h.Create.Create(context.Background(), CreateInput{Kind: model.KindNote, Title: "   "})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, result.CodeInvalidInput, res.Error.Code)
}
