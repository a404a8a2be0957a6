package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/result"
)

func decisionSections() map[string]string {
	return map[string]string{
		"Context":       "we need to pick a database",
		"Choice":        "sqlite",
		"Rationale":     "single-file, embedded, enough for a vault",
		"Alternatives":  "postgres, a flat file",
		"Consequences":  "no concurrent writers across processes",
	}
}

// §8 scenario 3: a decision's body becomes immutable once accepted; the
// only path to change it afterward is supersession.
func TestDecisionImmutability(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	createRes, err := h.Create.Create(ctx, CreateInput{
		Kind: model.KindNote, Subtype: model.SubtypeDecision, Title: "Pick a database",
		Sections: decisionSections(),
	})
	require.NoError(t, err)
	require.True(t, createRes.OK)
	id := createRes.Data["id"].(string)

	accepted := model.DecisionAccepted
	updRes, err := h.Update.Update(ctx, UpdateInput{ID: id, Status: &accepted})
	require.NoError(t, err)
	require.True(t, updRes.OK)

	newBody := "# Pick a database\n\nsomething else entirely"
	bodyRes, err := h.Update.Update(ctx, UpdateInput{ID: id, Body: &newBody})
	require.NoError(t, err)
	assert.False(t, bodyRes.OK)
	assert.Equal(t, result.CodeImmutable, bodyRes.Error.Code)

	superRes, err := h.Update.Supersede(ctx, h.Create, id, CreateInput{
		Kind: model.KindNote, Subtype: model.SubtypeDecision, Title: "Pick a database v2",
		Sections: decisionSections(),
	})
	require.NoError(t, err)
	require.True(t, superRes.OK)
	newID := superRes.Data["new_id"].(string)
	assert.NotEqual(t, id, newID)

	oldGet, err := h.Query.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, oldGet.OK)
	oldNode := oldGet.Data["node"].(*model.Node)
	assert.Equal(t, model.DecisionSuperseded, oldNode.Status)
}

func TestUpdateInvalidTransition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	createRes, err := h.Create.Create(ctx, CreateInput{
		Kind: model.KindNote, Subtype: model.SubtypeDecision, Title: "Pick a queue",
		Sections: decisionSections(),
	})
	require.NoError(t, err)
	id := createRes.Data["id"].(string)

	superseded := model.DecisionSuperseded
	res, err := h.Update.Update(ctx, UpdateInput{ID: id, Status: &superseded})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, result.CodeTransition, res.Error.Code)
}
