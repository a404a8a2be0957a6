package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	startRes, err := h.Session.SessionStart(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, startRes.OK)

	_, err = h.Session.SessionLog(ctx, LogInput{
		Session: "sess-1", EntryType: "log", Summary: "did a thing", TokenCost: 10,
	})
	require.NoError(t, err)

	_, err = h.Session.SessionLog(ctx, LogInput{
		Session: "sess-1", EntryType: "checkpoint", Summary: "checkpoint one", TokenCost: 5, Pinned: true,
	})
	require.NoError(t, err)

	briefRes, err := h.Session.Brief(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, briefRes.OK)
	lines := briefRes.Data["lines"].([]string)
	assert.Len(t, lines, 1)

	costRes, err := h.Session.Cost(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, costRes.OK)

	closeRes, err := h.Session.SessionClose(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, closeRes.OK)
}

func TestSessionContextRespectsCheckpoint(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.Session.SessionStart(ctx, "sess-2")
	require.NoError(t, err)

	_, err = h.Session.SessionLog(ctx, LogInput{Session: "sess-2", EntryType: "log", Summary: "before checkpoint", TokenCost: 10})
	require.NoError(t, err)
	_, err = h.Session.SessionLog(ctx, LogInput{Session: "sess-2", EntryType: "checkpoint", Summary: "cp", TokenCost: 1})
	require.NoError(t, err)
	_, err = h.Session.SessionLog(ctx, LogInput{Session: "sess-2", EntryType: "log", Summary: "after checkpoint", TokenCost: 10})
	require.NoError(t, err)

	res, err := h.Session.Context(ctx, "sess-2", 0, false)
	require.NoError(t, err)
	entries := res.Data["entries"].([]map[string]any)
	var summaries []string
	for _, e := range entries {
		summaries = append(summaries, e["summary"].(string))
	}
	assert.NotContains(t, summaries, "before checkpoint")
	assert.Contains(t, summaries, "after checkpoint")
}
