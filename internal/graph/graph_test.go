package graph

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// buildLine sets up a -> b -> c -> d, a chain, for path and related tests.
func buildLine(t *testing.T) (*sqlite.Store, *Graph) {
	t.Helper()
	dir := t.TempDir()
	store, err := sqlite.Open(filepath.Join(dir, "ztlctl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	now := time.Now().UTC()
	ids := []string{"ztl_a", "ztl_b", "ztl_c", "ztl_d"}
	for _, id := range ids {
		n := &model.Node{ID: id, Type: model.KindNote, Path: "notes/" + id + ".md", Title: id, Status: model.NoteDraft, Created: now, Modified: now}
		require.NoError(t, sqlite.InsertNode(ctx, store.DB(), n))
	}
	edges := [][2]string{{"ztl_a", "ztl_b"}, {"ztl_b", "ztl_c"}, {"ztl_c", "ztl_d"}}
	for _, e := range edges {
		edge := &model.Edge{SourceID: e[0], TargetID: e[1], Type: model.EdgeRelates, Created: now}
		require.NoError(t, sqlite.UpsertEdge(ctx, store.DB(), edge))
	}

	g, err := Load(ctx, store.DB())
	require.NoError(t, err)
	return store, g
}

func TestLoadExcludesStaleEdges(t *testing.T) {
	store, g := buildLine(t)
	ctx := context.Background()

	require.NoError(t, sqlite.MarkEdgeStale(ctx, store.DB(), "ztl_c", "ztl_d", model.EdgeRelates))
	g2, err := Load(ctx, store.DB())
	require.NoError(t, err)

	assert.Equal(t, -1, g2.ShortestPathLength("ztl_c", "ztl_d"))
	assert.Equal(t, 3, g.ShortestPathLength("ztl_a", "ztl_d"))
}

func TestShortestPath(t *testing.T) {
	_, g := buildLine(t)

	path := g.ShortestPath("ztl_a", "ztl_d")
	assert.Equal(t, []string{"ztl_a", "ztl_b", "ztl_c", "ztl_d"}, path)
	assert.Nil(t, g.ShortestPath("ztl_a", "ztl_missing"))
	assert.Equal(t, []string{"ztl_a"}, g.ShortestPath("ztl_a", "ztl_a"))
}

func TestRelatedDecaysByHop(t *testing.T) {
	_, g := buildLine(t)

	hits := g.Related("ztl_a", 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "ztl_b", hits[0].ID)
	assert.InDelta(t, 0.5, hits[0].Score, 1e-9)
	assert.Equal(t, "ztl_c", hits[1].ID)
	assert.InDelta(t, 0.25, hits[1].Score, 1e-9)
}

func TestPageRankSumsToApproxOne(t *testing.T) {
	_, g := buildLine(t)

	ranks := g.PageRank(0.85, 50)
	require.Len(t, ranks, 4)
	total := 0.0
	for _, r := range ranks {
		total += r
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}

func TestThemesFallsBackToLouvain(t *testing.T) {
	_, g := buildLine(t)

	result := g.Themes()
	assert.Contains(t, result.Warning, "Louvain fallback")
	assert.Len(t, result.Communities, 4)
}

func TestGapsSkipsIsolatedNodes(t *testing.T) {
	store, _ := buildLine(t)
	ctx := context.Background()
	now := time.Now().UTC()
	isolated := &model.Node{ID: "ztl_e", Type: model.KindNote, Path: "notes/ztl_e.md", Title: "ztl_e", Status: model.NoteDraft, Created: now, Modified: now}
	require.NoError(t, sqlite.InsertNode(ctx, store.DB(), isolated))
	g, err := Load(ctx, store.DB())
	require.NoError(t, err)

	hits := g.Gaps(0)
	for _, h := range hits {
		assert.NotEmpty(t, h.ID)
		assert.NotEqual(t, "ztl_e", h.ID)
	}
	assert.Len(t, hits, 4)
}

func TestBetweennessMiddleNodesScoreHigher(t *testing.T) {
	_, g := buildLine(t)

	hits := g.Betweenness(0)
	scores := map[string]float64{}
	for _, h := range hits {
		scores[h.ID] = h.Score
	}
	assert.Greater(t, scores["ztl_b"], scores["ztl_a"])
	assert.Greater(t, scores["ztl_c"], scores["ztl_d"])
}

func TestMaterializeMetricsPersists(t *testing.T) {
	store, g := buildLine(t)
	ctx := context.Background()

	require.NoError(t, g.MaterializeMetrics(ctx, store.DB(), 0.85, 50))

	got, err := sqlite.GetNode(ctx, store.DB(), "ztl_b")
	require.NoError(t, err)
	assert.Greater(t, got.PageRank, 0.0)
	assert.Equal(t, 1, got.InDegree)
	assert.Equal(t, 1, got.OutDegree)
}
