package graph

import (
	"context"
	"fmt"

	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// MaterializeMetrics computes PageRank, in/out degree, cluster id, and
// betweenness for every node and writes them onto the nodes table, enabling
// SQL-level ranked search without rebuilding the graph on every query
// (§4.8's materialize_metrics).
func (g *Graph) MaterializeMetrics(ctx context.Context, ex sqlite.Execer, damping float64, maxIter int) error {
	pagerank := g.PageRank(damping, maxIter)
	themes := g.Themes()
	betweenness := g.Betweenness(0)
	betweennessByID := make(map[string]float64, len(betweenness))
	for _, b := range betweenness {
		betweennessByID[b.ID] = b.Score
	}

	for _, id := range g.NodeIDs() {
		inDeg := len(g.In(id))
		outDeg := len(g.Out(id))
		err := sqlite.SetMaterializedMetrics(ctx, ex, id, inDeg, outDeg, pagerank[id], themes.Communities[id], betweennessByID[id])
		if err != nil {
			return fmt.Errorf("graph: materialize metrics for %s: %w", id, err)
		}
	}
	return nil
}
