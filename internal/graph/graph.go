// Package graph implements the in-memory directed graph engine lazily built
// from the relational index's edges table (§4.8). No graph-algorithms
// library appears anywhere in the retrieval pack; every algorithm here is
// hand-rolled in the same spirit as the teacher's own bespoke parsers.
package graph

import (
	"context"
	"fmt"

	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// NodeAttrs is the subset of node attributes the graph engine needs for
// result building: (type, title).
type NodeAttrs struct {
	Type  model.Kind
	Title string
}

// Graph is a directed graph over node ids, lazily loaded from the
// relational index at first access per invocation (§4.8). It is a
// per-invocation cache: callers must build a fresh Graph after any commit
// that touches nodes or edges (§4.3, §9 "Cache invalidation").
type Graph struct {
	nodes map[string]NodeAttrs
	out   map[string][]*model.Edge // source -> outgoing, non-stale edges only
	in    map[string][]*model.Edge // target -> incoming, non-stale edges only
}

// Load builds a Graph from the relational index. Stale edges are excluded
// from traversal — they remain in storage for `reweave --prune` but are not
// live relations.
func Load(ctx context.Context, q sqlite.Queryer) (*Graph, error) {
	nodeRows, err := sqlite.AllNodes(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("graph: load nodes: %w", err)
	}
	edgeRows, err := sqlite.AllEdges(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("graph: load edges: %w", err)
	}

	g := &Graph{
		nodes: make(map[string]NodeAttrs, len(nodeRows)),
		out:   make(map[string][]*model.Edge),
		in:    make(map[string][]*model.Edge),
	}
	for _, n := range nodeRows {
		g.nodes[n.ID] = NodeAttrs{Type: n.Type, Title: n.Title}
	}
	for _, e := range edgeRows {
		if e.Stale {
			continue
		}
		g.out[e.SourceID] = append(g.out[e.SourceID], e)
		g.in[e.TargetID] = append(g.in[e.TargetID], e)
	}
	return g, nil
}

// NodeIDs returns every node id in the graph.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Attrs returns a node's (type, title), and whether it exists.
func (g *Graph) Attrs(id string) (NodeAttrs, bool) {
	a, ok := g.nodes[id]
	return a, ok
}

// Out returns the outgoing non-stale edges from id.
func (g *Graph) Out(id string) []*model.Edge {
	return g.out[id]
}

// In returns the incoming non-stale edges to id.
func (g *Graph) In(id string) []*model.Edge {
	return g.in[id]
}

// neighbors returns the undirected neighbor ids of id (both directions),
// deduplicated — the projection every undirected algorithm below starts
// from (§4.8: Related, Path, Gaps, Bridges all state "undirected
// projection").
func (g *Graph) neighbors(id string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range g.out[id] {
		if !seen[e.TargetID] {
			seen[e.TargetID] = true
			out = append(out, e.TargetID)
		}
	}
	for _, e := range g.in[id] {
		if !seen[e.SourceID] {
			seen[e.SourceID] = true
			out = append(out, e.SourceID)
		}
	}
	return out
}
