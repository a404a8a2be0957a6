package services

import (
	"context"

	"github.com/ThatDevStudio/ztlctl/internal/result"
)

// GraphQueryService exposes the graph engine's read-only algorithms as the
// "graph retrieval" query category (§4.9): related, themes, rank, path,
// gaps, bridges.
type GraphQueryService struct {
	engine *Engine
}

// NewGraphQueryService builds a GraphQueryService.
func NewGraphQueryService(e *Engine) *GraphQueryService {
	return &GraphQueryService{engine: e}
}

// Related runs spreading-activation BFS from seed (§4.8).
func (s *GraphQueryService) Related(ctx context.Context, seed string, maxDepth int) (*result.Result, error) {
	const op = "related"
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	if _, ok := g.Attrs(seed); !ok {
		return result.Fail(op, result.CodeNotFound, "no such node: "+seed, nil), nil
	}
	if maxDepth <= 0 {
		maxDepth = 3
	}
	hits := g.Related(seed, maxDepth)
	var out []map[string]any
	for _, h := range hits {
		attrs, _ := g.Attrs(h.ID)
		out = append(out, map[string]any{"id": h.ID, "score": h.Score, "title": attrs.Title, "type": string(attrs.Type)})
	}
	return result.Ok(op, map[string]any{"results": out}), nil
}

// Themes detects communities via Louvain (§4.8); a fallback warning is
// surfaced on the result when Leiden isn't available (it never is in this
// module — no Leiden implementation appears anywhere in the retrieval pack).
func (s *GraphQueryService) Themes(ctx context.Context) (*result.Result, error) {
	const op = "themes"
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	t := g.Themes()
	res := result.Ok(op, map[string]any{"communities": t.Communities})
	if t.Warning != "" {
		res.Warn(t.Warning)
	}
	return res, nil
}

// Rank runs PageRank over the full graph and returns the top-k nodes
// (§4.8). damping 0 selects the spec default of 0.85.
func (s *GraphQueryService) Rank(ctx context.Context, damping float64, limit int) (*result.Result, error) {
	const op = "rank"
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	if damping <= 0 {
		damping = 0.85
	}
	if limit <= 0 {
		limit = 10
	}
	top := g.RankTop(damping, 100, limit)
	var out []map[string]any
	for _, r := range top {
		attrs, _ := g.Attrs(r.ID)
		out = append(out, map[string]any{"id": r.ID, "score": r.Score, "title": attrs.Title, "type": string(attrs.Type)})
	}
	return result.Ok(op, map[string]any{"results": out}), nil
}

// Path returns the shortest path between two nodes in the undirected
// projection (§4.8).
func (s *GraphQueryService) Path(ctx context.Context, source, target string) (*result.Result, error) {
	const op = "path"
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	if _, ok := g.Attrs(source); !ok {
		return result.Fail(op, result.CodeNotFound, "no such node: "+source, nil), nil
	}
	if _, ok := g.Attrs(target); !ok {
		return result.Fail(op, result.CodeNotFound, "no such node: "+target, nil), nil
	}
	path := g.ShortestPath(source, target)
	if path == nil {
		return result.Ok(op, map[string]any{"path": []string{}, "connected": false}), nil
	}
	return result.Ok(op, map[string]any{"path": path, "connected": true, "length": len(path) - 1}), nil
}

// Gaps surfaces structural holes via Burt's constraint score, lowest
// constraint first (§4.8).
func (s *GraphQueryService) Gaps(ctx context.Context, limit int) (*result.Result, error) {
	const op = "gaps"
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	if limit <= 0 {
		limit = 10
	}
	hits := g.Gaps(limit)
	var out []map[string]any
	for _, h := range hits {
		attrs, _ := g.Attrs(h.ID)
		out = append(out, map[string]any{"id": h.ID, "constraint": h.Constraint, "title": attrs.Title})
	}
	return result.Ok(op, map[string]any{"results": out}), nil
}

// Bridges runs betweenness centrality over the undirected projection,
// returning the top-k brokers between otherwise-disconnected clusters
// (§4.8).
func (s *GraphQueryService) Bridges(ctx context.Context, limit int) (*result.Result, error) {
	const op = "bridges"
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	if limit <= 0 {
		limit = 10
	}
	hits := g.Betweenness(limit)
	var out []map[string]any
	for _, h := range hits {
		attrs, _ := g.Attrs(h.ID)
		out = append(out, map[string]any{"id": h.ID, "score": h.Score, "title": attrs.Title})
	}
	return result.Ok(op, map[string]any{"results": out}), nil
}
