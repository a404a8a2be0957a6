package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/query"
	"github.com/ThatDevStudio/ztlctl/internal/result"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// QueryService implements the structured-retrieval surface (§4.9): search,
// get, list, work_queue, decision_support. All share the filter grammar in
// internal/query; ranking beyond the filter is applied in memory afterward,
// since the relational index has no native notion of the hybrid/graph/
// priority scores the spec defines.
type QueryService struct {
	engine  *Engine
	vectors *VectorService
}

// NewQueryService builds a QueryService.
func NewQueryService(e *Engine, vectors *VectorService) *QueryService {
	return &QueryService{engine: e, vectors: vectors}
}

// hit is one ranked result row, shaped for JSON output.
type hit struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// Search runs the filter grammar plus lexical/recency/graph/hybrid ranking
// (§4.9 "Ranking modes for search").
func (s *QueryService) Search(ctx context.Context, queryText string, now time.Time) (*result.Result, error) {
	const op = "search"
	f, err := query.Parse(queryText, now)
	if err != nil {
		return result.Fail(op, result.CodeInvalidInput, err.Error(), nil), nil
	}

	candidates, _, err := s.filteredCandidates(ctx, f)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}

	db := s.engine.Store.DB()
	var candidateIDs []string
	for _, n := range candidates {
		candidateIDs = append(candidateIDs, n.ID)
	}
	matches, err := sqlite.SearchFTS(ctx, db, f.Text, candidateIDs, 0)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	// bm25() is more-negative-is-better; relevance is displayed and combined
	// as a positive score, so every raw match is negated up front.
	bm25 := make(map[string]float64, len(matches))
	for _, m := range matches {
		bm25[m.ID] = -m.Score
	}

	byID := make(map[string]*model.Node, len(candidates))
	for _, n := range candidates {
		byID[n.ID] = n
	}

	lexNorm := normalizeBM25(matches)

	if f.Sort == query.SortGraph {
		// PageRank is read straight off the node row's materialized metrics
		// (sqlite.SetMaterializedMetrics / graph.MaterializeMetrics); graph
		// sort mode requires that materialization has already run.
		if _, err := s.engine.Graph(ctx); err != nil {
			return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
		}
	}

	var hits []hit
	for id, score := range bm25 {
		n, ok := byID[id]
		if !ok {
			continue
		}
		ranked := score
		switch f.Sort {
		case query.SortRecency:
			ageDays := now.Sub(n.Modified).Hours() / 24
			halfLife := 30.0
			ranked = score * math.Exp(-ageDays*math.Ln2/halfLife)
		case query.SortGraph:
			ranked = score * n.PageRank
		case query.SortRelevance, query.SortPriority, query.SortTitle, query.SortType:
			// relevance is bare BM25; the other sort modes reorder below
			// rather than rescoring, so the raw lexical score is kept as
			// the displayed score.
		}
		if s.engine.Config.Vector.Enabled && f.Text != "" {
			qv := Embed(f.Text)
			dv, _ := s.vectors.Query(ctx, id)
			if len(dv) > 0 {
				w := s.engine.Config.Vector.HybridWeight
				ranked = (1-w)*lexNorm[id] + w*CosineSim(qv, dv)
			}
		}
		hits = append(hits, hit{ID: id, Title: n.Title, Type: string(n.Type), Score: ranked})
	}

	sortHits(hits, f.Sort, byID)
	hits = applyLimit(hits, f.Limit)

	return result.Ok(op, map[string]any{"results": hits, "count": len(hits)}), nil
}

// Get fetches a single node by identifier.
func (s *QueryService) Get(ctx context.Context, id string) (*result.Result, error) {
	const op = "get"
	n, err := sqlite.GetNode(ctx, s.engine.Store.DB(), id)
	if err == sqlite.ErrNotFound {
		return result.Fail(op, result.CodeNotFound, "no such node: "+id, nil), nil
	}
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	tags, err := sqlite.NodeTags(ctx, s.engine.Store.DB(), id)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	raw, err := s.engine.readVaultFile(n.Path)
	body := ""
	if err == nil {
		_, body, _ = ParseFile(string(raw))
	}
	return result.Ok(op, map[string]any{"node": n, "tags": tags, "body": body}), nil
}

// List applies the filter grammar with no lexical ranking, sorted per
// f.Sort.
func (s *QueryService) List(ctx context.Context, queryText string, now time.Time) (*result.Result, error) {
	const op = "list"
	f, err := query.Parse(queryText, now)
	if err != nil {
		return result.Fail(op, result.CodeInvalidInput, err.Error(), nil), nil
	}
	candidates, _, err := s.filteredCandidates(ctx, f)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}

	byID := make(map[string]*model.Node, len(candidates))
	var hits []hit
	for _, n := range candidates {
		byID[n.ID] = n
		hits = append(hits, hit{ID: n.ID, Title: n.Title, Type: string(n.Type)})
	}
	sortHits(hits, f.Sort, byID)
	hits = applyLimit(hits, f.Limit)
	return result.Ok(op, map[string]any{"results": hits, "count": len(hits)}), nil
}

// WorkQueue lists open tasks (status inbox/active/blocked) ordered by
// priority*2 + impact*1.5 + (4 - effort_weight) (§4.9). Priority/impact/
// effort are carried as scoped tags (`priority/high`, `impact/medium`,
// `effort/low`) since the task content model has no dedicated columns for
// them; a missing tag counts as weight 0, so a missing priority or impact
// tag adds nothing and a missing effort tag adds the full 4.
func (s *QueryService) WorkQueue(ctx context.Context, now time.Time) (*result.Result, error) {
	const op = "work_queue"
	f := query.Default()
	f.Type = string(model.KindTask)
	f.Archived = query.ArchivedExclude

	nodes, tagsByID, err := s.filteredCandidates(ctx, f)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}

	type scored struct {
		hit
		score float64
	}
	var open []scored
	for _, n := range nodes {
		switch n.Status {
		case model.TaskInbox, model.TaskActive, model.TaskBlocked:
		default:
			continue
		}
		sc := workQueueScore(tagsByID[n.ID])
		open = append(open, scored{hit{ID: n.ID, Title: n.Title, Type: string(n.Type), Score: sc}, sc})
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].score > open[j].score })

	var hits []hit
	for _, o := range open {
		hits = append(hits, o.hit)
	}
	return result.Ok(op, map[string]any{"results": hits, "count": len(hits)}), nil
}

func workQueueScore(tags []string) float64 {
	priority := tagWeight(tags, "priority", map[string]float64{"high": 3, "medium": 2, "low": 1})
	impact := tagWeight(tags, "impact", map[string]float64{"high": 3, "medium": 2, "low": 1})
	effort := tagWeight(tags, "effort", map[string]float64{"low": 1, "medium": 2, "high": 3})
	return priority*2 + impact*1.5 + (4 - effort)
}

func tagWeight(tags []string, domain string, levels map[string]float64) float64 {
	for _, t := range tags {
		d, scope := splitTagLocal(t)
		if d == domain {
			return levels[scope]
		}
	}
	return 0
}

func splitTagLocal(tag string) (domain, scope string) {
	if idx := strings.Index(tag, "/"); idx >= 0 {
		return tag[:idx], tag[idx+1:]
	}
	return tag, ""
}

// DecisionSupport surfaces proposed/accepted decisions relevant to a topic,
// for the "should I revisit an existing decision" agent workflow (§4.10
// layer 1's "recent decisions").
func (s *QueryService) DecisionSupport(ctx context.Context, topic string, now time.Time) (*result.Result, error) {
	const op = "decision_support"
	f := query.Default()
	f.Type = string(model.KindNote)
	f.Subtype = string(model.SubtypeDecision)
	f.Topic = topic

	nodes, _, err := s.filteredCandidates(ctx, f)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Modified.After(nodes[j].Modified) })

	var hits []hit
	for _, n := range nodes {
		if n.Status != model.DecisionProposed && n.Status != model.DecisionAccepted {
			continue
		}
		hits = append(hits, hit{ID: n.ID, Title: n.Title, Type: n.Status})
	}
	return result.Ok(op, map[string]any{"results": hits, "count": len(hits)}), nil
}

// filteredCandidates loads every node, applies the structured filter, and
// returns each surviving node alongside its resolved tag set (query.Matches
// needs tags resolved per node, not per the filter, so the tag lookups are
// batched here rather than re-queried per signal downstream).
func (s *QueryService) filteredCandidates(ctx context.Context, f query.Filter) ([]*model.Node, map[string][]string, error) {
	db := s.engine.Store.DB()
	all, err := sqlite.AllNodes(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	tagsByID := make(map[string][]string, len(all))
	var out []*model.Node
	for _, n := range all {
		tags, err := sqlite.NodeTags(ctx, db, n.ID)
		if err != nil {
			return nil, nil, err
		}
		tagsByID[n.ID] = tags
		if query.Matches(f, n, tags) {
			out = append(out, n)
		}
	}
	return out, tagsByID, nil
}

func sortHits(hits []hit, mode query.Sort, byID map[string]*model.Node) {
	switch mode {
	case query.SortTitle:
		sort.SliceStable(hits, func(i, j int) bool { return byID[hits[i].ID].Title < byID[hits[j].ID].Title })
	case query.SortType:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Type < hits[j].Type })
	case query.SortRecency:
		sort.SliceStable(hits, func(i, j int) bool {
			return byID[hits[i].ID].Modified.After(byID[hits[j].ID].Modified)
		})
	default:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	}
}

func applyLimit(hits []hit, limit int) []hit {
	if limit > 0 && len(hits) > limit {
		return hits[:limit]
	}
	return hits
}
