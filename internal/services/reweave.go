package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/result"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
	"github.com/ThatDevStudio/ztlctl/internal/vault"
)

// ReweaveService implements the reweave pipeline (§4.7): Discover -> Score
// -> Filter -> Present -> Connect. It scores four normalized signals for
// every candidate in the vault and proposes new edges above a threshold.
type ReweaveService struct {
	engine *Engine
}

// NewReweaveService builds a ReweaveService.
func NewReweaveService(e *Engine) *ReweaveService {
	return &ReweaveService{engine: e}
}

// ReweaveOptions configures one reweave invocation.
type ReweaveOptions struct {
	DryRun  bool
	Prune   bool
	Session string
}

// Candidate is one scored reweave proposal.
type Candidate struct {
	TargetID    string
	Score       float64
	Lexical     float64
	Tags        float64
	Graph       float64
	Topic       float64
}

// Outcome is the result of one reweave pass over a source node.
type Outcome struct {
	SourceID string
	BatchID  string
	Added    []Candidate
	Pruned   int
	Warnings []string
}

// Reweave scores every other node against sourceID and adds edges for
// candidates scoring at or above the configured threshold, capped at
// max_links_per_note (§4.7). Garden-protected nodes (a non-null maturity)
// never receive new outgoing edges from reweave; it may still add an
// incoming edge pointed at one.
func (s *ReweaveService) Reweave(ctx context.Context, sourceID string, opts ReweaveOptions) (*Outcome, error) {
	cfg := s.engine.Config.Reweave
	batchID := uuid.NewString()
	out := &Outcome{SourceID: sourceID, BatchID: batchID}

	var source *model.Node
	txErr := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		var err error
		source, err = sqlite.GetNode(ctx, tx.SQL(), sourceID)
		if err != nil {
			return fmt.Errorf("reweave: load source %s: %w", sourceID, err)
		}
		if source.Maturity.Garden() {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s has a garden maturity; reweave skipped", sourceID))
			return nil
		}

		g, err := s.engine.Graph(ctx)
		if err != nil {
			return fmt.Errorf("reweave: load graph: %w", err)
		}

		sourceTags, err := sqlite.NodeTags(ctx, tx.SQL(), sourceID)
		if err != nil {
			return err
		}
		nodes, err := sqlite.AllNodes(ctx, tx.SQL())
		if err != nil {
			return err
		}
		existing := map[string]bool{}
		for _, e := range g.Out(sourceID) {
			existing[e.TargetID] = true
		}

		var sourceFTSBody string
		row := tx.SQL().QueryRowContext(ctx, `SELECT body FROM nodes_fts WHERE id = ?`, sourceID)
		_ = row.Scan(&sourceFTSBody)

		var candidateIDs []string
		for _, n := range nodes {
			if n.ID == sourceID || n.Archived || existing[n.ID] {
				continue
			}
			candidateIDs = append(candidateIDs, n.ID)
		}

		lexScores := map[string]float64{}
		if sourceFTSBody != "" || source.Title != "" {
			matches, err := sqlite.SearchFTS(ctx, tx.SQL(), ftsQuery(source.Title), candidateIDs, 0)
			if err != nil {
				return fmt.Errorf("reweave: lexical search: %w", err)
			}
			lexScores = normalizeBM25(matches)
		}

		var candidates []Candidate
		for _, n := range nodes {
			if n.ID == sourceID || n.Archived || existing[n.ID] {
				continue
			}
			targetTags, err := sqlite.NodeTags(ctx, tx.SQL(), n.ID)
			if err != nil {
				return err
			}

			lexical := lexScores[n.ID]
			tags := jaccard(sourceTags, targetTags)
			graphScore := inverseShortestPath(g, sourceID, n.ID)
			topic := 0.0
			if source.Topic != "" && source.Topic == n.Topic {
				topic = 1.0
			}

			score := cfg.WeightLexical*lexical + cfg.WeightTags*tags + cfg.WeightGraph*graphScore + cfg.WeightTopic*topic
			if score >= cfg.MinScoreThreshold {
				candidates = append(candidates, Candidate{
					TargetID: n.ID, Score: score,
					Lexical: lexical, Tags: tags, Graph: graphScore, Topic: topic,
				})
			}
		}

		sortCandidatesDesc(candidates)
		slotsLeft := cfg.MaxLinksPerNote - len(existing)
		if slotsLeft < 0 {
			slotsLeft = 0
		}
		if len(candidates) > slotsLeft {
			candidates = candidates[:slotsLeft]
		}

		if opts.DryRun {
			out.Added = candidates
			return nil
		}

		now := time.Now().UTC()
		for _, c := range candidates {
			edge := &model.Edge{SourceID: sourceID, TargetID: c.TargetID, Type: model.EdgeRelates, Layer: model.LayerFrontmatter, Weight: c.Score, Created: now}
			if err := sqlite.UpsertEdge(ctx, tx.SQL(), edge); err != nil {
				return fmt.Errorf("reweave: add edge %s->%s: %w", sourceID, c.TargetID, err)
			}
			if err := sqlite.AppendReweaveLog(ctx, tx.SQL(), batchID, sourceID, c.TargetID, model.EdgeRelates, "add", c.Score); err != nil {
				return fmt.Errorf("reweave: log edge add: %w", err)
			}
		}
		out.Added = candidates

		if opts.Prune {
			stale, err := sqlite.StaleEdges(ctx, tx.SQL())
			if err != nil {
				return err
			}
			for _, e := range stale {
				if e.SourceID != sourceID {
					continue
				}
				if err := sqlite.DeleteEdge(ctx, tx.SQL(), e.SourceID, e.TargetID, e.Type); err != nil {
					return fmt.Errorf("reweave: prune edge %s->%s: %w", e.SourceID, e.TargetID, err)
				}
				if err := sqlite.AppendReweaveLog(ctx, tx.SQL(), batchID, e.SourceID, e.TargetID, e.Type, "remove", e.Weight); err != nil {
					return fmt.Errorf("reweave: log edge removal: %w", err)
				}
				out.Pruned++
			}
		}

		if (len(candidates) > 0 || out.Pruned > 0) && source.Type == model.KindNote && !source.IsDecision() {
			count, err := sqlite.OutgoingEdgeCount(ctx, tx.SQL(), sourceID)
			if err != nil {
				return err
			}
			source.Status = model.NoteStatusForEdgeCount(count)
			if err := sqlite.UpdateNode(ctx, tx.SQL(), source); err != nil {
				return fmt.Errorf("reweave: update source status: %w", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if !opts.DryRun {
		s.engine.dispatch(ctx, eventbus.PostReweave, opts.Session, map[string]any{
			"source_id": sourceID, "batch_id": batchID, "added": len(out.Added), "pruned": out.Pruned,
		})
	}
	return out, nil
}

// Undo replays a reweave batch in reverse, removing every edge it added and
// restoring every edge it pruned to stale (§4.7 "the undo law": reweave,
// then undo, always returns the edge set to its pre-reweave state).
func (s *ReweaveService) Undo(ctx context.Context, batchID string) *result.Result {
	const op = "reweave.undo"
	err := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		resolvedBatch := batchID
		if resolvedBatch == "" {
			var err error
			resolvedBatch, err = sqlite.MostRecentReweaveBatch(ctx, tx.SQL())
			if err != nil {
				return err
			}
		}
		entries, err := sqlite.ReweaveBatch(ctx, tx.SQL(), resolvedBatch)
		if err != nil {
			return err
		}
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			switch e.Action {
			case "add":
				if err := sqlite.DeleteEdge(ctx, tx.SQL(), e.SourceID, e.TargetID, e.EdgeType); err != nil {
					return err
				}
			case "remove":
				restored := &model.Edge{SourceID: e.SourceID, TargetID: e.TargetID, Type: e.EdgeType, Layer: model.LayerFrontmatter, Weight: e.Score, Stale: true, Created: time.Now().UTC()}
				if err := sqlite.UpsertEdge(ctx, tx.SQL(), restored); err != nil {
					return err
				}
			}
		}
		return sqlite.MarkBatchUndone(ctx, tx.SQL(), resolvedBatch)
	})
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}
	return result.Ok(op, map[string]any{"batch_id": batchID})
}

func ftsQuery(title string) string {
	if title == "" {
		return "*"
	}
	return `"` + title + `"* OR ` + title
}

func normalizeBM25(matches []sqlite.FTSMatch) map[string]float64 {
	if len(matches) == 0 {
		return nil
	}
	worst := matches[0].Score
	for _, m := range matches {
		if m.Score < worst {
			worst = m.Score
		}
	}
	out := map[string]float64{}
	for _, m := range matches {
		if worst == 0 {
			out[m.ID] = 1
			continue
		}
		out[m.ID] = m.Score / worst
	}
	return out
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := map[string]bool{}
	for _, t := range a {
		setA[t] = true
	}
	inter := 0
	union := map[string]bool{}
	for _, t := range a {
		union[t] = true
	}
	for _, t := range b {
		union[t] = true
		if setA[t] {
			inter++
		}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}

func inverseShortestPath(g interface {
	ShortestPathLength(source, target string) int
}, source, target string) float64 {
	length := g.ShortestPathLength(source, target)
	if length <= 0 {
		return 0
	}
	return 1.0 / float64(length)
}

func sortCandidatesDesc(c []Candidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j-1].Score < c[j].Score; j-- {
			c[j-1], c[j] = c[j], c[j-1]
		}
	}
}
