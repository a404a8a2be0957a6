package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/result"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
	"github.com/ThatDevStudio/ztlctl/internal/vault"
)

// UpdateService implements the update pipeline (§4.5): Validate -> Apply ->
// Propagate -> Index -> Respond, plus the archive and supersede operations.
type UpdateService struct {
	engine  *Engine
	vectors *VectorService
}

// NewUpdateService builds an UpdateService.
func NewUpdateService(e *Engine, vectors *VectorService) *UpdateService {
	return &UpdateService{engine: e, vectors: vectors}
}

// UpdateInput carries the fields a caller may change; a nil pointer field
// means "leave unchanged".
type UpdateInput struct {
	ID       string
	Title    *string
	Body     *string
	Tags     *[]string
	Aliases  *[]string
	Topic    *string
	Status   *string
	Session  string
}

// Update applies a partial change to an existing node (§4.5).
func (s *UpdateService) Update(ctx context.Context, in UpdateInput) (*result.Result, error) {
	const op = "update"

	var respData map[string]any
	var warnings []string
	var eventPayload map[string]any

	txErr := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		node, err := sqlite.GetNode(ctx, tx.SQL(), in.ID)
		if err != nil {
			if err == sqlite.ErrNotFound {
				return &notFoundError{id: in.ID}
			}
			return err
		}

		raw, err := tx.ReadFile(node.Path)
		if err != nil {
			return fmt.Errorf("update: read %s: %w", node.Path, err)
		}
		_, existingBody, err := ParseFile(string(raw))
		if err != nil {
			return fmt.Errorf("update: parse %s: %w", node.Path, err)
		}

		newBody := existingBody
		bodyChanged := false
		if in.Body != nil && *in.Body != existingBody {
			switch {
			case node.IsDecision() && (node.Status == model.DecisionAccepted || node.Status == model.DecisionSuperseded):
				// Decision immutability is a hard failure: the only path to
				// change an accepted decision's body is supersession.
				return &lockedError{id: node.ID, reason: bodyLockReason(node)}
			case node.Maturity.Garden():
				// Garden protection rejects the body edit but lets the rest
				// of the update (tags, topic, status) proceed (§4.5).
				warnings = append(warnings, bodyLockReason(node))
			default:
				newBody = *in.Body
				bodyChanged = true
			}
		}

		cm, err := model.Lookup(node.Type, node.Subtype)
		if err != nil {
			return err
		}
		if bodyChanged {
			updateWarnings, err := cm.ValidateUpdate(node, newBody)
			if err != nil {
				return &invalidError{msg: err.Error()}
			}
			warnings = append(warnings, updateWarnings...)
		}

		if in.Title != nil {
			node.Title = *in.Title
		}
		if in.Tags != nil {
			node.Tags = *in.Tags
		}
		if in.Aliases != nil {
			node.Aliases = *in.Aliases
		}
		if in.Topic != nil {
			node.Topic = *in.Topic
		}
		if in.Status != nil && *in.Status != node.Status {
			if !model.ValidTransition(node.Type, node.Subtype, node.Status, *in.Status) {
				return &transitionError{id: node.ID, from: node.Status, to: *in.Status}
			}
			node.Status = *in.Status
		}
		node.Modified = time.Now().UTC()

		content, err := RenderFile(node, newBody)
		if err != nil {
			return fmt.Errorf("render file: %w", err)
		}
		if err := tx.WriteFile(node.Path, []byte(content), 0o644); err != nil {
			return err
		}

		if err := sqlite.UpdateNode(ctx, tx.SQL(), node); err != nil {
			return fmt.Errorf("update node: %w", err)
		}
		if in.Tags != nil {
			if err := sqlite.SetNodeTags(ctx, tx.SQL(), node.ID, node.Tags); err != nil {
				return fmt.Errorf("set tags: %w", err)
			}
		}

		if bodyChanged || in.Title != nil {
			idx, err := buildLinkIndex(ctx, tx.SQL())
			if err != nil {
				return err
			}
			frontmatterTargets := allLinkTargets(node.Links)
			raw := append(append([]string{}, frontmatterTargets...), ExtractWikilinks(newBody)...)
			resolvedIDs, linkWarnings := resolveLinks(idx, raw, node.ID)
			warnings = append(warnings, linkWarnings...)
			if err := sqlite.DeleteEdgesFrom(ctx, tx.SQL(), node.ID); err != nil {
				return fmt.Errorf("propagate: clear edges: %w", err)
			}
			for _, targetID := range resolvedIDs {
				layer := model.LayerBody
				if targetIsFrontmatter(idx, frontmatterTargets, targetID) {
					layer = model.LayerFrontmatter
				}
				edge := &model.Edge{SourceID: node.ID, TargetID: targetID, Type: model.EdgeRelates, Layer: layer, Weight: 1.0, Created: node.Modified}
				if err := sqlite.UpsertEdge(ctx, tx.SQL(), edge); err != nil {
					return fmt.Errorf("propagate: upsert edge: %w", err)
				}
			}
			if node.Type == model.KindNote && !node.IsDecision() {
				count, err := sqlite.OutgoingEdgeCount(ctx, tx.SQL(), node.ID)
				if err != nil {
					return err
				}
				node.Status = model.NoteStatusForEdgeCount(count)
				if err := sqlite.UpdateNode(ctx, tx.SQL(), node); err != nil {
					return fmt.Errorf("update node status: %w", err)
				}
			}
		}

		if err := sqlite.IndexFTS(ctx, tx.SQL(), node.ID, node.Title, newBody); err != nil {
			return fmt.Errorf("index fts: %w", err)
		}
		if err := s.vectors.IndexNode(ctx, tx.SQL(), node.ID, node.Title, newBody); err != nil {
			return fmt.Errorf("index vector: %w", err)
		}

		respData = map[string]any{"id": node.ID, "path": node.Path, "status": node.Status}
		eventPayload = map[string]any{"id": node.ID}
		return nil
	})

	if txErr != nil {
		return translateUpdateErr(op, txErr), nil
	}

	res := result.Ok(op, respData)
	for _, w := range warnings {
		res.Warn(w)
	}
	for _, w := range s.engine.dispatch(ctx, eventbus.PostUpdate, in.Session, eventPayload) {
		res.Warn(w)
	}
	return res, nil
}

// Archive marks a node archived without deleting its file or relational row
// (§1 non-goals: the engine never hard-deletes user content).
func (s *UpdateService) Archive(ctx context.Context, id, session string) (*result.Result, error) {
	const op = "archive"
	txErr := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		node, err := sqlite.GetNode(ctx, tx.SQL(), id)
		if err != nil {
			if err == sqlite.ErrNotFound {
				return &notFoundError{id: id}
			}
			return err
		}
		node.Archived = true
		node.Modified = time.Now().UTC()
		return sqlite.UpdateNode(ctx, tx.SQL(), node)
	})
	if txErr != nil {
		return translateUpdateErr(op, txErr), nil
	}
	res := result.Ok(op, map[string]any{"id": id, "archived": true})
	for _, w := range s.engine.dispatch(ctx, eventbus.PostUpdate, session, map[string]any{"id": id, "archived": true}) {
		res.Warn(w)
	}
	return res, nil
}

// Supersede creates a new decision node recording a changed choice, then
// links the old decision to the new one and marks the old superseded
// (§4.5, §8 invariant: decision bodies are immutable once accepted — the
// only path to change one is supersession, never a direct edit).
func (s *UpdateService) Supersede(ctx context.Context, create *CreateService, oldID string, in CreateInput) (*result.Result, error) {
	const op = "supersede"

	oldNode, err := sqlite.GetNode(ctx, s.engine.Store.DB(), oldID)
	if err != nil {
		if err == sqlite.ErrNotFound {
			return result.Fail(op, result.CodeNotFound, fmt.Sprintf("decision %s not found", oldID), nil), nil
		}
		return nil, err
	}
	if !oldNode.IsDecision() {
		return result.Fail(op, result.CodeInvalidInput, fmt.Sprintf("%s is not a decision", oldID), nil), nil
	}
	if oldNode.Status != model.DecisionAccepted {
		return result.Fail(op, result.CodeTransition, fmt.Sprintf("decision %s must be accepted before it can be superseded (status=%s)", oldID, oldNode.Status), nil), nil
	}

	in.Kind = model.KindNote
	in.Subtype = model.SubtypeDecision
	created, err := create.Create(ctx, in)
	if err != nil || !created.OK {
		return created, err
	}
	newID, _ := created.Data["id"].(string)

	txErr := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		newNode, err := sqlite.GetNode(ctx, tx.SQL(), newID)
		if err != nil {
			return err
		}
		newNode.Supersedes = append(newNode.Supersedes, oldID)
		if err := sqlite.UpdateNode(ctx, tx.SQL(), newNode); err != nil {
			return err
		}

		oldNode, err := sqlite.GetNode(ctx, tx.SQL(), oldID)
		if err != nil {
			return err
		}
		oldNode.Status = model.DecisionSuperseded
		oldNode.SupersededBy = newID
		oldNode.Modified = time.Now().UTC()
		if err := sqlite.UpdateNode(ctx, tx.SQL(), oldNode); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := sqlite.UpsertEdge(ctx, tx.SQL(), &model.Edge{SourceID: newID, TargetID: oldID, Type: model.EdgeSupersedes, Layer: model.LayerFrontmatter, Weight: 1.0, Created: now}); err != nil {
			return err
		}
		if err := sqlite.UpsertEdge(ctx, tx.SQL(), &model.Edge{SourceID: oldID, TargetID: newID, Type: model.EdgeSupersededBy, Layer: model.LayerFrontmatter, Weight: 1.0, Created: now}); err != nil {
			return err
		}
		return rewriteFrontmatterOnly(tx, oldNode)
	})
	if txErr != nil {
		return result.Fail(op, result.CodeIOError, txErr.Error(), nil), nil
	}

	res := result.Ok(op, map[string]any{"old_id": oldID, "new_id": newID})
	for _, w := range s.engine.dispatch(ctx, eventbus.PostUpdate, in.Session, map[string]any{"old_id": oldID, "new_id": newID}) {
		res.Warn(w)
	}
	return res, nil
}

// rewriteFrontmatterOnly re-serializes a node's file preserving its existing
// body bytes, since the supersede path must update frontmatter
// (status/superseded_by) without touching an accepted decision's body.
func rewriteFrontmatterOnly(tx *vault.Tx, n *model.Node) error {
	raw, err := tx.ReadFile(n.Path)
	if err != nil {
		return fmt.Errorf("supersede: read %s: %w", n.Path, err)
	}
	_, body, err := ParseFile(string(raw))
	if err != nil {
		return fmt.Errorf("supersede: parse %s: %w", n.Path, err)
	}
	content, err := RenderFile(n, body)
	if err != nil {
		return fmt.Errorf("supersede: render %s: %w", n.Path, err)
	}
	return tx.WriteFile(n.Path, []byte(content), 0o644)
}

func bodyLockReason(n *model.Node) string {
	if n.IsDecision() {
		return fmt.Sprintf("decision %s is %s; body is immutable once accepted", n.ID, n.Status)
	}
	return fmt.Sprintf("%s has garden maturity %q; body edits are rejected", n.ID, n.Maturity)
}

// Sentinel errors translated to classified Results by translateUpdateErr.
type notFoundError struct{ id string }

func (e *notFoundError) Error() string { return fmt.Sprintf("%s not found", e.id) }

type lockedError struct {
	id     string
	reason string
}

func (e *lockedError) Error() string { return e.reason }

type transitionError struct {
	id, from, to string
}

func (e *transitionError) Error() string {
	return fmt.Sprintf("%s: invalid transition %s -> %s", e.id, e.from, e.to)
}

type invalidError struct{ msg string }

func (e *invalidError) Error() string { return e.msg }

func translateUpdateErr(op string, err error) *result.Result {
	switch e := err.(type) {
	case *notFoundError:
		return result.Fail(op, result.CodeNotFound, e.Error(), map[string]any{"id": e.id})
	case *lockedError:
		return result.Fail(op, result.CodeImmutable, e.Error(), map[string]any{"id": e.id})
	case *transitionError:
		return result.Fail(op, result.CodeTransition, e.Error(), map[string]any{"id": e.id, "from": e.from, "to": e.to})
	case *invalidError:
		return result.Fail(op, result.CodeInvalidInput, e.Error(), nil)
	default:
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}
}
