package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
	"github.com/ThatDevStudio/ztlctl/internal/ids"
	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/result"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
	"github.com/ThatDevStudio/ztlctl/internal/vault"
)

// CreateService implements the create pipeline (§4.4): Validate -> Generate
// -> Persist -> Index -> Respond.
type CreateService struct {
	engine  *Engine
	vectors *VectorService
	reweave *ReweaveService
}

// NewCreateService builds a CreateService.
func NewCreateService(e *Engine, vectors *VectorService, reweave *ReweaveService) *CreateService {
	return &CreateService{engine: e, vectors: vectors, reweave: reweave}
}

// CreateInput is everything the Create pipeline needs from a caller,
// independent of where it came from (CLI flags, an MCP tool call, a batch
// item).
type CreateInput struct {
	Kind    model.Kind
	Subtype model.Subtype
	Title   string
	Topic   string
	Tags    []string
	Aliases []string
	Session string
	// Sections are named body-template substitutions (e.g. a decision's
	// Context/Choice/Rationale/...). Body is the plain-text body used for
	// kinds whose template only has a {{Body}} placeholder.
	Sections map[string]string
	Body     string
	Links    map[string][]string
	Suppress bool // caller requests no automatic reweave
}

// Create runs the full pipeline for a single item.
func (s *CreateService) Create(ctx context.Context, in CreateInput) (*result.Result, error) {
	const op = "create"

	if !in.Kind.Valid() {
		return result.Fail(op, result.CodeInvalidInput, fmt.Sprintf("unknown content kind %q", in.Kind), nil), nil
	}
	cm, err := model.Lookup(in.Kind, in.Subtype)
	if err != nil {
		return result.Fail(op, result.CodeInvalidInput, err.Error(), nil), nil
	}
	if strings.TrimSpace(in.Title) == "" {
		return result.Fail(op, result.CodeInvalidInput, "title is required", nil), nil
	}

	var warnings []string
	for _, tag := range in.Tags {
		if !strings.Contains(tag, "/") {
			warnings = append(warnings, fmt.Sprintf("tag %q is unscoped (expected domain/scope)", tag))
		}
	}

	now := time.Now().UTC()
	node := &model.Node{
		Type: in.Kind, Subtype: in.Subtype, Topic: in.Topic, Title: in.Title,
		Aliases: in.Aliases, Tags: in.Tags, Session: in.Session, Links: in.Links,
		Created: now, Modified: now,
	}

	sections := map[string]string{"Title": in.Title}
	for k, v := range in.Sections {
		sections[k] = v
	}
	if in.Body != "" {
		sections["Body"] = in.Body
	}
	body := model.RenderTemplate(cm.BodyTemplate, sections)

	createWarnings, err := cm.ValidateCreate(node, body)
	if err != nil {
		return result.Fail(op, result.CodeInvalidInput, err.Error(), nil), nil
	}
	warnings = append(warnings, createWarnings...)

	node.Status = initialStatus(in.Kind, in.Subtype)

	var path string
	var respData map[string]any
	txErr := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		mintedID, existing, err := s.mint(ctx, tx, in.Kind, in.Title)
		if err != nil {
			return err
		}
		if existing != nil {
			return &conflictError{existingID: existing.ID, existingTitle: existing.Title}
		}
		node.ID = mintedID

		content, err := RenderFile(node, body)
		if err != nil {
			return fmt.Errorf("render file: %w", err)
		}
		path = PathFor(in.Kind, in.Topic, node.ID, Slugify(in.Title))
		node.Path = path
		if err := tx.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}

		if err := sqlite.InsertNode(ctx, tx.SQL(), node); err != nil {
			return fmt.Errorf("insert node: %w", err)
		}
		if err := sqlite.SetNodeTags(ctx, tx.SQL(), node.ID, node.Tags); err != nil {
			return fmt.Errorf("set tags: %w", err)
		}

		idx, err := buildLinkIndex(ctx, tx.SQL())
		if err != nil {
			return err
		}
		idx.add(node)
		frontmatterTargets := allLinkTargets(node.Links)
		raw := append(append([]string{}, frontmatterTargets...), ExtractWikilinks(body)...)
		resolvedIDs, linkWarnings := resolveLinks(idx, raw, node.ID)
		warnings = append(warnings, linkWarnings...)
		for _, targetID := range resolvedIDs {
			layer := model.LayerBody
			if targetIsFrontmatter(idx, frontmatterTargets, targetID) {
				layer = model.LayerFrontmatter
			}
			edge := &model.Edge{SourceID: node.ID, TargetID: targetID, Type: model.EdgeRelates, Layer: layer, Weight: 1.0, Created: now}
			if err := sqlite.UpsertEdge(ctx, tx.SQL(), edge); err != nil {
				return fmt.Errorf("upsert edge: %w", err)
			}
		}

		if in.Kind == model.KindNote && in.Subtype != model.SubtypeDecision {
			count, err := sqlite.OutgoingEdgeCount(ctx, tx.SQL(), node.ID)
			if err != nil {
				return err
			}
			node.Status = model.NoteStatusForEdgeCount(count)
			if err := sqlite.UpdateNode(ctx, tx.SQL(), node); err != nil {
				return fmt.Errorf("update node status: %w", err)
			}
		}

		if err := sqlite.IndexFTS(ctx, tx.SQL(), node.ID, node.Title, body); err != nil {
			return fmt.Errorf("index fts: %w", err)
		}
		if err := s.vectors.IndexNode(ctx, tx.SQL(), node.ID, node.Title, body); err != nil {
			return fmt.Errorf("index vector: %w", err)
		}

		respData = map[string]any{"id": node.ID, "path": path, "title": node.Title, "type": string(node.Type)}
		return nil
	})

	if txErr != nil {
		if ce, ok := txErr.(*conflictError); ok {
			return result.Fail(op, result.CodeConflict, fmt.Sprintf("a node with this title already exists: %s", ce.existingTitle),
				map[string]any{"existing_id": ce.existingID, "existing_title": ce.existingTitle}), nil
		}
		return result.Fail(op, result.CodeIOError, txErr.Error(), nil), nil
	}

	res := result.Ok(op, respData)
	for _, w := range warnings {
		res.Warn(w)
	}

	for _, w := range s.engine.dispatch(ctx, eventbus.PostCreate, in.Session, respData) {
		res.Warn(w)
	}

	if !in.Suppress && s.engine.Config.Reweave.AutoOnCreate && (in.Kind == model.KindNote || in.Kind == model.KindReference) {
		rw, err := s.reweave.Reweave(ctx, node.ID, ReweaveOptions{})
		if err == nil && rw != nil {
			for _, w := range rw.Warnings {
				res.Warn(fmt.Sprintf("reweave: %s", w))
			}
		}
	}

	return res, nil
}

// conflictError is an internal sentinel carrying CONFLICT detail through a
// vault.Run closure; it never escapes this package as a Go error the caller
// sees (Create translates it to a Result above).
type conflictError struct {
	existingID    string
	existingTitle string
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("conflict: %s already has title %q", e.existingID, e.existingTitle)
}

// mint generates an identifier for kind/title, returning the existing node
// if minting collides with an already-indexed id (§4.1, §8 scenarios 1/2).
func (s *CreateService) mint(ctx context.Context, tx *vault.Tx, kind model.Kind, title string) (string, *model.Node, error) {
	switch kind {
	case model.KindNote, model.KindReference:
		idsKind := toIDsKind(kind)
		id, err := ids.ContentHash(idsKind, title)
		if err != nil {
			return "", nil, err
		}
		existing, err := sqlite.GetNode(ctx, tx.SQL(), id)
		if err == nil {
			return id, existing, nil
		}
		if err != sqlite.ErrNotFound {
			return "", nil, err
		}
		return id, nil, nil
	case model.KindLog, model.KindTask:
		id, err := ids.MintSequential(sqlite.TxCounterStore(tx.SQL()), toIDsKind(kind))
		if err != nil {
			return "", nil, err
		}
		return id, nil, nil
	default:
		return "", nil, fmt.Errorf("create: unsupported kind %q", kind)
	}
}

func toIDsKind(k model.Kind) ids.Kind {
	switch k {
	case model.KindNote:
		return ids.KindNote
	case model.KindReference:
		return ids.KindReference
	case model.KindLog:
		return ids.KindLog
	case model.KindTask:
		return ids.KindTask
	default:
		return ids.KindNote
	}
}

func initialStatus(kind model.Kind, subtype model.Subtype) string {
	switch {
	case kind == model.KindNote && subtype == model.SubtypeDecision:
		return model.DecisionProposed
	case kind == model.KindNote:
		return model.NoteStatusForEdgeCount(0)
	case kind == model.KindReference:
		return model.ReferenceCaptured
	case kind == model.KindLog:
		return model.LogOpen
	case kind == model.KindTask:
		return model.TaskInbox
	default:
		return ""
	}
}

// targetIsFrontmatter reports whether targetID was reached via one of the
// raw frontmatter link targets, so the Index stage can tag the edge's layer
// correctly when the same target is also wikilinked in the body.
func targetIsFrontmatter(idx *linkIndex, frontmatterTargets []string, targetID string) bool {
	for _, t := range frontmatterTargets {
		if idx.resolve(t).ID == targetID {
			return true
		}
	}
	return false
}

// CreateBatch runs Create for every item. allOrNothing unwinds (via
// archival) every item already created in the batch the moment one item
// fails; partial mode commits each item independently and aggregates a
// report (§4.4 "Batch mode").
func (s *CreateService) CreateBatch(ctx context.Context, items []CreateInput, allOrNothing bool) *result.Result {
	const op = "create.batch"
	if !allOrNothing {
		var results []map[string]any
		failures := 0
		for _, item := range items {
			r, _ := s.Create(ctx, item)
			results = append(results, map[string]any{"ok": r.OK, "op": r.Op, "data": r.Data, "error": r.Error})
			if !r.OK {
				failures++
			}
		}
		res := result.Ok(op, map[string]any{"results": results, "succeeded": len(items) - failures, "failed": failures})
		if failures > 0 {
			res.Warn(fmt.Sprintf("%d of %d batch items failed", failures, len(items)))
		}
		return res
	}

	var created []string
	for i, item := range items {
		r, err := s.Create(ctx, item)
		if err != nil || !r.OK {
			for _, id := range created {
				_ = s.archiveForUnwind(ctx, id)
			}
			detail := map[string]any{"failed_index": i}
			if r != nil && r.Error != nil {
				detail["error"] = r.Error
			}
			return result.Fail(op, result.CodeConflict, "batch create failed; earlier items in the batch were archived", detail)
		}
		if id, ok := r.Data["id"].(string); ok {
			created = append(created, id)
		}
	}
	return result.Ok(op, map[string]any{"ids": created})
}

// archiveForUnwind best-effort archives a node created earlier in a failed
// all-or-nothing batch. The pipeline has no hard-delete path for user
// content (§1 non-goals); archival is the closest available undo.
func (s *CreateService) archiveForUnwind(ctx context.Context, id string) error {
	return s.engine.runTx(ctx, func(tx *vault.Tx) error {
		n, err := sqlite.GetNode(ctx, tx.SQL(), id)
		if err != nil {
			return err
		}
		n.Archived = true
		n.Modified = time.Now().UTC()
		return sqlite.UpdateNode(ctx, tx.SQL(), n)
	})
}
