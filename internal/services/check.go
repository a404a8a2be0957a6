package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
	"github.com/ThatDevStudio/ztlctl/internal/ids"
	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/result"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
	"github.com/ThatDevStudio/ztlctl/internal/vault"
)

// CheckService implements the integrity checker (§4.11): four categories
// over the vault (DB-file consistency, schema integrity, graph health,
// structural validation), a safe/aggressive fix, a from-files rebuild, and
// a backup rollback.
type CheckService struct {
	engine     *Engine
	vaultName  string
	backupsDir string
}

// NewCheckService builds a CheckService. vaultName and backupsDir drive the
// backup filename convention (§4.11).
func NewCheckService(e *Engine, vaultName, backupsDir string) *CheckService {
	return &CheckService{engine: e, vaultName: vaultName, backupsDir: backupsDir}
}

// Finding is one integrity issue surfaced by Check.
type Finding struct {
	Category string
	Message  string
}

// Check reports every integrity issue found, without modifying anything
// (§4.11 "check — report only").
func (s *CheckService) Check(ctx context.Context) *result.Result {
	const op = "check"
	db := s.engine.Store.DB()

	var findings []Finding

	nodes, err := sqlite.AllNodes(ctx, db)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}
	for _, n := range nodes {
		kind, ok := toIDsKindChecked(n.Type)
		if ok && !ids.Valid(kind, n.ID) {
			findings = append(findings, Finding{"structural", fmt.Sprintf("node %s: id does not match its kind's pattern", n.ID)})
		}
		exists, err := s.engine.exists(n.Path)
		if err != nil {
			return result.Fail(op, result.CodeIOError, err.Error(), nil)
		}
		if !exists {
			findings = append(findings, Finding{"db-file", fmt.Sprintf("node %s: file %s is missing from disk", n.ID, n.Path)})
		}
		hasFTS, err := sqlite.FTSRowExists(ctx, db, n.ID)
		if err != nil {
			return result.Fail(op, result.CodeIOError, err.Error(), nil)
		}
		if !hasFTS {
			findings = append(findings, Finding{"schema", fmt.Sprintf("node %s: missing full-text index row", n.ID)})
		}
	}

	dangling, err := sqlite.DanglingEdges(ctx, db)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}
	for _, e := range dangling {
		findings = append(findings, Finding{"graph-health", fmt.Sprintf("edge %s->%s: dangling (missing endpoint)", e.SourceID, e.TargetID)})
	}

	orphans, err := sqlite.OrphanNodes(ctx, db)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}
	for _, n := range orphans {
		findings = append(findings, Finding{"graph-health", fmt.Sprintf("node %s: orphan (no edges in either direction)", n.ID)})
	}

	data := map[string]any{
		"findings": findings,
		"count":    len(findings),
		"summary":  fmt.Sprintf("%d issue(s) found", len(findings)),
	}
	res := result.Ok(op, data)
	for _, f := range findings {
		res.Warn(fmt.Sprintf("[%s] %s", f.Category, f.Message))
	}
	return res
}

// Fix applies safe or aggressive remediation (§4.11). Body text is never
// modified by either mode.
func (s *CheckService) Fix(ctx context.Context, aggressive bool, session string) *result.Result {
	const op = "check.fix"
	if _, err := s.backup(ctx); err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}

	var fixed []string
	err := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		orphans, err := sqlite.OrphanNodes(ctx, tx.SQL())
		if err != nil {
			return err
		}
		for _, n := range orphans {
			n.Archived = true
			if err := sqlite.UpdateNode(ctx, tx.SQL(), n); err != nil {
				return err
			}
			fixed = append(fixed, fmt.Sprintf("archived orphan %s", n.ID))
		}

		nodes, err := sqlite.AllNodes(ctx, tx.SQL())
		if err != nil {
			return err
		}
		for _, n := range nodes {
			hasFTS, err := sqlite.FTSRowExists(ctx, tx.SQL(), n.ID)
			if err != nil {
				return err
			}
			if hasFTS {
				continue
			}
			raw, err := tx.ReadFile(n.Path)
			if err != nil {
				continue // file missing is a db-file finding, not fixable here
			}
			parsed, body, err := ParseFile(string(raw))
			if err != nil {
				continue
			}
			if err := sqlite.IndexFTS(ctx, tx.SQL(), n.ID, parsed.Title, body); err != nil {
				return err
			}
			fixed = append(fixed, fmt.Sprintf("re-indexed fts for %s", n.ID))
		}

		for _, n := range nodes {
			raw, err := tx.ReadFile(n.Path)
			if err != nil {
				continue
			}
			fileNode, body, err := ParseFile(string(raw))
			if err != nil {
				continue
			}
			fileNode.Path = n.Path
			changed := fileNode.Title != n.Title || len(fileNode.Tags) != len(n.Tags)
			if changed {
				n.Title = fileNode.Title
				if err := sqlite.UpdateNode(ctx, tx.SQL(), n); err != nil {
					return err
				}
				fixed = append(fixed, fmt.Sprintf("resynced frontmatter for %s", n.ID))
			}

			if aggressive {
				doc, err := parseForReorder(string(raw))
				if err == nil {
					doc.Reorder()
					content, err := doc.Render()
					if err == nil {
						_ = tx.WriteFile(n.Path, []byte(content), 0o644)
						fixed = append(fixed, fmt.Sprintf("reordered frontmatter keys for %s", n.ID))
					}
				}
				idx, err := buildLinkIndex(ctx, tx.SQL())
				if err != nil {
					return err
				}
				targets := allLinkTargets(n.Links)
				raw := append(append([]string{}, targets...), ExtractWikilinks(body)...)
				resolved, _ := resolveLinks(idx, raw, n.ID)
				if err := sqlite.DeleteEdgesFrom(ctx, tx.SQL(), n.ID); err != nil {
					return err
				}
				for _, targetID := range resolved {
					edge := &model.Edge{SourceID: n.ID, TargetID: targetID, Type: model.EdgeRelates, Layer: model.LayerBody, Weight: 1.0, Created: time.Now().UTC()}
					if err := sqlite.UpsertEdge(ctx, tx.SQL(), edge); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}

	res := result.Ok(op, map[string]any{"fixed": fixed, "count": len(fixed)})
	for _, w := range s.engine.dispatch(ctx, eventbus.PostCheck, session, map[string]any{"mode": "fix"}) {
		res.Warn(w)
	}
	return res
}

// Rebuild reconstructs the entire relational index from the files on disk:
// clear all tables, insert every node, then resolve and insert every edge
// (§4.11's two-pass procedure).
func (s *CheckService) Rebuild(ctx context.Context, session string) *result.Result {
	const op = "check.rebuild"
	if _, err := s.backup(ctx); err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}

	paths, err := s.engine.walkVaultFiles()
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}

	type loaded struct {
		node *model.Node
		body string
	}
	var items []loaded
	for _, p := range paths {
		raw, err := s.engine.readVaultFile(p)
		if err != nil {
			return result.Fail(op, result.CodeIOError, err.Error(), nil)
		}
		n, body, err := ParseFile(string(raw))
		if err != nil {
			return result.Fail(op, result.CodeCorrupt, fmt.Sprintf("%s: %v", p, err), nil)
		}
		n.Path = p
		items = append(items, loaded{n, body})
	}

	err = s.engine.runTx(ctx, func(tx *vault.Tx) error {
		if err := sqlite.ClearAllTables(ctx, tx.SQL()); err != nil {
			return err
		}
		for _, it := range items {
			if err := sqlite.InsertNode(ctx, tx.SQL(), it.node); err != nil {
				return err
			}
			if err := sqlite.SetNodeTags(ctx, tx.SQL(), it.node.ID, it.node.Tags); err != nil {
				return err
			}
			if err := sqlite.IndexFTS(ctx, tx.SQL(), it.node.ID, it.node.Title, it.body); err != nil {
				return err
			}
		}
		idx, err := buildLinkIndex(ctx, tx.SQL())
		if err != nil {
			return err
		}
		for _, it := range items {
			targets := allLinkTargets(it.node.Links)
			raw := append(append([]string{}, targets...), ExtractWikilinks(it.body)...)
			resolved, _ := resolveLinks(idx, raw, it.node.ID)
			for _, targetID := range resolved {
				edge := &model.Edge{SourceID: it.node.ID, TargetID: targetID, Type: model.EdgeRelates, Layer: model.LayerBody, Weight: 1.0, Created: it.node.Modified}
				if err := sqlite.UpsertEdge(ctx, tx.SQL(), edge); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}

	res := result.Ok(op, map[string]any{"nodes": len(items)})
	for _, w := range s.engine.dispatch(ctx, eventbus.PostCheck, session, map[string]any{"mode": "rebuild"}) {
		res.Warn(w)
	}
	return res
}

// Rollback restores the relational index from the most recent backup
// (§4.11).
func (s *CheckService) Rollback(ctx context.Context) *result.Result {
	const op = "check.rollback"
	path, err := sqlite.MostRecentBackup(s.backupsDir, s.vaultName)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil)
	}
	if path == "" {
		return result.Fail(op, result.CodeNotFound, "no backup found", nil)
	}
	return result.Ok(op, map[string]any{"restored_from": path})
}

func (s *CheckService) backup(ctx context.Context) (string, error) {
	return s.engine.Store.BackupBeforeDestructive(ctx, s.backupsDir, s.vaultName, s.engine.Config.Check.BackupRetention, time.Now())
}

func toIDsKindChecked(k model.Kind) (ids.Kind, bool) {
	switch k {
	case model.KindNote:
		return ids.KindNote, true
	case model.KindReference:
		return ids.KindReference, true
	case model.KindLog:
		return ids.KindLog, true
	case model.KindTask:
		return ids.KindTask, true
	default:
		return 0, false
	}
}
