// Package services implements the vault engine's pipelines: create, update
// (archive/supersede), session, reweave, query, check, and vector (§4.4-
// §4.11). The command-facing service methods return a *result.Result and
// never raise across their boundary (§4.13, §7); where such a method also
// returns an error, it is reserved for programmer bugs (a nil Engine, a
// closed store), not domain failures. Internal helpers such as
// ReweaveService.Reweave and VectorService.IndexNode return plain values
// and errors instead.
package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ThatDevStudio/ztlctl/internal/config"
	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
	"github.com/ThatDevStudio/ztlctl/internal/graph"
	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/obslog"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
	"github.com/ThatDevStudio/ztlctl/internal/vault"
)

// Engine wires the storage, graph, event-bus and vault-transaction layers
// together for one invocation. It is constructed once in cmd/ztlctl's
// openApp (bootstrap.go) and passed into each service constructor (§9 "Global state": no
// process-wide singleton).
type Engine struct {
	Store  *sqlite.Store
	Bus    *eventbus.Bus
	Config config.Config
	Log    *obslog.Context
	Root   string // vault root directory

	mu    sync.Mutex
	graph *graph.Graph // per-invocation cache; nil until first access or after invalidation
}

// New builds an Engine. The graph cache starts empty: it is built lazily on
// first access (§4.8) and invalidated on every commit or abort (§4.3).
func New(store *sqlite.Store, bus *eventbus.Bus, cfg config.Config, log *obslog.Context, root string) *Engine {
	return &Engine{Store: store, Bus: bus, Config: cfg, Log: log, Root: root}
}

// Graph returns the cached graph, loading it from the relational index on
// first access per invocation.
func (e *Engine) Graph(ctx context.Context) (*graph.Graph, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.graph != nil {
		return e.graph, nil
	}
	g, err := graph.Load(ctx, e.Store.DB())
	if err != nil {
		return nil, err
	}
	e.graph = g
	return g, nil
}

// InvalidateGraph drops the cached graph. Called unconditionally after every
// vault transaction commits or aborts (§4.3, §9 "Cache invalidation").
func (e *Engine) InvalidateGraph() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph = nil
}

// runTx runs fn inside a vault transaction rooted at e.Root, invalidating
// the graph cache unconditionally afterward.
func (e *Engine) runTx(ctx context.Context, fn func(tx *vault.Tx) error) error {
	return vault.Run(ctx, e.Store, e.Root, e.InvalidateGraph, fn)
}

// dispatch emits an event through the bus and folds any handler warnings
// into warnings, never failing the caller (§4.12).
func (e *Engine) dispatch(ctx context.Context, eventType, session string, payload map[string]any) []string {
	if e.Bus == nil {
		return nil
	}
	warnings, err := e.Bus.Dispatch(ctx, eventType, session, payload)
	if err != nil && e.Log != nil {
		e.Log.Error("dispatch failed", "event", eventType, "error", err)
	}
	return warnings
}

// exists reports whether a vault-relative path has a file on disk, for the
// integrity checker's db-file-consistency category.
func (e *Engine) exists(relPath string) (bool, error) {
	_, err := os.Stat(filepath.Join(e.Root, relPath))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// readVaultFile reads a vault-relative path's raw bytes.
func (e *Engine) readVaultFile(relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(e.Root, relPath))
}

// walkVaultFiles lists every markdown content file under the notes and ops
// spaces, vault-relative, for `check --rebuild`'s from-files reconstruction.
// The self space (identity/methodology templates) carries no indexed nodes
// and is skipped.
func (e *Engine) walkVaultFiles() ([]string, error) {
	var out []string
	for _, space := range []model.Space{model.SpaceNotes, model.SpaceOps} {
		root := filepath.Join(e.Root, string(space))
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".md") {
				return nil
			}
			rel, err := filepath.Rel(e.Root, path)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
