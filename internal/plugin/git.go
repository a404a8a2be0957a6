// Package plugin implements thin, best-effort collaborator wrappers whose
// failures are always surfaced as warnings, never as fatal errors (§1, §6,
// §4.12). GitHandler is the version-control plugin: after a session closes
// and after a check fix or rebuild, it stages the vault's working tree with
// `git add -A` (it does not commit), if the vault root is a git repository.
package plugin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
)

// GitHandler best-effort stages and reports on the vault's git working tree.
// It never fails a caller: a missing .git directory is silently skipped, and
// exec errors are returned to the bus, which reports them as warnings.
type GitHandler struct {
	root string
}

// NewGitHandler returns a GitHandler rooted at the vault directory.
func NewGitHandler(root string) *GitHandler {
	return &GitHandler{root: root}
}

func (h *GitHandler) ID() string { return "plugin.git" }

// Handles reports this plugin runs after session close and after the check
// pipeline's destructive operations, matching §6's "plugin wrappers for
// version control" collaborator note.
func (h *GitHandler) Handles(eventType string) bool {
	switch eventType {
	case eventbus.PostSessionClose, eventbus.PostCheck:
		return true
	default:
		return false
	}
}

// Handle shells out to `git add -A` then `git status --porcelain`. The status
// output is discarded and nil is returned on success; a failing command's
// error is returned (the bus turns that into a warning, never a failure).
func (h *GitHandler) Handle(ctx context.Context, eventType string, payload map[string]any) error {
	if _, err := os.Stat(filepath.Join(h.root, ".git")); err != nil {
		return nil // not a git-backed vault; nothing to do
	}

	add := exec.CommandContext(ctx, "git", "add", "-A")
	add.Dir = h.root
	if out, err := add.CombinedOutput(); err != nil {
		return fmt.Errorf("git add -A: %w (%s)", err, bytes.TrimSpace(out))
	}

	status := exec.CommandContext(ctx, "git", "status", "--porcelain")
	status.Dir = h.root
	out, err := status.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git status --porcelain: %w (%s)", err, bytes.TrimSpace(out))
	}
	return nil
}
