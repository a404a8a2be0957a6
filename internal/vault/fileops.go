package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideVault is returned when a resolved path escapes the vault root
// (§4.3: "refuses any target whose canonicalized path is not a descendant
// of the vault root").
var ErrOutsideVault = errors.New("vault: path escapes vault root")

// resolve canonicalizes rel against root and rejects escapes, including via
// symlinks.
func (tx *Tx) resolve(rel string) (string, error) {
	joined := filepath.Join(tx.root, rel)
	cleaned := filepath.Clean(joined)
	rootClean := filepath.Clean(tx.root)
	if cleaned != rootClean && !strings.HasPrefix(cleaned, rootClean+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, rel)
	}
	// Resolve symlinks on whatever already exists on disk to catch an
	// escape hidden behind a symlinked ancestor directory.
	resolvedRoot, err := filepath.EvalSymlinks(rootClean)
	if err != nil {
		return "", fmt.Errorf("vault: resolve root: %w", err)
	}
	dir := filepath.Dir(cleaned)
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("vault: resolve parent dir: %w", err)
	}
	if err == nil && resolvedDir != resolvedRoot && !strings.HasPrefix(resolvedDir, resolvedRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, rel)
	}
	return cleaned, nil
}

// WriteFile writes content to the path rel (relative to the vault root),
// tracking it for rollback: a newly created file is deleted on abort; an
// existing file's original bytes are captured once, on first write, and
// restored on abort (§4.3).
func (tx *Tx) WriteFile(rel string, content []byte, perm os.FileMode) error {
	path, err := tx.resolve(rel)
	if err != nil {
		return err
	}
	if _, tracked := tx.writes[path]; !tracked {
		pre, existed := readIfExists(path)
		tx.writes[path] = &trackedWrite{existed: existed, preimage: pre}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("vault: mkdir for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, content, perm); err != nil {
		return fmt.Errorf("vault: write %s: %w", rel, err)
	}
	return nil
}

// ReadFile reads the path rel relative to the vault root, without tracking
// it for rollback (reads never need undoing).
func (tx *Tx) ReadFile(rel string) ([]byte, error) {
	path, err := tx.resolve(rel)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", rel, err)
	}
	return b, nil
}

// DeleteFile removes the path rel, tracking its pre-image for restoration
// on abort.
func (tx *Tx) DeleteFile(rel string) error {
	path, err := tx.resolve(rel)
	if err != nil {
		return err
	}
	if _, tracked := tx.writes[path]; !tracked {
		pre, existed := readIfExists(path)
		tx.writes[path] = &trackedWrite{existed: existed, preimage: pre}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("vault: delete %s: %w", rel, err)
	}
	return nil
}

func readIfExists(path string) ([]byte, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return b, true
}

// trackedWrite is one file's undo record: whether it existed before this
// transaction touched it, and its original bytes if so.
type trackedWrite struct {
	existed  bool
	preimage []byte
}

// undo restores path to its pre-transaction state: deletes it if it did not
// exist before, otherwise rewrites the captured pre-image. Best-effort —
// rollback must never mask the primary error that triggered it (§4.3).
func (w *trackedWrite) undo(path string) error {
	if !w.existed {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return os.WriteFile(path, w.preimage, 0o644)
}
