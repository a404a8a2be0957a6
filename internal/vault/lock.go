package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLocked is returned by Acquire when another process already holds the
// vault lock (§5: "only one writer per vault is expected").
var ErrLocked = errors.New("vault: locked by another process")

const lockFileName = ".ztlctl.lock"

// Lock is a single-writer vault lock backed by an O_CREATE|O_EXCL sentinel
// file. This is a deliberate simplification over platform-specific advisory
// locking (flock/LockFileEx): ztlctl's single-writer requirement only needs
// to fail fast against a second local process, not survive a shared
// filesystem or a process crash leaving a stale hold indefinitely — see
// DESIGN.md for the tradeoff against the teacher's internal/lockfile.
type Lock struct {
	path string
}

// Acquire creates the sentinel lock file at the vault root, failing with
// ErrLocked if it already exists.
func Acquire(root string) (*Lock, error) {
	path := filepath.Join(root, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("vault: acquire lock: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("vault: write lock pid: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the sentinel lock file. Safe to call once; callers
// typically defer it immediately after Acquire succeeds.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("vault: release lock: %w", err)
	}
	return nil
}
