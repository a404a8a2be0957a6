package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// BackupTimestampFormat is the UTC-compact timestamp used in backup
// filenames: backups/<vault>-<UTC-compact>.db (§4.11).
const BackupTimestampFormat = "20060102T150405Z"

// BackupName builds the filename for a backup taken at t.
func BackupName(vaultName string, t time.Time) string {
	return fmt.Sprintf("%s-%s.db", vaultName, t.UTC().Format(BackupTimestampFormat))
}

// BackupBeforeDestructive copies the relational file to backupsDir before a
// destructive operation (fix/rebuild/rollback), then prunes backups beyond
// retention. It runs on its own, outside any transaction: callers take the
// backup just before opening the transaction of the operation it precedes.
func (s *Store) BackupBeforeDestructive(ctx context.Context, backupsDir, vaultName string, retention int, now time.Time) (string, error) {
	if err := os.MkdirAll(backupsDir, 0o750); err != nil {
		return "", fmt.Errorf("sqlite: create backups dir: %w", err)
	}
	dest := filepath.Join(backupsDir, BackupName(vaultName, now))
	if err := s.Backup(ctx, dest); err != nil {
		return "", err
	}
	if err := pruneBackups(backupsDir, vaultName, retention); err != nil {
		return dest, fmt.Errorf("sqlite: prune backups: %w", err)
	}
	return dest, nil
}

func pruneBackups(backupsDir, vaultName string, retention int) error {
	if retention <= 0 {
		return nil
	}
	entries, err := os.ReadDir(backupsDir)
	if err != nil {
		return err
	}
	prefix := vaultName + "-"
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if len(e.Name()) > len(prefix) && e.Name()[:len(prefix)] == prefix {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names) // UTC-compact names sort chronologically
	if len(names) <= retention {
		return nil
	}
	for _, name := range names[:len(names)-retention] {
		if err := os.Remove(filepath.Join(backupsDir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// MostRecentBackup returns the path of the newest backup for vaultName, or
// "" if none exist (`check --rollback`).
func MostRecentBackup(backupsDir, vaultName string) (string, error) {
	entries, err := os.ReadDir(backupsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	prefix := vaultName + "-"
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if len(e.Name()) > len(prefix) && e.Name()[:len(prefix)] == prefix {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(backupsDir, names[len(names)-1]), nil
}
