package sqlite

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ConnString builds a ncruces/go-sqlite3 connection string with the pragmas
// the vault engine requires: WAL journal mode (concurrent readers, one
// writer per vault, §5), a busy timeout so a lock-contending writer waits
// rather than fails immediately, and foreign key enforcement. Honors
// ZTLCTL_LOCK_TIMEOUT for the busy timeout (default 10s).
func ConnString(path string, readOnly bool) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	busy := 10 * time.Second
	if v := strings.TrimSpace(os.Getenv("ZTLCTL_LOCK_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			busy = d
		}
	}
	busyMs := int64(busy / time.Millisecond)

	mode := ""
	if readOnly {
		mode = "&mode=ro"
	}
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)%s",
		path, busyMs, mode,
	)
}
