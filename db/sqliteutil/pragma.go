// Package sqliteutil holds DSN helpers for the pure-Go SQLite driver.
package sqliteutil

import (
	"fmt"
	"strings"
)

// IsMemory reports whether dsn names a private in-memory database.
func IsMemory(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	return lower == ":memory:" || strings.HasPrefix(lower, "file::memory:") || strings.Contains(lower, "mode=memory")
}

// EnsurePragmas appends SQLite pragmas to the DSN when missing: WAL journaling,
// a busy timeout and enforced foreign keys. Journal mode is left alone for
// in-memory databases.
func EnsurePragmas(dsn string, wal bool, busyTimeoutMS int) string {
	if dsn == "" {
		return dsn
	}
	lower := strings.ToLower(dsn)
	if wal && !IsMemory(dsn) && !strings.Contains(lower, "_pragma=journal_mode") {
		dsn = addPragma(dsn, "journal_mode(WAL)")
	}
	if busyTimeoutMS > 0 && !strings.Contains(lower, "_pragma=busy_timeout") {
		dsn = addPragma(dsn, fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	}
	if !strings.Contains(lower, "_pragma=foreign_keys") {
		dsn = addPragma(dsn, "foreign_keys(1)")
	}
	return dsn
}

func addPragma(dsn, pragma string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=" + pragma
}
