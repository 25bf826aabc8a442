// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayout matches what CURRENT_TIMESTAMP writes, so bound parameters
// compare correctly against defaulted columns.
const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nextIDExpr is a scalar subquery yielding prefix followed by MAX(numeric
// suffix)+1, zero padded to 3. It runs inside the INSERT that uses it, so the
// ID is allocated under the statement's write lock.
func nextIDExpr(table, prefix string) string {
	return fmt.Sprintf(
		"(SELECT '%s' || printf('%%03d', COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) + 1) FROM %s)",
		prefix, len(prefix)+1, table,
	)
}
