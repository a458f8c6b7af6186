package web

import "strings"

// GetErrorHint returns a helpful hint for common errors.
// Returns empty string if no hint is available.
func GetErrorHint(err string) string {
	errLower := strings.ToLower(err)

	switch {
	case strings.Contains(errLower, "table full"):
		return "The table has reached its fixed capacity; no more rows can be inserted."
	case strings.Contains(errLower, "slot out of range"):
		return "With the id slot policy, ids must be smaller than the table capacity."
	case strings.Contains(errLower, "expected 3 args"):
		return "Usage: insert <id> <username> <email>"
	case strings.Contains(errLower, "invalid id"):
		return "Ids are unsigned 32-bit integers."
	case strings.Contains(errLower, "unknown command"):
		return "Supported commands are insert and select."
	case strings.Contains(errLower, "io error"):
		return "The backing file could not be read or written; check disk space and permissions."
	default:
		return ""
	}
}
