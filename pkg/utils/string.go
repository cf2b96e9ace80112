// Package utils provides bespoke, one off utils that don't make sense to be
// their own package.
package utils

// Truncate is a simple string truncate
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
