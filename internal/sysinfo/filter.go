package sysinfo

import (
	"strings"

	"github.com/prabalesh/aideck/internal/models"
)

// FilterLogs returns the entries whose message or source contains query,
// ignoring case. An empty query returns entries unchanged. The input slice is
// never modified.
func FilterLogs(entries []models.LogEntry, query string) []models.LogEntry {
	if query == "" {
		return entries
	}
	needle := strings.ToLower(query)
	out := make([]models.LogEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Message), needle) ||
			strings.Contains(strings.ToLower(e.Source), needle) {
			out = append(out, e)
		}
	}
	return out
}
