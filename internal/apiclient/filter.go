package apiclient

import (
	"strings"

	"qms/queue-client/internal/models"
)

const (
	FilterWaiting = "waiting"
	FilterServed  = "served"
)

// FilterEntries narrows a report by counter and by "waiting"/"served" status.
// Zero counterID and empty status match everything.
func FilterEntries(entries []models.QueueEntry, counterID int64, status string) []models.QueueEntry {
	status = strings.ToLower(strings.TrimSpace(status))
	out := make([]models.QueueEntry, 0, len(entries))
	for _, entry := range entries {
		if counterID != 0 && entry.CounterRef() != counterID {
			continue
		}
		switch status {
		case FilterWaiting:
			if entry.Served {
				continue
			}
		case FilterServed:
			if !entry.Served {
				continue
			}
		}
		out = append(out, entry)
	}
	return out
}
