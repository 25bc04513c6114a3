package client

import (
	"sort"
	"time"

	"jobtag/internal/domain/application"
)

const NoteCurrentStatus = "Current status"

// Timeline merges the live status with the stored history, newest first.
// The result always starts with the current status: its date is now, or the
// newest history date when the history runs past now.
func Timeline(app application.Application, now time.Time) []application.StatusEvent {
	history := make([]application.StatusEvent, len(app.StatusHistory))
	copy(history, app.StatusHistory)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})

	current := now
	if len(history) > 0 && history[0].Date.After(current) {
		current = history[0].Date
	}
	if app.CreatedAt.After(current) {
		current = app.CreatedAt
	}

	events := make([]application.StatusEvent, 0, len(history)+2)
	events = append(events, application.StatusEvent{
		Status: app.Status,
		Date:   current,
		Note:   NoteCurrentStatus,
	})
	events = append(events, history...)

	applied := false
	for _, ev := range history {
		if ev.Status == application.StatusApplied {
			applied = true
			break
		}
	}
	if !applied {
		events = append(events, application.StatusEvent{
			Status: application.StatusApplied,
			Date:   app.CreatedAt,
			Note:   application.NoteSubmitted,
		})
	}

	// createdAt may be newer than the oldest history entries
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	return events
}
