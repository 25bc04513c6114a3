package changefeed

import (
	"encoding/json"
	"strings"

	"jobtag/internal/domain/application"
)

// Normalize converts a backend notification into a ChangeEvent.
// It reports false for unknown kinds, undecodable rows and rows without an id.
func Normalize(p Payload) (ChangeEvent, bool) {
	switch strings.ToUpper(strings.TrimSpace(p.kind())) {
	case "INSERT":
		return normalizeRow(KindInsert, p)
	case "UPDATE":
		return normalizeRow(KindUpdate, p)
	case "DELETE":
		id := keyOf(p.oldRow()).ID
		if id == "" {
			return ChangeEvent{}, false
		}
		return ChangeEvent{Kind: KindDelete, ID: id}, true
	default:
		return ChangeEvent{}, false
	}
}

func normalizeRow(kind Kind, p Payload) (ChangeEvent, bool) {
	raw := p.newRow()
	if raw == nil {
		return ChangeEvent{}, false
	}

	var app application.Application
	if err := json.Unmarshal(raw, &app); err != nil {
		return ChangeEvent{}, false
	}
	if app.ID == "" {
		// some publications only carry the key in the old row
		app.ID = keyOf(p.oldRow()).ID
	}
	if app.ID == "" {
		return ChangeEvent{}, false
	}

	return ChangeEvent{Kind: kind, ID: app.ID, Record: &app}, true
}
