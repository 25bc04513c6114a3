package changefeed

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload - уведомление бэкенда об изменении строки.
// Поддерживает обе формы: серверную (type/record/old_record)
// и клиентскую (eventType/new/old).
type Payload struct {
	Type            string          `json:"type,omitempty"`
	EventType       string          `json:"eventType,omitempty"`
	Schema          string          `json:"schema,omitempty"`
	Table           string          `json:"table,omitempty"`
	Record          json.RawMessage `json:"record,omitempty"`
	New             json.RawMessage `json:"new,omitempty"`
	OldRecord       json.RawMessage `json:"old_record,omitempty"`
	Old             json.RawMessage `json:"old,omitempty"`
	CommitTimestamp string          `json:"commit_timestamp,omitempty"`
}

// Decode разбирает сырое уведомление.
func Decode(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return p, nil
}

func (p Payload) kind() string {
	if p.Type != "" {
		return p.Type
	}
	return p.EventType
}

func (p Payload) newRow() json.RawMessage {
	if present(p.Record) {
		return p.Record
	}
	if present(p.New) {
		return p.New
	}
	return nil
}

func (p Payload) oldRow() json.RawMessage {
	if present(p.OldRecord) {
		return p.OldRecord
	}
	if present(p.Old) {
		return p.Old
	}
	return nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

type rowKey struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

func keyOf(raw json.RawMessage) rowKey {
	var k rowKey
	if raw == nil {
		return k
	}
	_ = json.Unmarshal(raw, &k)
	return k
}

// Owner возвращает владельца строки: из новой версии, иначе из старой.
func Owner(p Payload) string {
	if owner := keyOf(p.newRow()).UserID; owner != "" {
		return owner
	}
	return keyOf(p.oldRow()).UserID
}
