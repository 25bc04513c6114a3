package changefeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtag/internal/domain/application"
)

func mustDecode(t *testing.T, raw string) Payload {
	t.Helper()
	p, err := Decode([]byte(raw))
	require.NoError(t, err)
	return p
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantOK   bool
		wantKind Kind
		wantID   string
	}{
		{
			name:     "server insert",
			raw:      `{"type":"INSERT","table":"applications","record":{"id":"1","user_id":"u1","company":"Google","position":"SRE","status":"applied"},"old_record":null}`,
			wantOK:   true,
			wantKind: KindInsert,
			wantID:   "1",
		},
		{
			name:     "client update",
			raw:      `{"eventType":"UPDATE","new":{"id":"1","company":"Google","status":"interview"},"old":{"id":"1"}}`,
			wantOK:   true,
			wantKind: KindUpdate,
			wantID:   "1",
		},
		{
			name:     "update with key only in old row",
			raw:      `{"type":"UPDATE","record":{"company":"Google","status":"offer"},"old_record":{"id":"7"}}`,
			wantOK:   true,
			wantKind: KindUpdate,
			wantID:   "7",
		},
		{
			name:     "delete takes id from old row",
			raw:      `{"eventType":"delete","new":{},"old":{"id":"3","user_id":"u1"}}`,
			wantOK:   true,
			wantKind: KindDelete,
			wantID:   "3",
		},
		{
			name: "insert without id",
			raw:  `{"type":"INSERT","record":{"company":"Google"}}`,
		},
		{
			name: "delete without old row",
			raw:  `{"type":"DELETE","record":null}`,
		},
		{
			name: "unknown kind",
			raw:  `{"type":"TRUNCATE","record":{"id":"1"}}`,
		},
		{
			name: "undecodable row",
			raw:  `{"type":"INSERT","record":{"id":1}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Normalize(mustDecode(t, tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantKind, ev.Kind)
			assert.Equal(t, tt.wantID, ev.ID)
			if tt.wantKind == KindDelete {
				assert.Nil(t, ev.Record)
			} else {
				require.NotNil(t, ev.Record)
				assert.Equal(t, tt.wantID, ev.Record.ID)
			}
		})
	}
}

func TestNormalize_DecodesRecord(t *testing.T) {
	p := mustDecode(t, `{"type":"INSERT","record":{
		"id":"1","user_id":"u1","company":"Google","position":"SRE","status":"screening",
		"created_at":"2024-03-01T10:00:00+00:00","updated_at":"2024-03-02T10:00:00.123456+00:00",
		"status_history":[{"status":"applied","date":"2024-03-01T10:00:00Z","note":"Application submitted","confidence":0.9}]
	}}`)

	ev, ok := Normalize(p)
	require.True(t, ok)
	rec := ev.Record
	assert.Equal(t, "Google", rec.Company)
	assert.Equal(t, application.StatusScreening, rec.Status)
	require.Len(t, rec.StatusHistory, 1)
	require.NotNil(t, rec.StatusHistory[0].Confidence)
	assert.InDelta(t, 0.9, *rec.StatusHistory[0].Confidence, 1e-9)
	assert.True(t, rec.UpdatedAt.After(rec.CreatedAt))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestOwner(t *testing.T) {
	assert.Equal(t, "u1", Owner(mustDecode(t, `{"type":"INSERT","record":{"id":"1","user_id":"u1"}}`)))
	assert.Equal(t, "u2", Owner(mustDecode(t, `{"type":"DELETE","old_record":{"id":"1","user_id":"u2"}}`)))
	assert.Empty(t, Owner(mustDecode(t, `{"type":"DELETE","old_record":{"id":"1"}}`)))
}
