package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtag/internal/domain/changefeed"
	"jobtag/internal/utils/logger"
)

func envelope(typ, payload string) changefeed.Envelope {
	return changefeed.Envelope{ID: "e", Type: typ, Payload: json.RawMessage(payload)}
}

func TestRealtimeClient_DeliversNormalizedEvents(t *testing.T) {
	closed := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		for _, env := range []changefeed.Envelope{
			envelope("subscribed", `{}`),
			envelope("change", `"garbage"`),
			envelope("change", `{"type":"INSERT","record":{"id":"x","user_id":"someone-else"}}`),
			envelope("change", `{"type":"TRUNCATE"}`),
			envelope("change", `{"type":"INSERT","record":{"id":"1","user_id":"owner","company":"Google","status":"applied"}}`),
			envelope("change", `{"type":"DELETE","record":null,"old_record":{"id":"2","user_id":"owner"}}`),
		} {
			if !assert.NoError(t, conn.WriteJSON(env)) {
				return
			}
		}

		// wait for the client close frame
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(closed)
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/realtime"
	c := NewRealtimeClient(wsURL, "tok", logger.Discard())

	events := make(chan changefeed.ChangeEvent, 8)
	unsubscribe, err := c.Subscribe(context.Background(), "owner", func(ev changefeed.ChangeEvent) {
		events <- ev
	})
	require.NoError(t, err)

	var got []changefeed.ChangeEvent
	for len(got) < 2 {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d events, want 2", len(got))
		}
	}

	assert.Equal(t, changefeed.KindInsert, got[0].Kind)
	assert.Equal(t, "1", got[0].ID)
	require.NotNil(t, got[0].Record)
	assert.Equal(t, "Google", got[0].Record.Company)
	assert.Equal(t, changefeed.ChangeEvent{Kind: changefeed.KindDelete, ID: "2"}, got[1])

	unsubscribe()
	unsubscribe()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not see the connection close")
	}
	assert.Empty(t, events)
}

func TestRealtimeClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewRealtimeClient("ws"+strings.TrimPrefix(srv.URL, "http"), "bad", logger.Discard())
	_, err := c.Subscribe(context.Background(), "owner", func(changefeed.ChangeEvent) {})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRealtimeClient_ReconnectsAfterServerClose(t *testing.T) {
	var conns atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		if conns.Add(1) == 1 {
			// first connection is dropped the way the hub drops a slow subscriber
			_ = conn.WriteJSON(envelope("subscribed", `{}`))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "slow subscriber"))
			return
		}

		_ = conn.WriteJSON(envelope("subscribed", `{}`))
		_ = conn.WriteJSON(envelope("change", `{"type":"UPDATE","record":{"id":"7","user_id":"owner","company":"Stripe","status":"offer"}}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := NewRealtimeClient("ws"+strings.TrimPrefix(srv.URL, "http"), "tok", logger.Discard())
	c.retryInitial = 10 * time.Millisecond
	c.retryMax = 50 * time.Millisecond

	events := make(chan changefeed.ChangeEvent, 4)
	unsubscribe, err := c.Subscribe(context.Background(), "owner", func(ev changefeed.ChangeEvent) {
		events <- ev
	})
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case ev := <-events:
		assert.Equal(t, changefeed.KindUpdate, ev.Kind)
		assert.Equal(t, "7", ev.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("no event after reconnect")
	}
	assert.Equal(t, int32(2), conns.Load())
}

func TestRealtimeClient_UnsubscribeStopsRedial(t *testing.T) {
	var conns atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		conns.Add(1)
		_ = conn.Close()
	}))
	defer srv.Close()

	c := NewRealtimeClient("ws"+strings.TrimPrefix(srv.URL, "http"), "tok", logger.Discard())
	c.retryInitial = time.Hour
	c.retryMax = time.Hour

	unsubscribe, err := c.Subscribe(context.Background(), "owner", func(changefeed.ChangeEvent) {})
	require.NoError(t, err)

	// the read loop sees the drop and waits in backoff; unsubscribe must end it
	time.Sleep(50 * time.Millisecond)
	unsubscribe()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), conns.Load())
}
