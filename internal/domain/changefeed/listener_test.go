package changefeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtag/internal/utils/logger"
)

type fakeSource struct {
	items chan []byte
	errs  chan error
}

func newFakeSource() *fakeSource {
	return &fakeSource{items: make(chan []byte, 8), errs: make(chan error, 8)}
}

func (f *fakeSource) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-f.errs:
		return nil, err
	case raw := <-f.items:
		return raw, nil
	}
}

func TestListener_Handle(t *testing.T) {
	hub, m := newTestHub(4)
	l := NewListener(newFakeSource(), hub, logger.Discard())
	s := hub.Subscribe("u1")

	l.Handle([]byte(`{"type":"INSERT","record":{"id":"1","user_id":"u1","company":"Google"}}`))
	l.Handle([]byte(`{"type":"INSERT","record":{"id":"2","user_id":"u2","company":"Meta"}}`))
	l.Handle([]byte(`{"type":"INSERT","record":{"user_id":"u1"}}`))
	l.Handle([]byte(`{"type":"DELETE","old_record":{"id":"1"}}`))
	l.Handle([]byte(`garbage`))

	require.Len(t, s.C(), 1)
	env := <-s.C()
	assert.Contains(t, string(env.Payload), "Google")
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Malformed))
}

func TestListener_RunRetriesAndStops(t *testing.T) {
	hub, _ := newTestHub(4)
	src := newFakeSource()
	l := NewListener(src, hub, logger.Discard())
	l.retryDelay = time.Millisecond
	s := hub.Subscribe("u1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	src.errs <- errors.New("connection reset")
	src.items <- []byte(`{"type":"UPDATE","record":{"id":"1","user_id":"u1","status":"offer"}}`)

	select {
	case env := <-s.C():
		assert.Contains(t, string(env.Payload), "offer")
	case <-time.After(time.Second):
		t.Fatal("notification was not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}
