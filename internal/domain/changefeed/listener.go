package changefeed

import (
	"context"
	"errors"
	"time"

	"golang.org/x/exp/slog"
)

const defaultRetryDelay = 2 * time.Second

// Notifications - источник сырых уведомлений (postgres LISTEN).
type Notifications interface {
	Next(ctx context.Context) ([]byte, error)
}

type Listener struct {
	source     Notifications
	hub        *Hub
	log        *slog.Logger
	retryDelay time.Duration
}

func NewListener(source Notifications, hub *Hub, log *slog.Logger) *Listener {
	return &Listener{
		source:     source,
		hub:        hub,
		log:        log.With("component", "changefeed_listener"),
		retryDelay: defaultRetryDelay,
	}
}

// Run reads notifications until ctx is done. Source errors are logged and
// retried after a delay; the gap is not replayed.
func (l *Listener) Run(ctx context.Context) error {
	l.log.Info("listening for changes")
	for {
		raw, err := l.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				l.log.Info("listener stopped")
				return nil
			}
			l.log.Error("failed to receive notification", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.retryDelay):
			}
			continue
		}
		l.Handle(raw)
	}
}

// Handle routes a single notification to the owner's subscribers.
func (l *Listener) Handle(raw []byte) {
	p, err := Decode(raw)
	if err != nil {
		l.skip("undecodable notification", err)
		return
	}
	ev, ok := Normalize(p)
	if !ok {
		l.skip("notification without id", ErrMalformedEvent)
		return
	}
	owner := Owner(p)
	if owner == "" {
		l.skip("notification without owner", ErrMalformedEvent)
		return
	}

	n := l.hub.Publish(owner, raw)
	l.log.Debug("change published", "kind", ev.Kind, "id", ev.ID, "user_id", owner, "subscribers", n)
}

func (l *Listener) skip(msg string, err error) {
	l.hub.metrics.Malformed.Inc()
	l.log.Warn(msg, "error", err)
}
