package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

// Notifications держит отдельное соединение из пула под LISTEN.
// После ошибки соединение освобождается и при следующем вызове Next
// берется новое.
type Notifications struct {
	pool    *pgxpool.Pool
	channel string
	conn    *pgxpool.Conn
	log     *slog.Logger
}

func NewNotifications(pool *pgxpool.Pool, channel string, log *slog.Logger) *Notifications {
	return &Notifications{
		pool:    pool,
		channel: channel,
		log:     log.With("component", "pg_notifications"),
	}
}

// Next blocks until a notification arrives on the channel or ctx is done.
func (n *Notifications) Next(ctx context.Context) ([]byte, error) {
	if n.conn == nil {
		if err := n.listen(ctx); err != nil {
			return nil, err
		}
	}

	msg, err := n.conn.Conn().WaitForNotification(ctx)
	if err != nil {
		n.Close()
		return nil, fmt.Errorf("wait for notification: %w", err)
	}
	return []byte(msg.Payload), nil
}

func (n *Notifications) listen(ctx context.Context) error {
	conn, err := n.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{n.channel}.Sanitize()); err != nil {
		conn.Release()
		return fmt.Errorf("listen %s: %w", n.channel, err)
	}
	n.conn = conn
	n.log.Info("listening", "channel", n.channel)
	return nil
}

func (n *Notifications) Close() {
	if n.conn == nil {
		return
	}
	// соединение в состоянии LISTEN не должно вернуться в пул
	n.conn.Hijack().Close(context.Background())
	n.conn = nil
}
