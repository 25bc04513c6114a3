package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"jobtag/internal/domain/changefeed"
)

const (
	envelopeSubscribed = "subscribed"

	realtimeWriteWait = 10 * time.Second
	realtimePongWait  = 60 * time.Second

	realtimeRetryInitial = 500 * time.Millisecond
	realtimeRetryMax     = 30 * time.Second
)

// RealtimeClient - ChangeStream поверх websocket сервера.
// Оборванное соединение переподключается с экспоненциальной паузой;
// события, пришедшие за время разрыва, теряются.
type RealtimeClient struct {
	url          string
	token        string
	dialer       *websocket.Dialer
	log          *slog.Logger
	retryInitial time.Duration
	retryMax     time.Duration
}

func NewRealtimeClient(rawURL, token string, log *slog.Logger) *RealtimeClient {
	return &RealtimeClient{
		url:          rawURL,
		token:        token,
		dialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:          log.With("component", "realtime_client"),
		retryInitial: realtimeRetryInitial,
		retryMax:     realtimeRetryMax,
	}
}

// subscription - текущее соединение одной подписки.
type subscription struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// swap installs a fresh connection unless the subscription was closed.
func (s *subscription) swap(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conn = conn
	return true
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(realtimeWriteWait))
	_ = s.conn.Close()
}

func (s *subscription) stopped() bool {
	return s.ctx.Err() != nil
}

// Subscribe открывает соединение и доставляет нормализованные события в onEvent
// из отдельной горутины. Ошибка возвращается, только если первое соединение
// не установлено.
func (c *RealtimeClient) Subscribe(ctx context.Context, ownerID string, onEvent func(changefeed.ChangeEvent)) (Unsubscribe, error) {
	target, err := c.target()
	if err != nil {
		return nil, err
	}

	conn, err := c.dial(ctx, target)
	if err != nil {
		return nil, err
	}

	log := c.log.With("owner_id", ownerID)
	log.Info("Подписка на изменения открыта")

	subCtx, cancel := context.WithCancel(context.Background())
	sub := &subscription{conn: conn, ctx: subCtx, cancel: cancel}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			sub.close()
			log.Info("Подписка на изменения закрыта")
		})
	}

	go c.run(sub, target, ownerID, onEvent, log)

	return unsubscribe, nil
}

func (c *RealtimeClient) target() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("некорректный адрес realtime: %w", err)
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *RealtimeClient) dial(ctx context.Context, target string) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("ошибка подключения к realtime: %w", err)
	}
	return conn, nil
}

// run reads until the subscription is closed, redialing after every drop.
func (c *RealtimeClient) run(sub *subscription, target, ownerID string, onEvent func(changefeed.ChangeEvent), log *slog.Logger) {
	conn := sub.conn
	for {
		err := c.readLoop(conn, sub, ownerID, onEvent, log)
		if sub.stopped() {
			return
		}
		log.Warn("Соединение realtime потеряно, события до переподключения пропущены", "error", err)

		conn = c.redial(sub, target, log)
		if conn == nil {
			return
		}
		if !sub.swap(conn) {
			_ = conn.Close()
			return
		}
		log.Info("Подписка на изменения восстановлена")
	}
}

// redial returns nil when the subscription is closed or the token is rejected.
func (c *RealtimeClient) redial(sub *subscription, target string, log *slog.Logger) *websocket.Conn {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial
	b.MaxInterval = c.retryMax
	b.Reset()

	for attempt := 1; ; attempt++ {
		timer := time.NewTimer(b.NextBackOff())
		select {
		case <-sub.ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		conn, err := c.dial(sub.ctx, target)
		if err == nil {
			return conn
		}
		if errors.Is(err, ErrUnauthorized) {
			log.Error("Токен отклонен при переподключении, подписка остановлена")
			return nil
		}
		if sub.stopped() {
			return nil
		}
		log.Debug("Переподключение не удалось", "attempt", attempt, "error", err)
	}
}

// readLoop returns the read error that ended the connection.
func (c *RealtimeClient) readLoop(conn *websocket.Conn, sub *subscription, ownerID string, onEvent func(changefeed.ChangeEvent), log *slog.Logger) error {
	_ = conn.SetReadDeadline(time.Now().Add(realtimePongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(realtimePongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(realtimeWriteWait))
	})

	for {
		var env changefeed.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			_ = conn.Close()
			if sub.stopped() {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				log.Warn("Сервер закрыл соединение", "code", closeErr.Code, "text", closeErr.Text)
			}
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(realtimePongWait))

		if sub.stopped() {
			return nil
		}

		if env.Type != changefeed.EnvelopeChange {
			if env.Type != envelopeSubscribed {
				log.Debug("Неизвестный тип сообщения", "type", env.Type)
			}
			continue
		}

		ev, ok := c.decode(env.Payload, ownerID, log)
		if !ok {
			continue
		}
		onEvent(ev)
	}
}

func (c *RealtimeClient) decode(raw json.RawMessage, ownerID string, log *slog.Logger) (changefeed.ChangeEvent, bool) {
	p, err := changefeed.Decode(raw)
	if err != nil {
		log.Warn("Некорректное событие пропущено", "error", err)
		return changefeed.ChangeEvent{}, false
	}
	if owner := changefeed.Owner(p); owner != "" && owner != ownerID {
		log.Warn("Событие чужого владельца пропущено", "owner_id", owner)
		return changefeed.ChangeEvent{}, false
	}
	ev, ok := changefeed.Normalize(p)
	if !ok {
		log.Warn("Событие без id или с неизвестным типом пропущено", "type", p.Type, "event_type", p.EventType)
		return changefeed.ChangeEvent{}, false
	}
	return ev, true
}
