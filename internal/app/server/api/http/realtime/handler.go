package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"golang.org/x/exp/slog"

	"jobtag/internal/domain/changefeed"
)

const (
	Path = "/api/v1/realtime"

	// EnvelopeSubscribed - первое сообщение после успешного подключения.
	EnvelopeSubscribed = "subscribed"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Authenticator определяет владельца по запросу.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

type Handler struct {
	auth     Authenticator
	hub      *changefeed.Hub
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewHandler(auth Authenticator, hub *changefeed.Hub, log *slog.Logger) *Handler {
	return &Handler{
		auth: auth,
		hub:  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log.With("component", "realtime_handler"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Authenticate(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.log.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	sub := h.hub.Subscribe(userID)
	c := &client{
		conn: conn,
		sub:  sub,
		log:  h.log.With("user_id", userID, "connection_id", ulid.Make().String()),
	}
	c.log.Info("client connected")

	go c.writePump(h.hub)
	c.readPump(h.hub)
}

type client struct {
	conn *websocket.Conn
	sub  *changefeed.Subscriber
	log  *slog.Logger
}

// readPump only keeps the connection alive; clients send nothing but pongs
// and close frames.
func (c *client) readPump(hub *changefeed.Hub) {
	defer func() {
		hub.Unsubscribe(c.sub)
		c.conn.Close()
		c.log.Info("client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read error", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump(hub *changefeed.Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		hub.Unsubscribe(c.sub)
		c.conn.Close()
	}()

	hello := changefeed.Envelope{
		ID:      ulid.Make().String(),
		Type:    EnvelopeSubscribed,
		Payload: json.RawMessage(`{}`),
	}
	if err := c.write(hello); err != nil {
		return
	}

	for {
		select {
		case env, ok := <-c.sub.C():
			if !ok {
				// хаб отключил подписчика
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber dropped"))
				return
			}
			if err := c.write(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

func (c *client) write(env changefeed.Envelope) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(env); err != nil {
		c.log.Debug("write failed", "error", err)
		return err
	}
	return nil
}
