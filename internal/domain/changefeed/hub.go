package changefeed

import (
	"encoding/json"
	"sync"

	"github.com/oklog/ulid/v2"
	"golang.org/x/exp/slog"
)

const (
	EnvelopeChange = "change"

	defaultBuffer = 64
)

// Envelope - сообщение, отправляемое подписчику по websocket.
type Envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Subscriber получает конверты одного владельца.
type Subscriber struct {
	ownerID string
	ch      chan Envelope
}

// C закрывается, когда подписчик отписан или отброшен хабом.
func (s *Subscriber) C() <-chan Envelope {
	return s.ch
}

func (s *Subscriber) OwnerID() string {
	return s.ownerID
}

// Hub раздает изменения подписчикам по владельцу.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[*Subscriber]struct{}
	buffer  int
	log     *slog.Logger
	metrics *Metrics
}

func NewHub(log *slog.Logger, metrics *Metrics, buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Hub{
		subs:    make(map[string]map[*Subscriber]struct{}),
		buffer:  buffer,
		log:     log.With("component", "changefeed_hub"),
		metrics: metrics,
	}
}

func (h *Hub) Subscribe(ownerID string) *Subscriber {
	s := &Subscriber{ownerID: ownerID, ch: make(chan Envelope, h.buffer)}

	h.mu.Lock()
	set, ok := h.subs[ownerID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[ownerID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	h.metrics.Subscribers.Inc()
	h.log.Debug("subscriber added", "user_id", ownerID)
	return s
}

// Unsubscribe is safe to call more than once.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(s)
}

// remove requires h.mu held for writing.
func (h *Hub) remove(s *Subscriber) {
	set, ok := h.subs[s.ownerID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.ownerID)
	}
	close(s.ch)
	h.metrics.Subscribers.Dec()
}

// Publish wraps payload into an envelope and hands it to every subscriber
// of ownerID. Subscribers whose buffer is full are dropped.
// Returns the number of subscribers that received the envelope.
func (h *Hub) Publish(ownerID string, payload json.RawMessage) int {
	env := Envelope{
		ID:      ulid.Make().String(),
		Type:    EnvelopeChange,
		Payload: payload,
	}
	h.metrics.Published.Inc()

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for s := range h.subs[ownerID] {
		select {
		case s.ch <- env:
			delivered++
		default:
			h.log.Warn("dropping slow subscriber", "user_id", ownerID)
			h.metrics.Dropped.Inc()
			h.remove(s)
		}
	}
	h.metrics.Delivered.Add(float64(delivered))
	return delivered
}

func (h *Hub) Subscribers(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[ownerID])
}

// Connections returns the number of open subscriptions and distinct owners.
func (h *Hub) Connections() (subscribers, owners int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.subs {
		subscribers += len(set)
	}
	return subscribers, len(h.subs)
}

// Close drops every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for s := range set {
			h.remove(s)
		}
	}
}
