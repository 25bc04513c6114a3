package client

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"jobtag/internal/domain/application"
	"jobtag/internal/domain/changefeed"
)

type NotificationKind string

const (
	NotificationInserted      NotificationKind = "inserted"
	NotificationStatusChanged NotificationKind = "status_changed"
)

// Notification - короткое сообщение пользователю о внешнем изменении.
type Notification struct {
	Kind          NotificationKind
	ApplicationID string
	Company       string
	Status        application.Status
	Message       string
	Detail        string
}

// Notifier получает уведомления сразу после применения события.
type Notifier interface {
	Notify(Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Store - локальная копия заявок владельца, которую обновляют события.
// Каждое изменение публикует новый срез; ранее выданные снимки не меняются.
type Store struct {
	mu        sync.RWMutex
	records   []application.Application
	effects   []Notification
	notifier  Notifier
	listeners []func([]application.Application)
	log       *slog.Logger
}

func NewStore(log *slog.Logger, notifier Notifier) *Store {
	return &Store{
		records:  []application.Application{},
		notifier: notifier,
		log:      log.With("component", "record_store"),
	}
}

// Initialize replaces the whole snapshot. No notifications are produced.
func (s *Store) Initialize(records []application.Application) {
	next := make([]application.Application, 0, len(records))
	seen := make(map[string]int, len(records))
	for _, r := range records {
		if r.ID == "" {
			s.log.Warn("skipping record without id", "company", r.Company)
			continue
		}
		if i, ok := seen[r.ID]; ok {
			next[i] = r.Clone()
			continue
		}
		seen[r.ID] = len(next)
		next = append(next, r.Clone())
	}

	s.mu.Lock()
	s.records = next
	s.mu.Unlock()

	s.changed(next)
}

// Apply applies one change event and reports whether the snapshot changed.
// Events without an id are logged and dropped.
func (s *Store) Apply(ev changefeed.ChangeEvent) bool {
	if ev.ID == "" {
		s.log.Warn("dropping change event", "kind", ev.Kind, "error", changefeed.ErrMalformedEvent)
		return false
	}

	switch ev.Kind {
	case changefeed.KindInsert, changefeed.KindUpdate:
		if ev.Record == nil {
			s.log.Warn("dropping change event without record", "kind", ev.Kind, "id", ev.ID)
			return false
		}
		rec := ev.Record.Clone()
		rec.ID = ev.ID
		s.upsert(rec, ev.Kind == changefeed.KindInsert)
		return true
	case changefeed.KindDelete:
		return s.remove(ev.ID)
	default:
		s.log.Warn("dropping change event of unknown kind", "kind", ev.Kind, "id", ev.ID)
		return false
	}
}

// AppendLocal добавляет только что созданную запись без уведомления.
// Эхо того же insert из потока событий заменит ее на месте.
func (s *Store) AppendLocal(rec application.Application) {
	if rec.ID == "" {
		s.log.Warn("skipping local record without id", "company", rec.Company)
		return
	}

	s.mu.Lock()
	next, _ := replaceOrPrepend(s.records, rec.Clone())
	s.records = next
	s.mu.Unlock()

	s.changed(next)
}

// upsert: an existing id is replaced in place for both kinds. A new id is
// prepended; only an external insert notifies, a self-healed update does not.
func (s *Store) upsert(rec application.Application, insert bool) {
	s.mu.Lock()
	next, prev := replaceOrPrepend(s.records, rec)
	s.records = next

	var n *Notification
	switch {
	case prev == nil && insert:
		n = &Notification{
			Kind:          NotificationInserted,
			ApplicationID: rec.ID,
			Company:       rec.Company,
			Status:        rec.Status,
			Message:       fmt.Sprintf("New application added: %s", rec.Company),
			Detail:        rec.Position,
		}
	case prev != nil && prev.Status != rec.Status:
		n = &Notification{
			Kind:          NotificationStatusChanged,
			ApplicationID: rec.ID,
			Company:       rec.Company,
			Status:        rec.Status,
			Message:       fmt.Sprintf("Status updated for %s", rec.Company),
			Detail:        fmt.Sprintf("Changed to: %s", rec.Status),
		}
	}
	if n != nil {
		s.effects = append(s.effects, *n)
	}
	s.mu.Unlock()

	if n != nil && s.notifier != nil {
		s.notifier.Notify(*n)
	}
	s.changed(next)
}

func (s *Store) remove(id string) bool {
	s.mu.Lock()
	idx := indexOf(s.records, id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	next := make([]application.Application, 0, len(s.records)-1)
	next = append(next, s.records[:idx]...)
	next = append(next, s.records[idx+1:]...)
	s.records = next
	s.mu.Unlock()

	s.changed(next)
	return true
}

// Snapshot returns the current list. Callers must not modify it.
func (s *Store) Snapshot() []application.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

func (s *Store) Get(id string) (application.Application, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.records, id); i >= 0 {
		return s.records[i].Clone(), true
	}
	return application.Application{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Effects returns the notifications produced so far.
func (s *Store) Effects() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.effects))
	copy(out, s.effects)
	return out
}

// DrainEffects returns the pending notifications and clears the list.
func (s *Store) DrainEffects() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.effects
	s.effects = nil
	return out
}

// OnChange registers fn to be called with the new snapshot after every mutation.
func (s *Store) OnChange(fn func([]application.Application)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) changed(snapshot []application.Application) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(snapshot)
	}
}

// replaceOrPrepend never modifies records. It returns the previous version
// of rec when the id was already present.
func replaceOrPrepend(records []application.Application, rec application.Application) ([]application.Application, *application.Application) {
	if i := indexOf(records, rec.ID); i >= 0 {
		prev := records[i]
		next := make([]application.Application, len(records))
		copy(next, records)
		next[i] = rec
		return next, &prev
	}

	next := make([]application.Application, 0, len(records)+1)
	next = append(next, rec)
	next = append(next, records...)
	return next, nil
}

func indexOf(records []application.Application, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
