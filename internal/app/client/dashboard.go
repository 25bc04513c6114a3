package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"jobtag/internal/domain/application"
	"jobtag/internal/domain/changefeed"
)

// SnapshotSaver сохраняет последний снимок для офлайн-просмотра.
type SnapshotSaver interface {
	Save(ownerID string, records []application.Application) error
}

type DashboardOption func(*Dashboard)

func WithNotifier(n Notifier) DashboardOption {
	return func(d *Dashboard) { d.notifier = n }
}

func WithSnapshotSaver(s SnapshotSaver) DashboardOption {
	return func(d *Dashboard) { d.cache = s }
}

func WithCreationCloseDelay(delay time.Duration) DashboardOption {
	return func(d *Dashboard) { d.closeDelay = delay }
}

// Dashboard владеет одним Store на время монтирования.
// Все изменения хранилища идут под d.mu, что заменяет единственный UI поток.
type Dashboard struct {
	mu          sync.Mutex
	ownerID     string
	query       QueryClient
	stream      ChangeStream
	store       *Store
	notifier    Notifier
	cache       SnapshotSaver
	closeDelay  time.Duration
	unsubscribe Unsubscribe
	mounted     bool
	generation  uint64
	log         *slog.Logger
}

func NewDashboard(ownerID string, query QueryClient, stream ChangeStream, log *slog.Logger, opts ...DashboardOption) *Dashboard {
	d := &Dashboard{
		ownerID:    ownerID,
		query:      query,
		stream:     stream,
		closeDelay: DefaultCloseDelay,
		log:        log.With("component", "dashboard", "user_id", ownerID),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.store = NewStore(log, d.notifier)
	return d
}

// Mount loads the initial snapshot and subscribes to changes. A failed
// fetch leaves the list empty and is not returned. Only a failed
// subscription is an error; the snapshot stays loaded in that case.
// An Unmount during either blocking step wins: nothing is left subscribed.
func (d *Dashboard) Mount(ctx context.Context) error {
	d.mu.Lock()
	if d.mounted {
		d.mu.Unlock()
		return nil
	}
	d.mounted = true
	d.generation++
	gen := d.generation
	d.mu.Unlock()

	records, err := d.query.FetchApplications(ctx, d.ownerID)
	if err != nil {
		d.log.Warn("initial fetch failed, starting empty", "error", err)
		records = nil
	}

	d.mu.Lock()
	if !d.current(gen) {
		d.mu.Unlock()
		d.log.Debug("unmounted during initial fetch")
		return nil
	}
	d.store.Initialize(records)
	d.saveSnapshot()
	d.mu.Unlock()

	if d.stream == nil {
		return nil
	}
	unsubscribe, err := d.stream.Subscribe(ctx, d.ownerID, d.handle)
	if err != nil {
		d.log.Error("subscribe failed", "error", err)
		return fmt.Errorf("subscribe: %w", err)
	}

	d.mu.Lock()
	if !d.current(gen) {
		d.mu.Unlock()
		d.log.Debug("unmounted during subscribe, closing subscription")
		unsubscribe()
		return nil
	}
	d.unsubscribe = unsubscribe
	d.mu.Unlock()
	return nil
}

// current requires d.mu held.
func (d *Dashboard) current(gen uint64) bool {
	return d.mounted && d.generation == gen
}

func (d *Dashboard) handle(ev changefeed.ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.mounted {
		return
	}
	if d.store.Apply(ev) {
		d.saveSnapshot()
	}
}

// saveSnapshot requires d.mu held.
func (d *Dashboard) saveSnapshot() {
	if d.cache == nil {
		return
	}
	if err := d.cache.Save(d.ownerID, d.store.Snapshot()); err != nil {
		d.log.Warn("failed to cache snapshot", "error", err)
	}
}

// Unmount tears down the subscription. Events arriving afterwards are ignored.
func (d *Dashboard) Unmount() {
	d.mu.Lock()
	unsubscribe := d.unsubscribe
	d.unsubscribe = nil
	d.mounted = false
	d.generation++
	d.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (d *Dashboard) Store() *Store {
	return d.store
}

// View returns what the list renders for the given filters.
func (d *Dashboard) View(q Query, group StatusGroup, spec SortSpec) []application.Application {
	return Project(q.Apply(d.store.Snapshot()), group, spec)
}

func (d *Dashboard) Counts(q Query) Counts {
	return CountByGroup(q.Apply(d.store.Snapshot()))
}

func (d *Dashboard) Stats(now time.Time) application.Stats {
	return application.ComputeStats(d.store.Snapshot(), now)
}

func (d *Dashboard) Timeline(id string, now time.Time) ([]application.StatusEvent, bool) {
	app, ok := d.store.Get(id)
	if !ok {
		return nil, false
	}
	return Timeline(app, now), true
}

// AppendLocal adds a record created by this client and refreshes the
// offline snapshot.
func (d *Dashboard) AppendLocal(rec application.Application) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.store.AppendLocal(rec)
	d.saveSnapshot()
}

// NewCreationFlow returns a form bound to this dashboard's store.
func (d *Dashboard) NewCreationFlow(onClose func()) *CreationFlow {
	return NewCreationFlow(d.query, d.log,
		WithOptimisticStore(d),
		WithCloseDelay(d.closeDelay),
		WithOnClose(onClose),
	)
}
