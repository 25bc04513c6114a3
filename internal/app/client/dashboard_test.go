package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtag/internal/domain/application"
	"jobtag/internal/domain/changefeed"
	"jobtag/internal/utils/logger"
)

func TestDashboard_MountAndLiveUpdates(t *testing.T) {
	q := &fakeQuery{records: fiveRecords()}
	stream := &fakeStream{}
	saver := &memorySaver{}
	var notes []Notification

	d := NewDashboard("owner-1", q, stream, logger.Discard(),
		WithSnapshotSaver(saver),
		WithNotifier(NotifierFunc(func(n Notification) { notes = append(notes, n) })),
	)
	require.NoError(t, d.Mount(context.Background()))
	assert.Equal(t, "owner-1", stream.ownerID)
	assert.Equal(t, Counts{All: 5, Applied: 3, InProgress: 1, Offers: 1, Rejected: 0}, d.Counts(Query{}))

	stream.emit(update(rec("1", "Google", application.StatusInterview)))
	stream.emit(insert(rec("6", "Airbnb", application.StatusApplied)))
	stream.emit(del("4"))

	assert.Equal(t, Counts{All: 5, Applied: 3, InProgress: 2, Offers: 0, Rejected: 0}, d.Counts(Query{}))
	assert.Equal(t, []string{"6", "1", "2", "3", "5"}, ids(d.View(Query{}, GroupAll, SortSpec{})))
	assert.Equal(t, []string{"1", "2"}, ids(d.View(Query{}, GroupInProgress, SortSpec{})))
	require.Len(t, notes, 2)
	assert.Equal(t, NotificationStatusChanged, notes[0].Kind)
	assert.Equal(t, NotificationInserted, notes[1].Kind)

	saver.mu.Lock()
	assert.Equal(t, 4, saver.count)
	assert.Len(t, saver.saves["owner-1"], 5)
	saver.mu.Unlock()

	d.Unmount()
	assert.Equal(t, 1, stream.unsubscribed)

	// late delivery after unmount is ignored
	stream.emit(del("1"))
	_, ok := d.Store().Get("1")
	assert.True(t, ok)
}

func TestDashboard_FetchFailureStartsEmpty(t *testing.T) {
	q := &fakeQuery{fetchErr: errors.New("boom")}
	stream := &fakeStream{}
	d := NewDashboard("owner-1", q, stream, logger.Discard())

	require.NoError(t, d.Mount(context.Background()))
	assert.Equal(t, 0, d.Store().Len())

	stream.emit(insert(rec("1", "Google", application.StatusApplied)))
	assert.Equal(t, 1, d.Store().Len())
}

func TestDashboard_SubscribeFailureKeepsSnapshot(t *testing.T) {
	q := &fakeQuery{records: fiveRecords()}
	stream := &fakeStream{subscribeErr: errors.New("ws down")}
	d := NewDashboard("owner-1", q, stream, logger.Discard())

	err := d.Mount(context.Background())

	require.Error(t, err)
	assert.Equal(t, 5, d.Store().Len())
	d.Unmount()
}

func TestDashboard_WithoutStream(t *testing.T) {
	d := NewDashboard("owner-1", &fakeQuery{records: fiveRecords()}, nil, logger.Discard())

	require.NoError(t, d.Mount(context.Background()))
	assert.Equal(t, 5, d.Store().Len())
	d.Unmount()
}

func TestDashboard_TimelineAndStats(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	records := fiveRecords()
	for i := range records {
		records[i].CreatedAt = now.AddDate(0, 0, -i)
		records[i].UpdatedAt = now
	}
	d := NewDashboard("owner-1", &fakeQuery{records: records}, nil, logger.Discard())
	require.NoError(t, d.Mount(context.Background()))

	events, ok := d.Timeline("2", now)
	require.True(t, ok)
	assert.Equal(t, application.StatusInterview, events[0].Status)

	_, ok = d.Timeline("missing", now)
	assert.False(t, ok)

	stats := d.Stats(now)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Offers)
}

func TestDashboard_CreationFlowAppendsLocally(t *testing.T) {
	q := &fakeQuery{records: fiveRecords(), nextID: "new"}
	stream := &fakeStream{}
	var notes []Notification
	d := NewDashboard("owner-1", q, stream, logger.Discard(),
		WithCreationCloseDelay(time.Hour),
		WithNotifier(NotifierFunc(func(n Notification) { notes = append(notes, n) })),
	)
	require.NoError(t, d.Mount(context.Background()))

	flow := d.NewCreationFlow(nil)
	flow.Edit(func(f *Form) {
		f.Company = "Figma"
		f.Position = "Designer"
	})
	created, err := flow.Submit(context.Background())
	require.NoError(t, err)
	defer flow.Reset()

	assert.Equal(t, "new", d.Store().Snapshot()[0].ID)

	// echo from the change stream replaces the local copy silently
	stream.emit(insert(*created))
	assert.Equal(t, 6, d.Store().Len())
	assert.Empty(t, notes)

	ev := changefeed.ChangeEvent{Kind: changefeed.KindDelete, ID: "new"}
	stream.emit(ev)
	assert.Equal(t, 5, d.Store().Len())
}

func TestDashboard_UnmountDuringFetchSkipsSubscribe(t *testing.T) {
	q := &fakeQuery{
		records:      fiveRecords(),
		fetchStarted: make(chan struct{}),
		release:      make(chan struct{}),
	}
	stream := &fakeStream{}
	d := NewDashboard("owner-1", q, stream, logger.Discard())

	mounted := make(chan error, 1)
	go func() { mounted <- d.Mount(context.Background()) }()

	<-q.fetchStarted
	d.Unmount()
	close(q.release)

	require.NoError(t, <-mounted)
	subscribed, unsubscribed := stream.counts()
	assert.Zero(t, subscribed)
	assert.Zero(t, unsubscribed)
	assert.Zero(t, d.Store().Len())
}

func TestDashboard_UnmountDuringSubscribeClosesSubscription(t *testing.T) {
	stream := &fakeStream{}
	d := NewDashboard("owner-1", &fakeQuery{records: fiveRecords()}, stream, logger.Discard())
	stream.onSubscribe = d.Unmount

	require.NoError(t, d.Mount(context.Background()))

	subscribed, unsubscribed := stream.counts()
	assert.Equal(t, 1, subscribed)
	assert.Equal(t, 1, unsubscribed)

	// the dashboard can be mounted again afterwards
	stream.onSubscribe = nil
	require.NoError(t, d.Mount(context.Background()))
	d.Unmount()
	_, unsubscribed = stream.counts()
	assert.Equal(t, 2, unsubscribed)
}

func TestDashboard_LocalCreateReachesSnapshotCache(t *testing.T) {
	q := &fakeQuery{records: fiveRecords(), nextID: "new"}
	saver := &memorySaver{}
	d := NewDashboard("owner-1", q, &fakeStream{}, logger.Discard(),
		WithSnapshotSaver(saver),
		WithCreationCloseDelay(time.Hour),
	)
	require.NoError(t, d.Mount(context.Background()))
	defer d.Unmount()

	flow := d.NewCreationFlow(nil)
	defer flow.Reset()
	flow.Edit(func(f *Form) {
		f.Company = "Figma"
		f.Position = "Designer"
	})
	_, err := flow.Submit(context.Background())
	require.NoError(t, err)

	saver.mu.Lock()
	defer saver.mu.Unlock()
	require.Len(t, saver.saves["owner-1"], 6)
	assert.Equal(t, "new", saver.saves["owner-1"][0].ID)
}
