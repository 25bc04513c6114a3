package client

import (
	"context"
	"sync"

	"jobtag/internal/domain/application"
	"jobtag/internal/domain/changefeed"
)

type fakeQuery struct {
	mu        sync.Mutex
	records   []application.Application
	fetchErr  error
	createErr error
	created   []application.CreateInput
	nextID    string

	// fetchStarted is closed when a fetch begins; the fetch then blocks until
	// release is closed.
	fetchStarted chan struct{}
	release      chan struct{}
}

func (f *fakeQuery) FetchApplications(_ context.Context, _ string) ([]application.Application, error) {
	if f.fetchStarted != nil {
		close(f.fetchStarted)
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records, nil
}

func (f *fakeQuery) CreateApplication(_ context.Context, in application.CreateInput) (*application.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := f.nextID
	if id == "" {
		id = "created-1"
	}
	return &application.Application{
		ID:            id,
		Company:       in.Company,
		Position:      in.Position,
		Status:        in.Status,
		CreatedAt:     in.CreatedAt,
		StatusHistory: in.StatusHistory,
	}, nil
}

func (f *fakeQuery) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeStream struct {
	mu           sync.Mutex
	onEvent      func(changefeed.ChangeEvent)
	ownerID      string
	subscribeErr error
	subscribed   int
	unsubscribed int
	// onSubscribe runs inside Subscribe before it returns.
	onSubscribe func()
}

func (f *fakeStream) Subscribe(_ context.Context, ownerID string, onEvent func(changefeed.ChangeEvent)) (Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.ownerID = ownerID
	f.onEvent = onEvent
	f.subscribed++
	if f.onSubscribe != nil {
		f.onSubscribe()
	}
	return func() {
		f.mu.Lock()
		f.unsubscribed++
		f.mu.Unlock()
	}, nil
}

// emit delivers ev the way the transport goroutine would.
func (f *fakeStream) emit(ev changefeed.ChangeEvent) {
	f.mu.Lock()
	fn := f.onEvent
	f.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

type memorySaver struct {
	mu    sync.Mutex
	saves map[string][]application.Application
	count int
}

func (m *memorySaver) Save(ownerID string, records []application.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saves == nil {
		m.saves = map[string][]application.Application{}
	}
	m.saves[ownerID] = records
	m.count++
	return nil
}

func (f *fakeStream) counts() (subscribed, unsubscribed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed, f.unsubscribed
}
