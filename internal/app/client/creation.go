package client

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	"jobtag/internal/domain/application"
)

const (
	DefaultCloseDelay       = 1500 * time.Millisecond
	SubmissionFailedMessage = "Failed to add application. Please try again."
)

var ErrSubmitInProgress = errors.New("submission already in progress")

// Form - поля формы добавления заявки.
type Form struct {
	Company     string
	Position    string
	Location    string
	JobURL      string
	Notes       string
	AppliedDate time.Time
}

// NewForm returns an empty form with the applied date set to today.
func NewForm(now time.Time) Form {
	y, m, d := now.Date()
	return Form{AppliedDate: time.Date(y, m, d, 0, 0, 0, 0, now.Location())}
}

type formRules struct {
	Company  string `validate:"required"`
	Position string `validate:"required"`
}

var validate = validator.New()

// FieldErrors - ошибки по полям формы, ключ - имя поля.
type FieldErrors map[string]string

// Validate checks the required fields after trimming whitespace.
func (f Form) Validate() FieldErrors {
	err := validate.Struct(formRules{
		Company:  strings.TrimSpace(f.Company),
		Position: strings.TrimSpace(f.Position),
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Field() + " is required"
	}
	return fields
}

// Input builds the create request: status applied, created at the applied
// date, history seeded with the submission event.
func (f Form) Input() application.CreateInput {
	return application.CreateInput{
		Company:   strings.TrimSpace(f.Company),
		Position:  strings.TrimSpace(f.Position),
		Status:    application.StatusApplied,
		Location:  strings.TrimSpace(f.Location),
		JobURL:    strings.TrimSpace(f.JobURL),
		Notes:     strings.TrimSpace(f.Notes),
		Source:    application.SourceManual,
		CreatedAt: f.AppliedDate,
		StatusHistory: []application.StatusEvent{{
			Status: application.StatusApplied,
			Date:   f.AppliedDate,
			Note:   application.NoteSubmitted,
		}},
	}
}

type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e.Fields[k]
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for one field, e.g. "company".
func (e *ValidationError) Field(name string) (string, bool) {
	msg, ok := e.Fields[name]
	return msg, ok
}

type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return SubmissionFailedMessage }

func (e *SubmissionError) Unwrap() error { return e.Err }

type CreationOption func(*CreationFlow)

// WithCloseDelay задает паузу между успехом и закрытием формы.
func WithCloseDelay(d time.Duration) CreationOption {
	return func(f *CreationFlow) {
		if d >= 0 {
			f.closeDelay = d
		}
	}
}

// LocalStore принимает записи, созданные этим клиентом. Store и Dashboard
// реализуют его; Dashboard еще и сохраняет снимок.
type LocalStore interface {
	AppendLocal(rec application.Application)
}

// WithOptimisticStore добавляет созданную запись в хранилище, не дожидаясь
// события из потока.
func WithOptimisticStore(s LocalStore) CreationOption {
	return func(f *CreationFlow) { f.store = s }
}

func WithOnClose(fn func()) CreationOption {
	return func(f *CreationFlow) { f.onClose = fn }
}

func withClock(now func() time.Time) CreationOption {
	return func(f *CreationFlow) { f.now = now }
}

// CreationFlow - состояние формы добавления заявки.
type CreationFlow struct {
	mu         sync.Mutex
	query      QueryClient
	store      LocalStore
	onClose    func()
	closeDelay time.Duration
	now        func() time.Time
	log        *slog.Logger

	form       Form
	submitting bool
	succeeded  bool
	lastErr    error
	closeTimer *time.Timer
}

func NewCreationFlow(query QueryClient, log *slog.Logger, opts ...CreationOption) *CreationFlow {
	f := &CreationFlow{
		query:      query,
		closeDelay: DefaultCloseDelay,
		now:        time.Now,
		log:        log.With("component", "creation_flow"),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.form = NewForm(f.now())
	return f
}

func (f *CreationFlow) Form() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Edit changes the form in place; a previous error is cleared.
func (f *CreationFlow) Edit(change func(*Form)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	change(&f.form)
	f.lastErr = nil
}

func (f *CreationFlow) Succeeded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.succeeded
}

func (f *CreationFlow) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Err returns the error of the last submission attempt.
func (f *CreationFlow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Submit validates the form and sends it. A validation failure makes no
// call. A backend failure keeps the form for retry. Once issued the call is
// not cancelled by the flow.
func (f *CreationFlow) Submit(ctx context.Context) (*application.Application, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	form := f.form
	if fields := form.Validate(); len(fields) > 0 {
		err := &ValidationError{Fields: fields}
		f.lastErr = err
		f.mu.Unlock()
		return nil, err
	}
	f.submitting = true
	f.lastErr = nil
	f.mu.Unlock()

	app, err := f.query.CreateApplication(ctx, form.Input())

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if err == nil && app == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		f.log.Error("failed to create application", "company", form.Company, "error", err)
		f.lastErr = &SubmissionError{Err: err}
		return nil, f.lastErr
	}

	f.succeeded = true
	f.log.Info("application created", "id", app.ID, "company", app.Company)
	if f.store != nil {
		f.store.AppendLocal(*app)
	}
	f.scheduleClose()
	return app, nil
}

// scheduleClose requires f.mu held.
func (f *CreationFlow) scheduleClose() {
	if f.closeTimer != nil {
		f.closeTimer.Stop()
	}
	f.closeTimer = time.AfterFunc(f.closeDelay, f.close)
}

func (f *CreationFlow) close() {
	f.mu.Lock()
	f.form = NewForm(f.now())
	f.succeeded = false
	f.lastErr = nil
	f.closeTimer = nil
	onClose := f.onClose
	f.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

// Reset clears the form and cancels a pending close.
func (f *CreationFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeTimer != nil {
		f.closeTimer.Stop()
		f.closeTimer = nil
	}
	f.form = NewForm(f.now())
	f.succeeded = false
	f.lastErr = nil
}
