package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewApplication validates the input and fills the defaults: status applied,
// source manual, created now, and a single "submitted" history entry.
func NewApplication(userID string, in CreateInput, now time.Time) (*Application, error) {
	company := strings.TrimSpace(in.Company)
	position := strings.TrimSpace(in.Position)
	if company == "" || position == "" {
		return nil, ErrInvalidData
	}

	status := in.Status
	if status == "" {
		status = StatusApplied
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	source := in.Source
	if source == "" {
		source = SourceManual
	}

	history := in.StatusHistory
	if len(history) == 0 {
		history = []StatusEvent{{Status: StatusApplied, Date: createdAt, Note: NoteSubmitted}}
	}
	for _, ev := range history {
		if err := ev.Status.Validate(); err != nil {
			return nil, err
		}
		if ev.Confidence != nil && (*ev.Confidence < 0 || *ev.Confidence > 1) {
			return nil, fmt.Errorf("%w: confidence out of range", ErrInvalidData)
		}
	}

	app := &Application{
		ID:            uuid.NewString(),
		UserID:        userID,
		Company:       company,
		Position:      position,
		Status:        status,
		Location:      strings.TrimSpace(in.Location),
		JobURL:        strings.TrimSpace(in.JobURL),
		Notes:         strings.TrimSpace(in.Notes),
		Source:        source,
		CreatedAt:     createdAt,
		StatusHistory: history,
	}
	app.Touch(now)
	return app, nil
}
