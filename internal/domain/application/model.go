package application

import (
	"strings"
	"time"
)

const (
	SourceManual = "manual"
	SourceEmail  = "email"

	NoteSubmitted = "Application submitted"
)

// Application - заявка на вакансию, принадлежащая одному владельцу.
type Application struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Company       string        `json:"company"`
	Position      string        `json:"position"`
	Status        Status        `json:"status"`
	Location      string        `json:"location,omitempty"`
	JobURL        string        `json:"job_url,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Source        string        `json:"source,omitempty"`
	Archived      bool          `json:"archived"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	StatusHistory []StatusEvent `json:"status_history"`
}

// StatusEvent - одна запись в истории статусов.
type StatusEvent struct {
	Status     Status    `json:"status"`
	Date       time.Time `json:"date"`
	Note       string    `json:"note,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	EmailID    string    `json:"email_id,omitempty"`
}

// CreateInput - данные для создания заявки. Владелец задается отдельно.
type CreateInput struct {
	Company       string        `json:"company" doc:"Company name"`
	Position      string        `json:"position" doc:"Position title"`
	Status        Status        `json:"status,omitempty" required:"false"`
	Location      string        `json:"location,omitempty" required:"false"`
	JobURL        string        `json:"job_url,omitempty" required:"false"`
	Notes         string        `json:"notes,omitempty" required:"false"`
	Source        string        `json:"source,omitempty" required:"false" enum:"manual,email"`
	CreatedAt     time.Time     `json:"created_at,omitempty" required:"false" doc:"Applied date"`
	StatusHistory []StatusEvent `json:"status_history,omitempty" required:"false"`
}

// UpdateInput - частичное обновление: nil означает "не менять".
type UpdateInput struct {
	Company  *string `json:"company,omitempty" required:"false"`
	Position *string `json:"position,omitempty" required:"false"`
	Location *string `json:"location,omitempty" required:"false"`
	JobURL   *string `json:"job_url,omitempty" required:"false"`
	Notes    *string `json:"notes,omitempty" required:"false"`
}

// ListFilter - критерии выборки заявок.
type ListFilter struct {
	Statuses []Status
	Archived *bool
	Search   string
	From     *time.Time
	To       *time.Time
}

// Matches applies the filter to an already fetched record.
func (f ListFilter) Matches(a Application) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Archived != nil && a.Archived != *f.Archived {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(a.Company), q) &&
			!strings.Contains(strings.ToLower(a.Position), q) {
			return false
		}
	}
	if f.From != nil && a.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && a.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// Touch sets UpdatedAt to now, never earlier than CreatedAt.
func (a *Application) Touch(now time.Time) {
	if now.Before(a.CreatedAt) {
		now = a.CreatedAt
	}
	a.UpdatedAt = now
}

// Clone returns a copy that does not share the history slice.
func (a Application) Clone() Application {
	if a.StatusHistory != nil {
		history := make([]StatusEvent, len(a.StatusHistory))
		copy(history, a.StatusHistory)
		a.StatusHistory = history
	}
	return a
}
