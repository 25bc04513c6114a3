package application

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

type Status string

const (
	StatusApplied   Status = "applied"
	StatusScreening Status = "screening"
	StatusInterview Status = "interview"
	StatusTechnical Status = "technical"
	StatusFinal     Status = "final"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusApplied,
	StatusScreening,
	StatusInterview,
	StatusTechnical,
	StatusFinal,
	StatusOffer,
	StatusRejected,
	StatusWithdrawn,
}

// Schema реализует huma.SchemaProvider.
func (Status) Schema(huma.Registry) *huma.Schema {
	enum := make([]any, len(Statuses))
	for i, s := range Statuses {
		enum[i] = string(s)
	}

	return &huma.Schema{
		Type:        "string",
		Enum:        enum,
		Description: "Application pipeline status",
		Examples:    []any{StatusApplied},
	}
}

// Validate проверяет, что статус входит в перечисление.
func (s Status) Validate() error {
	for _, known := range Statuses {
		if s == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
}

func (s Status) String() string {
	return string(s)
}

// Label возвращает человекочитаемое название статуса.
func (s Status) Label() string {
	switch s {
	case StatusApplied:
		return "Applied"
	case StatusScreening:
		return "Screening"
	case StatusInterview:
		return "Interview"
	case StatusTechnical:
		return "Technical Round"
	case StatusFinal:
		return "Final Round"
	case StatusOffer:
		return "Offer Received"
	case StatusRejected:
		return "Rejected"
	case StatusWithdrawn:
		return "Withdrawn"
	default:
		return string(s)
	}
}

// Rank is the position of the status in the pipeline; unknown statuses rank last.
func (s Status) Rank() int {
	for i, known := range Statuses {
		if s == known {
			return i
		}
	}
	return len(Statuses)
}

// InProgress reports whether the status is one of the interview stages.
func (s Status) InProgress() bool {
	switch s {
	case StatusScreening, StatusInterview, StatusTechnical, StatusFinal:
		return true
	}
	return false
}

// Active reports whether the application is still open.
func (s Status) Active() bool {
	return s == StatusApplied || s.InProgress()
}
