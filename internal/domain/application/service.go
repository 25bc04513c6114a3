package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

// Servicer defines the business logic for applications
type Servicer interface {
	List(ctx context.Context, userID string, filter ListFilter) ([]Application, error)
	Find(ctx context.Context, userID, id string) (*Application, error)
	Create(ctx context.Context, userID string, in CreateInput) (*Application, error)
	Update(ctx context.Context, userID, id string, in UpdateInput) (*Application, error)
	ChangeStatus(ctx context.Context, userID, id string, status Status, note string) (*Application, error)
	SetArchived(ctx context.Context, userID, id string, archived bool) (*Application, error)
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (Stats, error)
}

// Service implements Servicer on top of a Repository
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService creates a new application service
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "application_service"),
		now:  time.Now,
	}
}

// List returns the owner's applications, most recently updated first
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Application, error) {
	apps, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		s.log.Error("failed to list applications", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list applications: %w", err)
	}
	if apps == nil {
		apps = []Application{}
	}
	return apps, nil
}

// Find returns a single application
func (s *Service) Find(ctx context.Context, userID, id string) (*Application, error) {
	app, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to find application", "id", id, "user_id", userID, "error", err)
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

// Create stores a new application. The id is assigned here.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Application, error) {
	app, err := NewApplication(userID, in, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, app); err != nil {
		s.log.Error("failed to create application", "user_id", userID, "company", app.Company, "error", err)
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.log.Info("application created", "id", app.ID, "user_id", userID, "company", app.Company)
	return app, nil
}

// Update changes the editable fields of an application
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*Application, error) {
	return s.mutate(ctx, userID, id, "update", func(app *Application) error {
		if in.Company != nil {
			v := strings.TrimSpace(*in.Company)
			if v == "" {
				return ErrInvalidData
			}
			app.Company = v
		}
		if in.Position != nil {
			v := strings.TrimSpace(*in.Position)
			if v == "" {
				return ErrInvalidData
			}
			app.Position = v
		}
		if in.Location != nil {
			app.Location = strings.TrimSpace(*in.Location)
		}
		if in.JobURL != nil {
			app.JobURL = strings.TrimSpace(*in.JobURL)
		}
		if in.Notes != nil {
			app.Notes = strings.TrimSpace(*in.Notes)
		}
		return nil
	})
}

// ChangeStatus moves the application to a new status and records the transition
func (s *Service) ChangeStatus(ctx context.Context, userID, id string, status Status, note string) (*Application, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, id, "change status", func(app *Application) error {
		app.Status = status
		app.StatusHistory = append(app.StatusHistory, StatusEvent{
			Status: status,
			Date:   s.now(),
			Note:   strings.TrimSpace(note),
		})
		return nil
	})
}

// SetArchived archives or restores an application
func (s *Service) SetArchived(ctx context.Context, userID, id string, archived bool) (*Application, error) {
	return s.mutate(ctx, userID, id, "set archived", func(app *Application) error {
		app.Archived = archived
		return nil
	})
}

// Delete permanently removes an application
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error("failed to delete application", "id", id, "user_id", userID, "error", err)
		return fmt.Errorf("delete application: %w", err)
	}

	s.log.Info("application deleted", "id", id, "user_id", userID)
	return nil
}

// Stats aggregates the owner's applications
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	apps, err := s.repo.List(ctx, userID, ListFilter{})
	if err != nil {
		s.log.Error("failed to get stats", "user_id", userID, "error", err)
		return Stats{}, fmt.Errorf("get stats: %w", err)
	}
	return ComputeStats(apps, s.now()), nil
}

func (s *Service) mutate(ctx context.Context, userID, id, op string, change func(*Application) error) (*Application, error) {
	app, err := s.Find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := change(app); err != nil {
		return nil, err
	}
	app.Touch(s.now())

	if err := s.repo.Update(ctx, app); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to "+op, "id", id, "user_id", userID, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("application updated", "id", id, "user_id", userID, "op", op, "status", app.Status)
	return app, nil
}
