package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"golang.org/x/exp/slog"

	"jobtag/internal/app/client/config"
	"jobtag/internal/domain/application"
)

const applicationsTable = "applications"

// SupabaseClient - QueryClient, работающий напрямую с таблицей applications
// через PostgREST. Живых обновлений не дает: ChangeStream для этого бэкенда нет.
type SupabaseClient struct {
	client  *supabase.Client
	ownerID string
	now     func() time.Time
	log     *slog.Logger
}

func NewSupabaseClient(cfg *config.Config, log *slog.Logger) (*SupabaseClient, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Supabase: %w", err)
	}
	return &SupabaseClient{
		client: client,
		now:    time.Now,
		log:    log.With("component", "supabase_client"),
	}, nil
}

// ResolveOwner определяет владельца по access token Supabase и запоминает его.
func (s *SupabaseClient) ResolveOwner(token string) (string, error) {
	user, err := s.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	s.ownerID = user.ID.String()
	return s.ownerID, nil
}

func (s *SupabaseClient) FetchApplications(_ context.Context, ownerID string) ([]application.Application, error) {
	if ownerID == "" {
		ownerID = s.ownerID
	}
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	var rows []application.Application
	_, err := s.client.From(applicationsTable).
		Select("*", "", false).
		Eq("user_id", ownerID).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		s.log.Error("Ошибка чтения заявок", "user_id", ownerID, "error", err)
		return nil, fmt.Errorf("ошибка чтения заявок: %w", err)
	}
	if rows == nil {
		rows = []application.Application{}
	}
	return rows, nil
}

func (s *SupabaseClient) CreateApplication(_ context.Context, in application.CreateInput) (*application.Application, error) {
	if s.ownerID == "" {
		return nil, ErrUnauthorized
	}

	app, err := application.NewApplication(s.ownerID, in, s.now())
	if err != nil {
		return nil, err
	}

	var rows []application.Application
	_, err = s.client.From(applicationsTable).
		Insert(app, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		s.log.Error("Ошибка создания заявки", "user_id", s.ownerID, "error", err)
		return nil, fmt.Errorf("ошибка создания заявки: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("Supabase не вернул созданную запись")
	}
	return &rows[0], nil
}
