package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"jobtag/internal/domain/application"
)

const applicationColumns = `id::text, user_id::text, company, position, status, location, job_url,
		notes, source, archived, status_history, created_at, updated_at`

type ApplicationRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewApplicationRepository(pool *pgxpool.Pool, log *slog.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		pool: pool,
		log:  log.With("component", "application_repository"),
	}
}

func (r *ApplicationRepository) List(ctx context.Context, userID string, f application.ListFilter) ([]application.Application, error) {
	query, args := buildListQuery(userID, f)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list applications", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

func buildListQuery(userID string, f application.ListFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1`)
	args := []any{userID}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		b.WriteString(` AND status = ANY(` + arg(statuses) + `)`)
	}
	if f.Archived != nil {
		b.WriteString(` AND archived = ` + arg(*f.Archived))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		p := arg("%" + q + "%")
		b.WriteString(` AND (company ILIKE ` + p + ` OR position ILIKE ` + p + `)`)
	}
	if f.From != nil {
		b.WriteString(` AND created_at >= ` + arg(*f.From))
	}
	if f.To != nil {
		b.WriteString(` AND created_at <= ` + arg(*f.To))
	}
	b.WriteString(` ORDER BY updated_at DESC`)

	return b.String(), args
}

func (r *ApplicationRepository) Get(ctx context.Context, userID, id string) (*application.Application, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND user_id = $2`,
		id, userID)

	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	history, err := json.Marshal(historyOrEmpty(app.StatusHistory))
	if err != nil {
		return fmt.Errorf("%w: %v", application.ErrInvalidData, err)
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO applications (id, user_id, company, position, status, location, job_url,
		                          notes, source, archived, status_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13)
		RETURNING updated_at`,
		app.ID, app.UserID, app.Company, app.Position, string(app.Status), app.Location, app.JobURL,
		app.Notes, app.Source, app.Archived, string(history), app.CreatedAt, app.UpdatedAt,
	).Scan(&app.UpdatedAt)
	if err != nil {
		r.log.Error("failed to insert application", "user_id", app.UserID, "error", err)
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app *application.Application) error {
	history, err := json.Marshal(historyOrEmpty(app.StatusHistory))
	if err != nil {
		return fmt.Errorf("%w: %v", application.ErrInvalidData, err)
	}

	err = r.pool.QueryRow(ctx, `
		UPDATE applications
		SET company = $3, position = $4, status = $5, location = $6, job_url = $7,
		    notes = $8, archived = $9, status_history = $10::jsonb, updated_at = $11
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`,
		app.ID, app.UserID, app.Company, app.Position, string(app.Status), app.Location, app.JobURL,
		app.Notes, app.Archived, string(history), app.UpdatedAt,
	).Scan(&app.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.ErrNotFound
		}
		r.log.Error("failed to update application", "id", app.ID, "error", err)
		return fmt.Errorf("update application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func scanApplication(row pgx.Row) (*application.Application, error) {
	var (
		app     application.Application
		status  string
		history []byte
	)
	err := row.Scan(
		&app.ID, &app.UserID, &app.Company, &app.Position, &status, &app.Location, &app.JobURL,
		&app.Notes, &app.Source, &app.Archived, &history, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.Status = application.Status(status)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &app.StatusHistory); err != nil {
			return nil, fmt.Errorf("decode status history: %w", err)
		}
	}
	return &app, nil
}

func historyOrEmpty(h []application.StatusEvent) []application.StatusEvent {
	if h == nil {
		return []application.StatusEvent{}
	}
	return h
}
