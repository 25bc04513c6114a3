package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"jobtag/internal/app/server/api/http/middleware/auth"
	"jobtag/internal/domain/application"
)

type Handler struct {
	service    application.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service application.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "application_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.statsOp(), h.stats)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.statusOp(), h.changeStatus)
	huma.Register(api, h.archiveOp(), h.archive)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	filter, err := input.filter()
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	apps, err := h.service.List(ctx, userID, filter)
	if err != nil {
		return nil, h.toHTTPError(err)
	}

	return &listOutput{
		Body: listResponse{Applications: apps, Count: len(apps)},
	}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	app, err := h.service.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, h.toHTTPError(err)
	}
	return &output{Body: app}, nil
}

func (h *Handler) stats(ctx context.Context, _ *struct{}) (*statsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	stats, err := h.service.Stats(ctx, userID)
	if err != nil {
		return nil, h.toHTTPError(err)
	}
	return &statsOutput{Body: stats}, nil
}

func (h *Handler) find(ctx context.Context, input *idInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	app, err := h.service.Find(ctx, userID, input.ID)
	if err != nil {
		return nil, h.toHTTPError(err)
	}
	return &output{Body: app}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	app, err := h.service.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, h.toHTTPError(err)
	}
	return &output{Body: app}, nil
}

func (h *Handler) changeStatus(ctx context.Context, input *statusInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	app, err := h.service.ChangeStatus(ctx, userID, input.ID, input.Body.Status, input.Body.Note)
	if err != nil {
		return nil, h.toHTTPError(err)
	}
	return &output{Body: app}, nil
}

func (h *Handler) archive(ctx context.Context, input *archiveInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	app, err := h.service.SetArchived(ctx, userID, input.ID, input.Body.Archived)
	if err != nil {
		return nil, h.toHTTPError(err)
	}
	return &output{Body: app}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*struct{}, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Delete(ctx, userID, input.ID); err != nil {
		return nil, h.toHTTPError(err)
	}
	return nil, nil
}

func (h *Handler) toHTTPError(err error) error {
	switch {
	case errors.Is(err, application.ErrNotFound):
		return huma.Error404NotFound("application not found")
	case errors.Is(err, application.ErrInvalidStatus), errors.Is(err, application.ErrInvalidData):
		return huma.Error422UnprocessableEntity(err.Error())
	}
	h.log.Error("request failed", "error", err)
	return huma.Error500InternalServerError("internal error")
}

func (in *listInput) filter() (application.ListFilter, error) {
	f := application.ListFilter{Search: in.Search}

	for _, raw := range in.Status {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			s := application.Status(strings.ToLower(part))
			if err := s.Validate(); err != nil {
				return f, err
			}
			f.Statuses = append(f.Statuses, s)
		}
	}

	switch in.Archived {
	case "true":
		v := true
		f.Archived = &v
	case "false":
		v := false
		f.Archived = &v
	case "":
	default:
		return f, fmt.Errorf("archived: expected true or false, got %q", in.Archived)
	}

	var err error
	if f.From, err = parseBound(in.From, false); err != nil {
		return f, fmt.Errorf("from: %w", err)
	}
	if f.To, err = parseBound(in.To, true); err != nil {
		return f, fmt.Errorf("to: %w", err)
	}
	return f, nil
}

// parseBound принимает RFC3339 или дату; дата для верхней границы
// включает весь день.
func parseBound(raw string, end bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
