package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Pinger - проверка доступности хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Feed - состояние канала изменений, реализуется changefeed.Hub.
type Feed interface {
	Connections() (subscribers, owners int)
}

type Handler struct {
	db         Pinger
	feed       Feed
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(db Pinger, feed Feed, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		db:         db,
		feed:       feed,
		log:        log.With("component", "health_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.log.Error("applications database unreachable", "error", err)
			return nil, huma.Error503ServiceUnavailable("database unavailable")
		}
	}

	resp := Response{Status: "OK", Database: "OK"}
	if h.feed != nil {
		resp.Realtime.Subscribers, resp.Realtime.Owners = h.feed.Connections()
	}
	return &Output{Body: resp}, nil
}
