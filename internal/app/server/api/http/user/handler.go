package user

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"jobtag/internal/domain/session"
	"jobtag/internal/domain/user"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log.With("component", "user_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
}

// register создает владельца и сразу выдает ему токен.
func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	userID, err := h.service.Register(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidInput):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		case errors.Is(err, user.ErrLoginTaken):
			return nil, huma.Error409Conflict("login already taken")
		}
		h.log.Error("register failed", "error", err)
		return nil, huma.Error500InternalServerError("registration failed")
	}

	token, err := h.session.Create(ctx, userID)
	if err != nil {
		h.log.Error("create session failed", "user_id", userID, "error", err)
		return nil, huma.Error500InternalServerError("create session failed")
	}

	return &registerOutput{
		Body: RegisterResponse{ID: userID, Token: token},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("create session failed", "user_id", u.ID, "error", err)
		return nil, huma.Error500InternalServerError("create session failed")
	}

	return &loginOutput{
		Body: LoginResponse{UserID: u.ID, Token: token},
	}, nil
}
