package user

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobtag/internal/domain/user"
	"jobtag/internal/utils/logger"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, login, password string) (string, error) {
	args := m.Called(ctx, login, password)
	return args.String(0), args.Error(1)
}

func (m *mockUsers) Authenticate(ctx context.Context, login, password string) (user.User, error) {
	args := m.Called(ctx, login, password)
	return args.Get(0).(user.User), args.Error(1)
}

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Create(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockSessions) Validate(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func setup(t *testing.T) (humatest.TestAPI, *mockUsers, *mockSessions) {
	_, api := humatest.New(t)
	users, sessions := new(mockUsers), new(mockSessions)
	NewHandler(users, sessions, logger.Discard(), nil).SetupRoutes(api)
	return api, users, sessions
}

func TestHandler_Register(t *testing.T) {
	api, users, sessions := setup(t)
	users.On("Register", mock.Anything, "jane", "password1").Return("u-1", nil)
	sessions.On("Create", mock.Anything, "u-1").Return("tok", nil)

	resp := api.Post("/api/v1/user/register", map[string]any{"login": "jane", "password": "password1"})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body RegisterResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, RegisterResponse{ID: "u-1", Token: "tok"}, body)
}

func TestHandler_Register_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "taken", err: user.ErrLoginTaken, code: http.StatusConflict},
		{name: "invalid", err: user.ErrInvalidInput, code: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, users, _ := setup(t)
			users.On("Register", mock.Anything, "jane", "password1").Return("", tt.err)

			resp := api.Post("/api/v1/user/register", map[string]any{"login": "jane", "password": "password1"})
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	api, users, sessions := setup(t)
	users.On("Authenticate", mock.Anything, "jane", "password1").Return(user.User{ID: "u-1", Login: "jane"}, nil)
	users.On("Authenticate", mock.Anything, "jane", "password2").Return(user.User{}, user.ErrInvalidAuth)
	sessions.On("Create", mock.Anything, "u-1").Return("tok", nil)

	resp := api.Post("/api/v1/user/login", map[string]any{"login": "jane", "password": "password1"})
	assert.Equal(t, http.StatusOK, resp.Code)
	var body LoginResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, LoginResponse{UserID: "u-1", Token: "tok"}, body)

	resp = api.Post("/api/v1/user/login", map[string]any{"login": "jane", "password": "password2"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
