package application

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobtag/internal/app/server/api/http/middleware/auth"
	"jobtag/internal/domain/application"
	"jobtag/internal/utils/logger"
)

const (
	ownerID = "0b8f5e8e-3c1a-4d6e-9f0a-1a2b3c4d5e6f"
	appID   = "9a6a1c34-5b7e-4f3c-8d2e-7f6a5b4c3d2e"
)

type mockService struct{ mock.Mock }

func (m *mockService) List(ctx context.Context, userID string, f application.ListFilter) ([]application.Application, error) {
	args := m.Called(ctx, userID, f)
	apps, _ := args.Get(0).([]application.Application)
	return apps, args.Error(1)
}

func (m *mockService) Find(ctx context.Context, userID, id string) (*application.Application, error) {
	args := m.Called(ctx, userID, id)
	app, _ := args.Get(0).(*application.Application)
	return app, args.Error(1)
}

func (m *mockService) Create(ctx context.Context, userID string, in application.CreateInput) (*application.Application, error) {
	args := m.Called(ctx, userID, in)
	app, _ := args.Get(0).(*application.Application)
	return app, args.Error(1)
}

func (m *mockService) Update(ctx context.Context, userID, id string, in application.UpdateInput) (*application.Application, error) {
	args := m.Called(ctx, userID, id, in)
	app, _ := args.Get(0).(*application.Application)
	return app, args.Error(1)
}

func (m *mockService) ChangeStatus(ctx context.Context, userID, id string, s application.Status, note string) (*application.Application, error) {
	args := m.Called(ctx, userID, id, s, note)
	app, _ := args.Get(0).(*application.Application)
	return app, args.Error(1)
}

func (m *mockService) SetArchived(ctx context.Context, userID, id string, archived bool) (*application.Application, error) {
	args := m.Called(ctx, userID, id, archived)
	app, _ := args.Get(0).(*application.Application)
	return app, args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockService) Stats(ctx context.Context, userID string) (application.Stats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(application.Stats), args.Error(1)
}

// asOwner подставляет владельца вместо проверки токена.
func asOwner(ctx huma.Context, next func(huma.Context)) {
	next(huma.WithContext(ctx, auth.WithUserID(ctx.Context(), ownerID)))
}

func setup(t *testing.T, mws ...func(huma.Context, func(huma.Context))) (humatest.TestAPI, *mockService) {
	_, api := humatest.New(t)
	svc := new(mockService)
	NewHandler(svc, logger.Discard(), mws).SetupRoutes(api)
	return api, svc
}

func sample() *application.Application {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return &application.Application{
		ID:        appID,
		UserID:    ownerID,
		Company:   "Google",
		Position:  "SRE",
		Status:    application.StatusApplied,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestHandler_Unauthorized(t *testing.T) {
	api, svc := setup(t)

	resp := api.Get("/api/v1/applications")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_List(t *testing.T) {
	api, svc := setup(t, asOwner)
	svc.On("List", mock.Anything, ownerID, mock.MatchedBy(func(f application.ListFilter) bool {
		return len(f.Statuses) == 2 &&
			f.Statuses[0] == application.StatusInterview &&
			f.Archived != nil && !*f.Archived &&
			f.Search == "goo" &&
			f.From != nil && f.To != nil && f.To.Hour() == 23
	})).Return([]application.Application{*sample()}, nil)

	resp := api.Get("/api/v1/applications?status=interview,offer&archived=false&search=goo&from=2024-01-01&to=2024-12-31")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body listResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Google", body.Applications[0].Company)
}

func TestHandler_List_InvalidFilter(t *testing.T) {
	api, _ := setup(t, asOwner)

	assert.Equal(t, http.StatusUnprocessableEntity, api.Get("/api/v1/applications?status=ghosted").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.Get("/api/v1/applications?archived=maybe").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.Get("/api/v1/applications?from=yesterday").Code)
}

func TestHandler_Create(t *testing.T) {
	api, svc := setup(t, asOwner)
	svc.On("Create", mock.Anything, ownerID, mock.MatchedBy(func(in application.CreateInput) bool {
		return in.Company == "Google" && in.Position == "SRE"
	})).Return(sample(), nil)

	resp := api.Post("/api/v1/applications", map[string]any{"company": "Google", "position": "SRE"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var got application.Application
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, appID, got.ID)
}

func TestHandler_Create_InvalidData(t *testing.T) {
	api, svc := setup(t, asOwner)
	svc.On("Create", mock.Anything, ownerID, mock.Anything).Return(nil, application.ErrInvalidData)

	resp := api.Post("/api/v1/applications", map[string]any{"company": " ", "position": "SRE"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestHandler_Find_NotFound(t *testing.T) {
	api, svc := setup(t, asOwner)
	svc.On("Find", mock.Anything, ownerID, appID).Return(nil, application.ErrNotFound)

	resp := api.Get("/api/v1/applications/" + appID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHandler_ChangeStatus(t *testing.T) {
	api, svc := setup(t, asOwner)
	moved := sample()
	moved.Status = application.StatusInterview
	svc.On("ChangeStatus", mock.Anything, ownerID, appID, application.StatusInterview, "phone screen passed").
		Return(moved, nil)

	resp := api.Post("/api/v1/applications/"+appID+"/status",
		map[string]any{"status": "interview", "note": "phone screen passed"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"status":"interview"`)
}

func TestHandler_ChangeStatus_UnknownStatus(t *testing.T) {
	api, svc := setup(t, asOwner)

	resp := api.Post("/api/v1/applications/"+appID+"/status", map[string]any{"status": "ghosted"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	svc.AssertNotCalled(t, "ChangeStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Archive(t *testing.T) {
	api, svc := setup(t, asOwner)
	archived := sample()
	archived.Archived = true
	svc.On("SetArchived", mock.Anything, ownerID, appID, true).Return(archived, nil)

	resp := api.Post("/api/v1/applications/"+appID+"/archive", map[string]any{"archived": true})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"archived":true`)
}

func TestHandler_Update(t *testing.T) {
	api, svc := setup(t, asOwner)
	updated := sample()
	updated.Notes = "referral"
	svc.On("Update", mock.Anything, ownerID, appID, mock.MatchedBy(func(in application.UpdateInput) bool {
		return in.Notes != nil && *in.Notes == "referral" && in.Company == nil
	})).Return(updated, nil)

	resp := api.Patch("/api/v1/applications/"+appID, map[string]any{"notes": "referral"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestHandler_Delete(t *testing.T) {
	api, svc := setup(t, asOwner)
	svc.On("Delete", mock.Anything, ownerID, appID).Return(nil)

	resp := api.Delete("/api/v1/applications/" + appID)
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestHandler_Stats(t *testing.T) {
	api, svc := setup(t, asOwner)
	svc.On("Stats", mock.Anything, ownerID).Return(application.Stats{Total: 3, Offers: 1}, nil)

	resp := api.Get("/api/v1/applications/stats")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got application.Stats
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Offers)
}
