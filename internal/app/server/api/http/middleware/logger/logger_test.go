package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type pingOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mw := huma.Middlewares{New(log).Middleware()}

	_, api := humatest.New(t)
	huma.Register(api, huma.Operation{
		OperationID: "ping", Method: http.MethodGet, Path: "/ping", Middlewares: mw,
	}, func(context.Context, *struct{}) (*pingOutput, error) {
		out := &pingOutput{}
		out.Body.OK = true
		return out, nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "missing", Method: http.MethodGet, Path: "/missing", Middlewares: mw,
	}, func(context.Context, *struct{}) (*pingOutput, error) {
		return nil, huma.Error404NotFound("application not found")
	})

	api.Get("/ping")
	api.Get("/missing")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "ping", first["operation"])
	assert.Equal(t, "http_logger", first["component"])
	assert.EqualValues(t, 200, first["status"])

	assert.Equal(t, "WARN", second["level"])
	assert.EqualValues(t, 404, second["status"])
	assert.Equal(t, "/missing", second["path"])
}
