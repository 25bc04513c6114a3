// GET  /api/v1/health                     # Проверка (публичный)
// POST /api/v1/user/register              # Регистрация (публичный)
// POST /api/v1/user/login                 # Логин (публичный)
// GET  /api/v1/applications               # Список заявок (auth)
// POST /api/v1/applications               # Создать заявку (auth)
// GET  /api/v1/applications/stats         # Статистика (auth)
// GET  /api/v1/applications/{id}          # Получить заявку (auth)
// PATCH /api/v1/applications/{id}         # Изменить поля (auth)
// POST /api/v1/applications/{id}/status   # Сменить статус (auth)
// POST /api/v1/applications/{id}/archive  # Архив (auth)
// DELETE /api/v1/applications/{id}        # Удалить (auth)
// GET  /api/v1/realtime                   # Websocket с изменениями (auth)
// GET  /metrics                           # Prometheus

package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"

	applicationAPI "jobtag/internal/app/server/api/http/application"
	healthAPI "jobtag/internal/app/server/api/http/health"
	"jobtag/internal/app/server/api/http/middleware"
	"jobtag/internal/app/server/api/http/middleware/auth"
	"jobtag/internal/app/server/api/http/middleware/logger"
	"jobtag/internal/app/server/api/http/middleware/metrics"
	realtimeAPI "jobtag/internal/app/server/api/http/realtime"
	userAPI "jobtag/internal/app/server/api/http/user"
	"jobtag/internal/domain/application"
	"jobtag/internal/domain/changefeed"
	"jobtag/internal/domain/session"
	"jobtag/internal/domain/user"
	"jobtag/internal/infrastructure/storage/postgres"
)

// Deps - то, что собирается в main и нужно роутеру.
type Deps struct {
	Storage    *postgres.Storage
	Hub        *changefeed.Hub
	Registry   *prometheus.Registry
	SessionTTL time.Duration
}

type Handlers struct {
	Health      *healthAPI.Handler
	User        *userAPI.Handler
	Application *applicationAPI.Handler
	Realtime    *realtimeAPI.Handler
}

// New собирает *chi.Mux: операции huma, websocket и /metrics.
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RequestID, chimw.Recoverer)

	config := huma.DefaultConfig("JobTag API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(deps, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Application.SetupRoutes(API)

	mux.Handle(realtimeAPI.Path, h.Realtime)
	mux.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))

	return mux
}

// NewRegistry returns a registry with the process and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func handlers(deps Deps, log *slog.Logger) *Handlers {
	pool := deps.Storage.Pool()

	sessionRepo := postgres.NewSessionRepository(pool, log)
	sessionService := session.NewService(sessionRepo, log, deps.SessionTTL)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	metricsMW := metrics.New(deps.Registry)
	middlewares := middleware.NewContainer()

	middlewares.Add(metricsMW.Middleware(), loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(pool, deps.Hub, log, middlewares.GetAllAndClear())

	userRepo := postgres.NewUserRepository(pool, log)
	userService := user.NewService(userRepo, user.NewCredentialsValidator(), log)
	middlewares.Add(metricsMW.Middleware(), loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, middlewares.GetAllAndClear())

	applicationRepo := postgres.NewApplicationRepository(pool, log)
	applicationService := application.NewService(applicationRepo, log)
	middlewares.Add(metricsMW.Middleware(), loggerMW.Middleware(), authMW.Middleware())
	applicationHandler := applicationAPI.NewHandler(applicationService, log, middlewares.GetAllAndClear())

	realtimeHandler := realtimeAPI.NewHandler(authMW, deps.Hub, log)

	return &Handlers{
		Health:      healthHandler,
		User:        userHandler,
		Application: applicationHandler,
		Realtime:    realtimeHandler,
	}
}
