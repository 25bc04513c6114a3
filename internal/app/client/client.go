package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"jobtag/internal/app/client/config"
	"jobtag/internal/domain/application"
)

// App связывает конфигурацию, выбранный бэкенд, токен и офлайн-кэш.
type App struct {
	config   *config.Config
	log      *slog.Logger
	http     *HTTPClient
	supabase *SupabaseClient
	cache    *SnapshotCache
	state    *AppState
	mu       gosync.RWMutex
}

// AppState хранит состояние приложения между запусками.
type AppState struct {
	UserID    string    `json:"user_id"`
	UserLogin string    `json:"user_login"`
	LoginAt   time.Time `json:"login_at"`
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	state, err := loadAppState(cfg)
	if err != nil {
		log.Warn("Не удалось загрузить состояние приложения", "error", err)
		state = &AppState{}
	}

	app := &App{
		config: cfg,
		log:    log.With("component", "client_app"),
		state:  state,
	}

	switch cfg.Backend {
	case config.BackendSupabase:
		app.supabase, err = NewSupabaseClient(cfg, log)
		if err != nil {
			return nil, err
		}
		if state.UserID != "" {
			app.supabase.ownerID = state.UserID
		}
	default:
		app.http = NewHTTPClient(cfg, log)
	}

	// кэш необязателен: без него не работает только list --offline
	cache, err := NewSnapshotCache(cfg.CachePath)
	if err != nil {
		log.Warn("Не удалось открыть кэш снимков", "path", cfg.CachePath, "error", err)
	} else {
		app.cache = cache
	}

	if token, err := app.GetToken(); err == nil && token != "" && app.http != nil {
		app.http.SetToken(token)
		log.Debug("Токен загружен из файла")
	}

	return app, nil
}

func statePath(cfg *config.Config) string {
	return filepath.Join(cfg.ConfigDir, "state.json")
}

func loadAppState(cfg *config.Config) (*AppState, error) {
	data, err := os.ReadFile(statePath(cfg))
	if errors.Is(err, os.ErrNotExist) {
		return &AppState{}, nil
	}
	if err != nil {
		return nil, err
	}

	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// saveAppState требует удержания a.mu.
func (a *App) saveAppState() error {
	data, err := json.MarshalIndent(a.state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(statePath(a.config), data, 0600)
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Logger() *slog.Logger {
	return a.log
}

// HTTP возвращает клиент сервера или nil для бэкенда supabase.
func (a *App) HTTP() *HTTPClient {
	return a.http
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) error {
	if a.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return a.http.HealthCheck(ctx)
}

// IsAuthenticated проверяет, известен ли владелец и есть ли токен
func (a *App) IsAuthenticated() bool {
	if a.OwnerID() == "" {
		return false
	}
	token, err := a.GetToken()
	return err == nil && token != ""
}

// OwnerID - id текущего пользователя.
func (a *App) OwnerID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.UserID
}

func (a *App) UserLogin() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.UserLogin
}

// GetToken возвращает сохраненный токен
func (a *App) GetToken() (string, error) {
	tokenBytes, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("токен не найден. Выполните вход: jobtag auth login")
		}
		return "", fmt.Errorf("ошибка чтения токена: %w", err)
	}
	return strings.TrimSpace(string(tokenBytes)), nil
}

// SaveToken сохраняет токен аутентификации
func (a *App) SaveToken(token string) error {
	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}

	if a.http != nil {
		a.http.SetToken(token)
	}

	return nil
}

// ClearToken удаляет токен и забывает пользователя
func (a *App) ClearToken() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = &AppState{}

	if err := os.Remove(a.config.TokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}

	if err := a.saveAppState(); err != nil {
		return fmt.Errorf("ошибка сохранения состояния: %w", err)
	}

	return nil
}

// Register регистрирует нового пользователя и сразу сохраняет сессию
func (a *App) Register(ctx context.Context, login, password string) error {
	if a.http == nil {
		return fmt.Errorf("регистрация доступна только для backend=server")
	}
	res, err := a.http.Register(ctx, login, password)
	if err != nil {
		return err
	}

	a.log.Info("Пользователь успешно зарегистрирован", "login", login)
	return a.remember(res, login)
}

// Login выполняет вход пользователя
func (a *App) Login(ctx context.Context, login, password string) error {
	if a.http == nil {
		return fmt.Errorf("вход по паролю доступен только для backend=server, используйте auth token")
	}
	res, err := a.http.Login(ctx, login, password)
	if err != nil {
		return err
	}

	a.log.Info("Вход выполнен успешно", "login", login)
	return a.remember(res, login)
}

// UseToken сохраняет access token Supabase и определяет по нему владельца.
func (a *App) UseToken(token string) error {
	if a.supabase == nil {
		return fmt.Errorf("auth token доступна только для backend=supabase")
	}
	ownerID, err := a.supabase.ResolveOwner(token)
	if err != nil {
		return err
	}
	return a.remember(AuthResult{UserID: ownerID, Token: token}, "")
}

func (a *App) remember(res AuthResult, login string) error {
	if err := a.SaveToken(res.Token); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.UserID = res.UserID
	a.state.UserLogin = login
	a.state.LoginAt = time.Now()

	if err := a.saveAppState(); err != nil {
		a.log.Warn("Не удалось сохранить состояние", "error", err)
	}
	return nil
}

// Query возвращает разовый клиент выбранного бэкенда.
func (a *App) Query() QueryClient {
	if a.supabase != nil {
		return a.supabase
	}
	return a.http
}

// Stream возвращает поток изменений или nil, если бэкенд его не дает.
func (a *App) Stream() ChangeStream {
	if a.http == nil {
		return nil
	}
	token, err := a.GetToken()
	if err != nil {
		return nil
	}
	return NewRealtimeClient(a.config.RealtimeURL(), token, a.log)
}

// NewDashboard собирает Dashboard текущего пользователя.
func (a *App) NewDashboard(opts ...DashboardOption) (*Dashboard, error) {
	if !a.IsAuthenticated() {
		return nil, ErrUnauthorized
	}

	base := []DashboardOption{WithCreationCloseDelay(a.config.CloseDelay)}
	if a.cache != nil {
		base = append(base, WithSnapshotSaver(a.cache))
	}

	return NewDashboard(a.OwnerID(), a.Query(), a.Stream(), a.log, append(base, opts...)...), nil
}

// Offline возвращает последний сохраненный снимок.
func (a *App) Offline() (CachedSnapshot, bool, error) {
	if a.cache == nil {
		return CachedSnapshot{}, false, fmt.Errorf("кэш снимков недоступен")
	}
	ownerID := a.OwnerID()
	if ownerID == "" {
		return CachedSnapshot{}, false, ErrUnauthorized
	}
	return a.cache.Load(ownerID)
}

// SaveSnapshot сохраняет снимок, полученный вне Dashboard.
func (a *App) SaveSnapshot(records []application.Application) {
	if a.cache == nil || a.OwnerID() == "" {
		return
	}
	if err := a.cache.Save(a.OwnerID(), records); err != nil {
		a.log.Warn("Не удалось сохранить снимок", "error", err)
	}
}

func (a *App) Close() error {
	if a.cache != nil {
		return a.cache.Close()
	}
	return nil
}
