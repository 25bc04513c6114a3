package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/exp/slog"

	"jobtag/internal/app/client/config"
	"jobtag/internal/domain/application"
)

var (
	ErrUnauthorized = errors.New("требуется вход: токен отсутствует или истек")
	ErrNotFound     = errors.New("заявка не найдена")
	ErrUnavailable  = errors.New("сервер временно недоступен")
)

// APIError - ответ сервера с кодом 4xx/5xx.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ошибка сервера (%d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("ошибка сервера: статус %d", e.Status)
}

// AuthResult - ответ на регистрацию и вход.
type AuthResult struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type HTTPClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *HTTPClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	log = log.With("component", "http_client")
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "jobtag-api",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Состояние circuit breaker изменилось", "name", name, "from", from.String(), "to", to.String())
		},
		// 4xx - ошибка запроса, а не сервера.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, ErrUnauthorized) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &HTTPClient{
		client:    client,
		breaker:   breaker,
		log:       log,
		baseURL:   cfg.BaseURL(),
		userAgent: "JobTag-Client/1.0",
	}
}

// SetToken устанавливает токен аутентификации
func (h *HTTPClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность сервера
func (h *HTTPClient) HealthCheck(ctx context.Context) error {
	return h.call(ctx, http.MethodGet, "/api/v1/health", nil, nil)
}

func (h *HTTPClient) Register(ctx context.Context, login, password string) (AuthResult, error) {
	return h.auth(ctx, "/api/v1/user/register", login, password)
}

func (h *HTTPClient) Login(ctx context.Context, login, password string) (AuthResult, error) {
	return h.auth(ctx, "/api/v1/user/login", login, password)
}

func (h *HTTPClient) auth(ctx context.Context, path, login, password string) (AuthResult, error) {
	req := struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}{Login: login, Password: password}

	var res AuthResult
	if err := h.call(ctx, http.MethodPost, path, req, &res); err != nil {
		return AuthResult{}, err
	}
	h.SetToken(res.Token)
	return res, nil
}

// FetchApplications возвращает все заявки владельца токена.
// ownerID не передается: сервер берет владельца из сессии.
func (h *HTTPClient) FetchApplications(ctx context.Context, _ string) ([]application.Application, error) {
	return h.List(ctx, url.Values{})
}

// List возвращает заявки с серверной фильтрацией (status, archived, search, from, to).
func (h *HTTPClient) List(ctx context.Context, query url.Values) ([]application.Application, error) {
	path := "/api/v1/applications"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var res struct {
		Applications []application.Application `json:"applications"`
		Count        int                       `json:"count"`
	}
	if err := h.call(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	if res.Applications == nil {
		res.Applications = []application.Application{}
	}
	return res.Applications, nil
}

func (h *HTTPClient) CreateApplication(ctx context.Context, in application.CreateInput) (*application.Application, error) {
	var app application.Application
	if err := h.call(ctx, http.MethodPost, "/api/v1/applications", in, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (h *HTTPClient) Find(ctx context.Context, id string) (*application.Application, error) {
	var app application.Application
	if err := h.call(ctx, http.MethodGet, "/api/v1/applications/"+url.PathEscape(id), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (h *HTTPClient) Update(ctx context.Context, id string, in application.UpdateInput) (*application.Application, error) {
	var app application.Application
	if err := h.call(ctx, http.MethodPatch, "/api/v1/applications/"+url.PathEscape(id), in, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (h *HTTPClient) ChangeStatus(ctx context.Context, id string, status application.Status, note string) (*application.Application, error) {
	req := struct {
		Status application.Status `json:"status"`
		Note   string             `json:"note,omitempty"`
	}{Status: status, Note: note}

	var app application.Application
	if err := h.call(ctx, http.MethodPost, "/api/v1/applications/"+url.PathEscape(id)+"/status", req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (h *HTTPClient) SetArchived(ctx context.Context, id string, archived bool) (*application.Application, error) {
	req := struct {
		Archived bool `json:"archived"`
	}{Archived: archived}

	var app application.Application
	if err := h.call(ctx, http.MethodPost, "/api/v1/applications/"+url.PathEscape(id)+"/archive", req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (h *HTTPClient) Delete(ctx context.Context, id string) error {
	return h.call(ctx, http.MethodDelete, "/api/v1/applications/"+url.PathEscape(id), nil, nil)
}

func (h *HTTPClient) Stats(ctx context.Context) (application.Stats, error) {
	var stats application.Stats
	if err := h.call(ctx, http.MethodGet, "/api/v1/applications/stats", nil, &stats); err != nil {
		return application.Stats{}, err
	}
	return stats, nil
}

// call выполняет запрос через circuit breaker.
func (h *HTTPClient) call(ctx context.Context, method, path string, body, result interface{}) error {
	_, err := h.breaker.Execute(func() (interface{}, error) {
		resp, err := h.doRequest(ctx, method, path, body)
		if err != nil {
			return nil, err
		}
		return nil, h.parseResponse(resp, result)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (h *HTTPClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("Отправка запроса", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	return resp, nil
}

func (h *HTTPClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ", "status", resp.StatusCode, "size", len(body))

	if resp.StatusCode >= 400 {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return ErrUnauthorized
		case http.StatusNotFound:
			return ErrNotFound
		}

		apiErr := &APIError{Status: resp.StatusCode}
		var errResp struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			switch {
			case errResp.Detail != "":
				apiErr.Detail = errResp.Detail
			case errResp.Error != "":
				apiErr.Detail = errResp.Error
			default:
				apiErr.Detail = errResp.Title
			}
		}
		return apiErr
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}
