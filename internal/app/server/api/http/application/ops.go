package application

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const basePath = "/api/v1/applications"

var security = []map[string][]string{{"bearer": {}}}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "applications-list",
		Method:      http.MethodGet,
		Path:        basePath,
		Summary:     "Список заявок владельца",
		Tags:        []string{"applications"},
		Security:    security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "applications-create",
		Method:        http.MethodPost,
		Path:          basePath,
		Summary:       "Создать заявку",
		Tags:          []string{"applications"},
		DefaultStatus: http.StatusCreated,
		Security:      security,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) statsOp() huma.Operation {
	return huma.Operation{
		OperationID: "applications-stats",
		Method:      http.MethodGet,
		Path:        basePath + "/stats",
		Summary:     "Статистика по заявкам",
		Tags:        []string{"applications"},
		Security:    security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "applications-find",
		Method:      http.MethodGet,
		Path:        basePath + "/{id}",
		Summary:     "Получить заявку",
		Tags:        []string{"applications"},
		Security:    security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "applications-update",
		Method:      http.MethodPatch,
		Path:        basePath + "/{id}",
		Summary:     "Изменить поля заявки",
		Tags:        []string{"applications"},
		Security:    security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) statusOp() huma.Operation {
	return huma.Operation{
		OperationID: "applications-change-status",
		Method:      http.MethodPost,
		Path:        basePath + "/{id}/status",
		Summary:     "Сменить статус заявки",
		Tags:        []string{"applications"},
		Security:    security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) archiveOp() huma.Operation {
	return huma.Operation{
		OperationID: "applications-archive",
		Method:      http.MethodPost,
		Path:        basePath + "/{id}/archive",
		Summary:     "Архивировать или вернуть заявку",
		Tags:        []string{"applications"},
		Security:    security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "applications-delete",
		Method:        http.MethodDelete,
		Path:          basePath + "/{id}",
		Summary:       "Удалить заявку",
		Tags:          []string{"applications"},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
		Middlewares:   h.middleware,
	}
}
