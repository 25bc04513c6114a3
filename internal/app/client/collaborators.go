package client

import (
	"context"

	"jobtag/internal/domain/application"
	"jobtag/internal/domain/changefeed"
)

// QueryClient - разовые запросы к бэкенду.
type QueryClient interface {
	FetchApplications(ctx context.Context, ownerID string) ([]application.Application, error)
	CreateApplication(ctx context.Context, in application.CreateInput) (*application.Application, error)
}

// Unsubscribe останавливает доставку событий. Повторный вызов ничего не делает.
type Unsubscribe func()

// ChangeStream - подписка на изменения таблицы заявок владельца.
// Доставка не чаще одного раза на изменение за время жизни соединения,
// подтверждений нет.
type ChangeStream interface {
	Subscribe(ctx context.Context, ownerID string, onEvent func(changefeed.ChangeEvent)) (Unsubscribe, error)
}
