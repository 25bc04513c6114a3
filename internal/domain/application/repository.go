package application

import (
	"context"
)

// Repository - хранилище заявок. Все методы ограничены владельцем.
type Repository interface {
	List(ctx context.Context, userID string, filter ListFilter) ([]Application, error)
	Get(ctx context.Context, userID, id string) (*Application, error)
	Create(ctx context.Context, app *Application) error
	Update(ctx context.Context, app *Application) error
	Delete(ctx context.Context, userID, id string) error
}
