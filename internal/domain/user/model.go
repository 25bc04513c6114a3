package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidAuth  = errors.New("invalid credentials")
	ErrInvalidInput = errors.New("invalid input")
	ErrLoginTaken   = errors.New("login already taken")
)

// User - владелец заявок. Его ID записывается в applications.user_id
// и служит ключом маршрутизации событий канала изменений.
type User struct {
	ID           string
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByLogin(ctx context.Context, login string) (User, error)
}
