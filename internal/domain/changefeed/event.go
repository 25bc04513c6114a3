package changefeed

import (
	"errors"

	"jobtag/internal/domain/application"
)

type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

var ErrMalformedEvent = errors.New("malformed change event")

// ChangeEvent - нормализованное изменение одной строки таблицы applications.
// Record заполнен для insert и update, для delete он nil.
type ChangeEvent struct {
	Kind   Kind
	ID     string
	Record *application.Application
}
