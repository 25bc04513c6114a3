package application

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("application not found")
	ErrInvalidData   = errors.New("invalid application data")
	ErrInvalidStatus = errors.New("invalid application status")
)
