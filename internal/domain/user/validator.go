package user

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	MinLoginLen    = 3
	MaxLoginLen    = 64
	MinPasswordLen = 8
)

// Validator проверяет учетные данные владельца списка откликов.
type Validator interface {
	ValidateRegister(login, password string) error
	ValidateLogin(login string) error
	ValidatePassword(password string) error
}

type CredentialsValidator struct{}

func NewCredentialsValidator() *CredentialsValidator {
	return &CredentialsValidator{}
}

func (v *CredentialsValidator) ValidateRegister(login, password string) error {
	if err := v.ValidateLogin(login); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := v.ValidatePassword(password); err != nil {
		return fmt.Errorf("password: %w", err)
	}
	return nil
}

// ValidateLogin допускает как ник, так и email.
func (v *CredentialsValidator) ValidateLogin(login string) error {
	n := len([]rune(login))
	if n < MinLoginLen {
		return fmt.Errorf("must be at least %d characters", MinLoginLen)
	}
	if n > MaxLoginLen {
		return fmt.Errorf("must be at most %d characters", MaxLoginLen)
	}
	if strings.Count(login, "@") > 1 {
		return errors.New("must contain at most one '@'")
	}
	for _, r := range login {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("_-.@+", r) {
			return errors.New("may contain only letters, digits and '_', '-', '.', '@', '+'")
		}
	}
	return nil
}

func (v *CredentialsValidator) ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("must be at least %d characters", MinPasswordLen)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("must contain both letters and digits")
	}
	return nil
}
