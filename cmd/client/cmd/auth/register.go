// cmd/client/cmd/auth/register.go
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
	"jobtag/internal/domain/user"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать нового пользователя",
	Long: `Регистрация нового пользователя на сервере JobTag.

После регистрации сессия сохраняется, входить отдельно не нужно.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Регистрация нового пользователя ===")
		fmt.Println()

		fmt.Print("Логин или email: ")
		var login string
		_, _ = fmt.Scanln(&login)
		login = strings.TrimSpace(login)

		password, err := readPassword("Пароль: ")
		if err != nil {
			return err
		}
		passwordConfirm, err := readPassword("Повторите пароль: ")
		if err != nil {
			return err
		}
		if password != passwordConfirm {
			return fmt.Errorf("пароли не совпадают")
		}

		// те же правила, что и на сервере, чтобы не ходить в сеть зря
		if err := user.NewCredentialsValidator().ValidateRegister(login, password); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Register(ctx, login, password); err != nil {
			return fmt.Errorf("ошибка регистрации: %w", err)
		}

		fmt.Println()
		fmt.Println("✅ Регистрация прошла успешно, вы вошли как", login)
		return nil
	},
}
