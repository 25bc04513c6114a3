// cmd/client/cmd/auth/login.go
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в систему JobTag",
	Long: `Аутентификация на сервере JobTag.

После входа токен сохраняется локально для последующих операций.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Вход в систему ===")
		fmt.Println()

		fmt.Print("Логин или email: ")
		var login string
		_, _ = fmt.Scanln(&login)
		login = strings.TrimSpace(login)

		password, err := readPassword("Пароль: ")
		if err != nil {
			return err
		}

		fmt.Println("Аутентификация...")
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Login(ctx, login, password); err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}

		fmt.Println()
		fmt.Println("✅ Вход выполнен успешно!")

		// Сразу сохраняем снимок для офлайн-просмотра
		if records, err := app.Query().FetchApplications(ctx, app.OwnerID()); err != nil {
			fmt.Printf("⚠️  Не удалось загрузить заявки: %v\n", err)
		} else {
			app.SaveSnapshot(records)
			fmt.Printf("✓ Загружено заявок: %d\n", len(records))
		}

		return nil
	},
}
