package auth

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
)

var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Использовать access token Supabase",
	Long: `Для backend=supabase вход выполняется вне JobTag.
Команда сохраняет access token и определяет по нему пользователя.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		token, err := readPassword("Access token: ")
		if err != nil {
			return err
		}
		if err := app.UseToken(strings.TrimSpace(token)); err != nil {
			return fmt.Errorf("ошибка проверки токена: %w", err)
		}

		fmt.Println("✅ Токен сохранен, пользователь:", app.OwnerID())
		return nil
	},
}
