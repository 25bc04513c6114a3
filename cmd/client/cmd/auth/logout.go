package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти и удалить сохраненный токен",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.ClearToken(); err != nil {
			return err
		}
		fmt.Println("✓ Сессия удалена")
		return nil
	},
}
