package types

import (
	"errors"

	"github.com/spf13/cobra"

	"jobtag/internal/app/client"
)

type contextKey string

// ClientAppKey - ключ, под которым root кладет *client.App в контекст команды.
const ClientAppKey contextKey = "jobtag-app"

// App достает приложение из контекста команды.
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, errors.New("приложение не инициализировано")
	}
	return app, nil
}
