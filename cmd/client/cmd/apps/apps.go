package apps

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobtag/internal/app/client"
)

// AppCmd - родительская команда для всех операций с заявками
var AppCmd = &cobra.Command{
	Use:     "app",
	Aliases: []string{"apps", "application"},
	Short:   "Управление заявками",
	Long:    `Просмотр, добавление и изменение заявок на вакансии.`,
}

const dateLayout = time.DateOnly

var errServerOnly = errors.New("команда доступна только для backend=server")

func requireLogin(app *client.App) error {
	if !app.IsAuthenticated() {
		return fmt.Errorf("требуется вход: jobtag auth login")
	}
	return nil
}

func requireServer(app *client.App) (*client.HTTPClient, error) {
	if err := requireLogin(app); err != nil {
		return nil, err
	}
	h := app.HTTP()
	if h == nil {
		return nil, errServerOnly
	}
	return h, nil
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("некорректная дата %q, ожидается YYYY-MM-DD", raw)
	}
	return &t, nil
}
