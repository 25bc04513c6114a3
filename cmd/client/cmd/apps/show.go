// cmd/client/cmd/apps/show.go
package apps

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
	"jobtag/internal/app/client"
	"jobtag/internal/domain/application"
)

var showJSON bool

var ShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Показать заявку и историю статусов",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := requireLogin(app); err != nil {
			return err
		}

		var rec application.Application
		if h := app.HTTP(); h != nil {
			found, err := h.Find(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("ошибка получения заявки: %w", err)
			}
			rec = *found
		} else {
			records, err := app.Query().FetchApplications(cmd.Context(), app.OwnerID())
			if err != nil {
				return fmt.Errorf("ошибка получения заявок: %w", err)
			}
			store := client.NewStore(app.Logger(), nil)
			store.Initialize(records)
			found, ok := store.Get(args[0])
			if !ok {
				return client.ErrNotFound
			}
			rec = found
		}

		timeline := client.Timeline(rec, time.Now())
		if showJSON {
			return printJSON(struct {
				Application application.Application   `json:"application"`
				Timeline    []application.StatusEvent `json:"timeline"`
			}{rec, timeline})
		}
		printApplication(rec, timeline)
		return nil
	},
}

func init() {
	ShowCmd.Flags().BoolVar(&showJSON, "json", false, "вывод в формате JSON")
}
