// cmd/client/cmd/apps/status.go
package apps

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
	"jobtag/internal/domain/application"
)

var statusNote string

var StatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Изменить статус заявки",
	Long: `Меняет статус заявки и добавляет запись в историю.

Статусы: applied, screening, interview, technical, final, offer, rejected, withdrawn.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		h, err := requireServer(app)
		if err != nil {
			return err
		}

		status := application.Status(args[1])
		if err := status.Validate(); err != nil {
			return err
		}

		updated, err := h.ChangeStatus(cmd.Context(), args[0], status, statusNote)
		if err != nil {
			return fmt.Errorf("ошибка изменения статуса: %w", err)
		}

		fmt.Printf("✓ %s - %s: %s\n", updated.Company, updated.Position, updated.Status.Label())
		return nil
	},
}

func init() {
	StatusCmd.Flags().StringVarP(&statusNote, "note", "n", "", "комментарий к изменению")
}
