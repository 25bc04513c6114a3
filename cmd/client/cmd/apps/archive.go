// cmd/client/cmd/apps/archive.go
package apps

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
)

var archiveRestore bool

var ArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Архивировать заявку",
	Long:  `Скрывает заявку из активного списка. С флагом --restore возвращает ее обратно.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		h, err := requireServer(app)
		if err != nil {
			return err
		}

		updated, err := h.SetArchived(cmd.Context(), args[0], !archiveRestore)
		if err != nil {
			return fmt.Errorf("ошибка архивации: %w", err)
		}

		if updated.Archived {
			fmt.Printf("✓ Заявка %s - %s перемещена в архив\n", updated.Company, updated.Position)
		} else {
			fmt.Printf("✓ Заявка %s - %s восстановлена\n", updated.Company, updated.Position)
		}
		return nil
	},
}

func init() {
	ArchiveCmd.Flags().BoolVar(&archiveRestore, "restore", false, "вернуть заявку из архива")
}
