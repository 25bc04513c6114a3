// cmd/client/cmd/apps/delete.go
package apps

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
)

var deleteYes bool

var DeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Удалить заявку",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		h, err := requireServer(app)
		if err != nil {
			return err
		}

		if !deleteYes {
			fmt.Printf("Удалить заявку %s? (yes/no): ", args[0])
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if !strings.EqualFold(strings.TrimSpace(answer), "yes") {
				fmt.Println("Отменено")
				return nil
			}
		}

		if err := h.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления: %w", err)
		}
		fmt.Println("✓ Заявка удалена")
		return nil
	},
}

func init() {
	DeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "не спрашивать подтверждение")
}
