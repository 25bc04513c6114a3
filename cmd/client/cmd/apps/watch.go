// cmd/client/cmd/apps/watch.go
package apps

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
	"jobtag/internal/app/client"
	"jobtag/internal/domain/application"
)

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Следить за заявками в реальном времени",
	Long: `Загружает список заявок и подписывается на изменения.
Новые заявки и смены статуса показываются как уведомления,
после загрузки и каждого изменения печатаются счетчики. Ctrl+C для выхода.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := requireLogin(app); err != nil {
			return err
		}
		if app.Stream() == nil {
			return errors.New("живые обновления доступны только для backend=server")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dashboard, err := app.NewDashboard(client.WithNotifier(client.NotifierFunc(notify)))
		if err != nil {
			return err
		}

		active := false
		dashboard.Store().OnChange(func(records []application.Application) {
			printCounts(client.CountByGroup(client.Query{Archived: &active}.Apply(records)))
		})

		if err := dashboard.Mount(ctx); err != nil {
			return fmt.Errorf("ошибка подписки на изменения: %w", err)
		}
		defer dashboard.Unmount()

		fmt.Println("Ожидание изменений... (Ctrl+C для выхода)")

		<-ctx.Done()
		fmt.Println()
		fmt.Println("Отключено")
		return nil
	},
}

func notify(n client.Notification) {
	paint := color.New(color.FgCyan, color.Bold)
	switch n.Kind {
	case client.NotificationStatusChanged:
		switch n.Status {
		case application.StatusOffer:
			paint = color.New(color.FgGreen, color.Bold)
		case application.StatusRejected:
			paint = color.New(color.FgRed)
		default:
			paint = color.New(color.FgYellow, color.Bold)
		}
	}
	paint.Printf("● %s", n.Message)
	if n.Detail != "" {
		fmt.Printf(" - %s", n.Detail)
	}
	fmt.Println()
}
