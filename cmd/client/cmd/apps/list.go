// cmd/client/cmd/apps/list.go
package apps

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
	"jobtag/internal/app/client"
	"jobtag/internal/domain/application"
)

var (
	listGroup    string
	listSort     string
	listSearch   string
	listArchived string
	listFrom     string
	listTo       string
	listFormat   string
	listOffline  bool
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список заявок",
	Long: `Просмотр заявок с фильтрацией по группе статусов, поиску и датам.

Группы: all, pending, inProgress, offers, rejected.
Сортировка: company, position, status, updatedAt, createdAt с суффиксом :asc или :desc.
С флагом --offline используется последний сохраненный снимок.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := requireLogin(app); err != nil {
			return err
		}

		group, err := client.ParseStatusGroup(listGroup)
		if err != nil {
			return err
		}
		spec, err := client.ParseSortSpec(listSort)
		if err != nil {
			return err
		}
		query, err := buildQuery()
		if err != nil {
			return err
		}

		var records []application.Application
		if listOffline {
			snap, ok, err := app.Offline()
			if err != nil {
				return fmt.Errorf("ошибка чтения снимка: %w", err)
			}
			if !ok {
				return fmt.Errorf("сохраненного снимка нет, выполните list без --offline")
			}
			fmt.Printf("Офлайн-снимок от %s\n", snap.SavedAt.Local().Format("2006-01-02 15:04"))
			records = snap.Records
		} else {
			records, err = app.Query().FetchApplications(cmd.Context(), app.OwnerID())
			if err != nil {
				return fmt.Errorf("ошибка получения списка заявок: %w", err)
			}
			app.SaveSnapshot(records)
		}

		filtered := query.Apply(records)
		return printApplications(listFormat, client.Project(filtered, group, spec), client.CountByGroup(filtered))
	},
}

func buildQuery() (client.Query, error) {
	q := client.Query{Search: listSearch}

	switch strings.ToLower(listArchived) {
	case "", "active":
		v := false
		q.Archived = &v
	case "archived":
		v := true
		q.Archived = &v
	case "all":
	default:
		return client.Query{}, fmt.Errorf("--archived: ожидается active, archived или all")
	}

	from, err := parseDate(listFrom)
	if err != nil {
		return client.Query{}, err
	}
	to, err := parseDate(listTo)
	if err != nil {
		return client.Query{}, err
	}
	if to != nil {
		// включительно до конца дня
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	q.From, q.To = from, to
	return q, nil
}

func init() {
	ListCmd.Flags().StringVarP(&listGroup, "status", "s", "all", "группа статусов")
	ListCmd.Flags().StringVar(&listSort, "sort", "", "сортировка, например updatedAt:desc")
	ListCmd.Flags().StringVarP(&listSearch, "search", "q", "", "поиск по компании и позиции")
	ListCmd.Flags().StringVar(&listArchived, "archived", "active", "active, archived или all")
	ListCmd.Flags().StringVar(&listFrom, "from", "", "отклик не раньше (YYYY-MM-DD)")
	ListCmd.Flags().StringVar(&listTo, "to", "", "отклик не позже (YYYY-MM-DD)")
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "simple", "формат вывода: simple, table, json, csv")
	ListCmd.Flags().BoolVar(&listOffline, "offline", false, "показать последний сохраненный снимок")
}
