// cmd/client/cmd/apps/stats.go
package apps

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"jobtag/cmd/client/cmd/types"
	"jobtag/internal/domain/application"
)

var statsJSON bool

var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Статистика по заявкам",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := requireLogin(app); err != nil {
			return err
		}

		var stats application.Stats
		if h := app.HTTP(); h != nil {
			stats, err = h.Stats(cmd.Context())
		} else {
			var records []application.Application
			records, err = app.Query().FetchApplications(cmd.Context(), app.OwnerID())
			stats = application.ComputeStats(records, time.Now())
		}
		if err != nil {
			return fmt.Errorf("ошибка получения статистики: %w", err)
		}

		if statsJSON {
			return printJSON(stats)
		}
		printStats(stats)
		return nil
	},
}

func printStats(s application.Stats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Всего активных:\t%d\n", s.Total)
	fmt.Fprintf(w, "В работе:\t%d\n", s.Active)
	fmt.Fprintf(w, "За неделю:\t%d\n", s.ThisWeek)
	fmt.Fprintf(w, "За 30 дней:\t%d\n", s.Last30Days)
	fmt.Fprintf(w, "Офферы:\t%d\n", s.Offers)
	fmt.Fprintf(w, "Отказы:\t%d\n", s.Rejected)
	fmt.Fprintf(w, "Доля ответов:\t%d%%\n", s.ResponseRate)
	fmt.Fprintf(w, "Среднее время ответа:\t%d дн.\n", s.AvgResponseDays)

	statuses := make([]application.Status, 0, len(s.ByStatus))
	for st := range s.ByStatus {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Rank() < statuses[j].Rank() })
	if len(statuses) > 0 {
		fmt.Fprintln(w, "\t")
		for _, st := range statuses {
			fmt.Fprintf(w, "%s:\t%d\n", st.Label(), s.ByStatus[st])
		}
	}
	_ = w.Flush()
}

func init() {
	StatsCmd.Flags().BoolVar(&statsJSON, "json", false, "вывод в формате JSON")
}
