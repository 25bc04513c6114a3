package apps

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"jobtag/internal/app/client"
	"jobtag/internal/domain/application"
)

func printApplications(format string, records []application.Application, counts client.Counts) error {
	switch format {
	case "json":
		return printJSON(struct {
			Applications []application.Application `json:"applications"`
			Counts       client.Counts             `json:"counts"`
		}{Applications: records, Counts: counts})
	case "table":
		return printTable(records)
	case "csv":
		return printCSV(records)
	case "", "simple":
		return printSimple(records, counts)
	default:
		return fmt.Errorf("неизвестный формат %q (simple, table, json, csv)", format)
	}
}

func printCounts(c client.Counts) {
	fmt.Printf("Все: %d | Отправлены: %d | В процессе: %d | Офферы: %d | Отказы: %d\n",
		c.All, c.Applied, c.InProgress, c.Offers, c.Rejected)
}

func printSimple(records []application.Application, counts client.Counts) error {
	printCounts(counts)
	fmt.Println()

	if len(records) == 0 {
		fmt.Println("Заявки не найдены")
		return nil
	}

	for i, rec := range records {
		archived := ""
		if rec.Archived {
			archived = " [архив]"
		}
		fmt.Printf("%d. %s - %s (%s)%s\n", i+1, rec.Company, rec.Position, rec.Status.Label(), archived)
		fmt.Printf("   ID: %s | Отклик: %s | Обновлено: %s\n",
			rec.ID,
			rec.CreatedAt.Local().Format(dateLayout),
			rec.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	return nil
}

func printTable(records []application.Application) error {
	if len(records) == 0 {
		fmt.Println("Заявки не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tКомпания\tПозиция\tСтатус\tЛокация\tОтклик\tОбновлено\tАрхив\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t---\t---\t---\t\n")

	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\t\n",
			rec.ID,
			rec.Company,
			rec.Position,
			rec.Status,
			rec.Location,
			rec.CreatedAt.Local().Format(dateLayout),
			rec.UpdatedAt.Local().Format("2006-01-02 15:04"),
			rec.Archived)
	}

	return w.Flush()
}

func printCSV(records []application.Application) error {
	w := csv.NewWriter(os.Stdout)
	if err := w.Write([]string{"id", "company", "position", "status", "location", "job_url", "source", "archived", "created_at", "updated_at"}); err != nil {
		return err
	}

	for _, rec := range records {
		if err := w.Write([]string{
			rec.ID,
			rec.Company,
			rec.Position,
			string(rec.Status),
			rec.Location,
			rec.JobURL,
			rec.Source,
			strconv.FormatBool(rec.Archived),
			rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			rec.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printApplication(app application.Application, timeline []application.StatusEvent) {
	fmt.Printf("%s - %s\n", app.Company, app.Position)
	fmt.Printf("ID:        %s\n", app.ID)
	fmt.Printf("Статус:    %s\n", app.Status.Label())
	if app.Location != "" {
		fmt.Printf("Локация:   %s\n", app.Location)
	}
	if app.JobURL != "" {
		fmt.Printf("Вакансия:  %s\n", app.JobURL)
	}
	if app.Source != "" {
		fmt.Printf("Источник:  %s\n", app.Source)
	}
	fmt.Printf("Отклик:    %s\n", app.CreatedAt.Local().Format(dateLayout))
	fmt.Printf("Обновлено: %s\n", app.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if app.Archived {
		fmt.Println("В архиве")
	}
	if app.Notes != "" {
		fmt.Printf("\nЗаметки:\n%s\n", app.Notes)
	}

	fmt.Println("\nИстория:")
	for _, ev := range timeline {
		line := fmt.Sprintf("  %s  %-16s", ev.Date.Local().Format("2006-01-02 15:04"), ev.Status.Label())
		if ev.Note != "" {
			line += "  " + ev.Note
		}
		if ev.Confidence != nil {
			line += fmt.Sprintf(" (уверенность %.0f%%)", *ev.Confidence*100)
		}
		fmt.Println(line)
	}
}
