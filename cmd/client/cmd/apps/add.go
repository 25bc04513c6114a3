// cmd/client/cmd/apps/add.go
package apps

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jobtag/cmd/client/cmd/types"
	"jobtag/internal/app/client"
)

var (
	addCompany  string
	addPosition string
	addLocation string
	addURL      string
	addNotes    string
	addDate     string
)

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Добавить заявку",
	Long: `Добавление новой заявки. Компания и позиция обязательны;
если они не заданы флагами, команда спросит их интерактивно.
Дата отклика по умолчанию - сегодня.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := requireLogin(app); err != nil {
			return err
		}

		applied, err := parseDate(addDate)
		if err != nil {
			return err
		}

		if term.IsTerminal(int(os.Stdin.Fd())) {
			in := bufio.NewReader(os.Stdin)
			if strings.TrimSpace(addCompany) == "" {
				addCompany = ask(in, "Компания: ")
			}
			if strings.TrimSpace(addPosition) == "" {
				addPosition = ask(in, "Позиция: ")
			}
		}

		flow := client.NewCreationFlow(app.Query(), app.Logger(), client.WithCloseDelay(0))
		flow.Edit(func(f *client.Form) {
			f.Company = addCompany
			f.Position = addPosition
			f.Location = addLocation
			f.JobURL = addURL
			f.Notes = addNotes
			if applied != nil {
				f.AppliedDate = *applied
			}
		})

		created, err := flow.Submit(cmd.Context())
		var verr *client.ValidationError
		var serr *client.SubmissionError
		switch {
		case errors.As(err, &verr):
			for _, field := range []string{"company", "position"} {
				if msg, ok := verr.Field(field); ok {
					fmt.Printf("✗ %s\n", msg)
				}
			}
			return fmt.Errorf("заявка не добавлена")
		case errors.As(err, &serr):
			return fmt.Errorf("%s (%v)", serr.Error(), serr.Unwrap())
		case err != nil:
			return err
		}

		fmt.Printf("✅ Заявка добавлена: %s - %s\n", created.Company, created.Position)
		fmt.Printf("ID: %s\n", created.ID)
		return nil
	},
}

func ask(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func init() {
	AddCmd.Flags().StringVarP(&addCompany, "company", "c", "", "компания")
	AddCmd.Flags().StringVarP(&addPosition, "position", "p", "", "позиция")
	AddCmd.Flags().StringVarP(&addLocation, "location", "l", "", "локация")
	AddCmd.Flags().StringVar(&addURL, "url", "", "ссылка на вакансию")
	AddCmd.Flags().StringVarP(&addNotes, "notes", "n", "", "заметки")
	AddCmd.Flags().StringVarP(&addDate, "date", "d", "", "дата отклика (YYYY-MM-DD)")
}
