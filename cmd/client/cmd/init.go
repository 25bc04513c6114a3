// cmd/client/cmd/init.go
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jobtag/cmd/client/cmd/apps"
	"jobtag/cmd/client/cmd/auth"
	"jobtag/internal/app/client/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Инициализировать клиент JobTag",
	Long: `Команда init выполняет первоначальную настройку клиента:
	1. Создает ~/.jobtag/config.yaml с адресом сервера или параметрами Supabase
	2. Проверяет соединение с сервером

Существующий config.yaml не перезаписывается.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := app.Config()
		path := filepath.Join(cfg.ConfigDir, "config.yaml")

		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Конфигурация уже существует: %s\n", path)
		} else {
			fmt.Println("=== Инициализация JobTag ===")
			fmt.Println()

			in := bufio.NewReader(os.Stdin)
			v := viper.New()
			v.SetConfigType("yaml")

			chosen := prompt(in, "Бэкенд (server/supabase)", cfg.Backend)
			v.Set("backend", chosen)
			switch chosen {
			case config.BackendSupabase:
				v.Set("supabase_url", prompt(in, "Supabase URL", cfg.SupabaseURL))
				v.Set("supabase_key", prompt(in, "Supabase key", cfg.SupabaseKey))
			case config.BackendServer:
				v.Set("server_address", prompt(in, "Адрес сервера", cfg.ServerAddress))
				v.Set("enable_tls", strings.EqualFold(prompt(in, "Использовать TLS (yes/no)", "no"), "yes"))
			default:
				return fmt.Errorf("неизвестный бэкенд %q", chosen)
			}

			if err := v.SafeWriteConfigAs(path); err != nil {
				return fmt.Errorf("ошибка записи конфигурации: %w", err)
			}
			fmt.Printf("✓ Конфигурация сохранена: %s\n", path)
			fmt.Println("Настройки вступят в силу при следующем запуске.")
		}

		fmt.Println("Проверка соединения с сервером...")
		if err := app.CheckConnection(cmd.Context()); err != nil {
			fmt.Printf("⚠️  Предупреждение: не удалось подключиться к серверу: %v\n", err)
			fmt.Println("Офлайн доступен только последний сохраненный список: jobtag app list --offline")
		} else {
			fmt.Println("✓ Соединение с сервером установлено")
		}

		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Println("1. Зарегистрируйтесь: jobtag auth register")
		fmt.Println("2. Войдите в систему: jobtag auth login")
		fmt.Println("3. Добавьте первую заявку: jobtag app add")
		return nil
	},
}

func prompt(in *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func init() {
	rootCmd.AddCommand(initCmd)

	// Добавляем команды аутентификации
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)
	auth.AuthCmd.AddCommand(auth.TokenCmd)

	// Добавляем команды работы с заявками
	rootCmd.AddCommand(apps.AppCmd)
	apps.AppCmd.AddCommand(apps.ListCmd)
	apps.AppCmd.AddCommand(apps.AddCmd)
	apps.AppCmd.AddCommand(apps.ShowCmd)
	apps.AppCmd.AddCommand(apps.StatusCmd)
	apps.AppCmd.AddCommand(apps.ArchiveCmd)
	apps.AppCmd.AddCommand(apps.DeleteCmd)

	rootCmd.AddCommand(apps.StatsCmd)
	rootCmd.AddCommand(apps.WatchCmd)
}
