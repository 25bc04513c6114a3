// cmd/client/cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"jobtag/cmd/client/cmd/types"
	"jobtag/internal/app/client"
	"jobtag/internal/app/client/config"
	"jobtag/internal/utils/logger"
)

var (
	configDir string
	debug     bool
	serverURL string
	backend   string

	app *client.App
)

var rootCmd = &cobra.Command{
	Use:   "jobtag",
	Short: "JobTag - учет откликов на вакансии",
	Long: `JobTag - клиент для учета откликов на вакансии.

Список заявок загружается с сервера (или из Supabase) и обновляется
в реальном времени: команда watch показывает изменения по мере их появления.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	if configDir != "" {
		if err := os.Setenv("CONFIG_DIR", configDir); err != nil {
			return err
		}
	}
	if backend != "" {
		if err := os.Setenv("BACKEND", backend); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	log := logger.NewCLI(debug)
	log.Debug("Конфигурация загружена", slog.String("backend", cfg.Backend), slog.String("dir", cfg.ConfigDir))

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, types.ClientAppKey, app))
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "директория конфигурации (по умолчанию ~/.jobtag)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера JobTag (host:port)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "бэкенд: server или supabase")

	// Команды будут добавлены в init.go
}
