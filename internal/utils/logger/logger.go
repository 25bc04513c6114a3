package logger

import (
	"os"

	"golang.org/x/exp/slog"

	"jobtag/internal/app/server/config"
)

// New создает логгер для указанного окружения:
// local - цветной вывод для терминала, dev - JSON с DEBUG, prod - JSON с INFO.
func New(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal, "":
		log = setupPrettySlog()
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

// NewCLI пишет в stderr, чтобы не смешиваться с выводом команд:
// с debug - цветной вывод с DEBUG, иначе только WARN и выше.
func NewCLI(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: level}}
	return slog.New(opts.NewPrettyHandler(os.Stderr))
}

// Discard возвращает логгер, который ничего не пишет. Используется в тестах.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

func setupPrettySlog() *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return slog.New(opts.NewPrettyHandler(os.Stdout))
}
