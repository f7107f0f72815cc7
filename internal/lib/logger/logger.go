package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/linemk/storefront/internal/lib/logger/handlers/slogpretty"
)

// значения поля env в конфиге
const (
	EnvLocal       = "local"
	EnvDevelopment = "development" // значение по умолчанию в config.Config
	EnvDev         = "dev"
	EnvProd        = "prod"
)

// SetupLogger — логгер приложения в stdout
func SetupLogger(env string) *slog.Logger {
	return New(env, os.Stdout)
}

// New выбирает обработчик по окружению: local — цветной текст,
// development/dev — JSON с debug, prod и всё остальное — JSON с info.
// Каждая запись несёт env, чтобы логи разных стендов не путались в одном сборщике.
func New(env string, out io.Writer) *slog.Logger {
	var handler slog.Handler

	switch env {
	case EnvLocal:
		color.NoColor = false
		handler = slogpretty.PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}.NewPrettyHandler(out)
	case EnvDevelopment, EnvDev:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})
	default:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return slog.New(handler).With(slog.String("env", env))
}
