// Package logger monta o slog usado por todos os binários.
package logger

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// New cria um logger colorido para terminal. level aceita "debug", "info",
// "warn" e "error"; qualquer outro valor vira info.
func New(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      lvl,
		TimeFormat: "2006-01-02 15:04:05",
	})
	return slog.New(handler)
}
