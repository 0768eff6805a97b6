// Package logging configures structured logging for the DebtFree binaries.
//
// The CLI gets colored tint output on stderr; the server can switch to JSON
// with LOG_FORMAT=json for log shippers.
//
// Environment variables:
//
//	LOG_LEVEL:  debug, info, warn, error (default: info)
//	LOG_FORMAT: text (tint, default) or json
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures the default logger from LOG_LEVEL and LOG_FORMAT.
func Setup() {
	SetupWithLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupWithLevel configures the default logger at the given level.
func SetupWithLevel(level slog.Level) {
	var handler slog.Handler
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
