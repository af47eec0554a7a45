// Package logging builds the process-wide slog logger and carries it
// through contexts so the engine, consumer, and watchers can tag their own
// attributes without threading a logger argument everywhere.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

func New(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   false,
		ReplaceAttr: replaceAttrsCompact,
	}

	var h slog.Handler
	if strings.ToLower(format) == "text" {
		h = slog.NewTextHandler(os.Stdout, handlerOpts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}
	return slog.New(h)
}

func replaceAttrsCompact(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		return slog.Time(slog.TimeKey, time.Now().UTC())
	}
	return a
}

type ctxKey struct{}

var key ctxKey

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, key, l)
}

func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(key).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
