// Package logging defines the structured-logging interface used across the
// client. Implementations wrap slog or zerolog.
package logging

import (
	"context"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "signed in", "username", user.Username)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

const (
	FormatText    = "text"
	FormatConsole = "console"
)

// New builds a Logger writing to w. format selects the backend: "console"
// gives a zerolog console writer, anything else the slog text handler.
// level is one of debug, info, warn, error; unknown values mean info.
func New(w io.Writer, format, level string) Logger {
	level = strings.ToLower(strings.TrimSpace(level))
	if strings.EqualFold(format, FormatConsole) {
		return NewZerologConsole(w, level)
	}
	return NewSlogText(w, level)
}

// Nop discards everything.
func Nop() Logger {
	return NewSlogText(io.Discard, "error")
}
