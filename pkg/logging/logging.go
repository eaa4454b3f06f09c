// Package logging builds the structured logger handed to every component.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. Warnings and errors are always
// emitted; info and debug records only when verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// APICall records one remote exchange.
func APICall(l *slog.Logger, service, op string, err error) {
	if err != nil {
		l.Debug("api call", "service", service, "op", op, "status", "error", "error", err)
		return
	}
	l.Debug("api call", "service", service, "op", op, "status", "success")
}
