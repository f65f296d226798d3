// Package logger builds the *slog.Logger instances shared by the relay
// server, its workers and the CLI.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	pretty bool
	json   bool
	w      io.Writer
}

// New returns a logger configured by opts. Without options it writes
// info-level text records to stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo, w: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}

	return slog.New(newHandler(c))
}

func newHandler(c *config) slog.Handler {
	opts := &slog.HandlerOptions{Level: c.level}
	switch {
	case c.json:
		return slog.NewJSONHandler(c.w, opts)
	case c.pretty:
		return charmlog.NewWithOptions(c.w, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Level:           charmlog.Level(c.level),
		})
	default:
		return slog.NewTextHandler(c.w, opts)
	}
}

// Nop returns a logger that drops every record.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (nopHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h nopHandler) WithAttrs(_ []slog.Attr) slog.Handler        { return h }
func (h nopHandler) WithGroup(_ string) slog.Handler             { return h }
