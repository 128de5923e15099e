package main

import (
	"io"
	"os"
	"time"

	"github.com/macrat/statwatch/internal/meta"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// isTerminal reports w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewLogger makes the root logger.
// It writes human readable lines if w is a terminal, otherwise JSON lines.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lv, err := zerolog.ParseLevel(level)
	if err != nil || lv == zerolog.NoLevel {
		lv = zerolog.InfoLevel
	}

	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(lv).
		With().
		Timestamp().
		Str("version", meta.Version).
		Logger()
}
