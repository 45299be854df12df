// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package logging configures the structured logger shared by ngxspec components.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Level maps the CLI verbosity flags to a log level.
// Quiet wins over verbose.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// Logger returns the default logger tagged with a component name.
func Logger(name string) *slog.Logger {
	return slog.Default().With(slog.String("component", name))
}

// OrDefault returns l, or the named default logger when l is nil.
func OrDefault(l *slog.Logger, name string) *slog.Logger {
	if l != nil {
		return l
	}
	return Logger(name)
}
