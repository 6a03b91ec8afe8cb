// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/netsim/lib/config"
)

// NewLogger builds the process logger writing to w. Format "auto"
// picks the text handler when w is a terminal and JSON otherwise.
func NewLogger(w io.Writer, logging config.LoggingConfig) *slog.Logger {
	options := &slog.HandlerOptions{Level: logging.SlogLevel()}
	text := logging.Format == "text" || (logging.Format != "json" && IsTerminal(w))
	if text {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// IsTerminal reports whether value is an *os.File attached to a
// terminal.
func IsTerminal(value any) bool {
	file, ok := value.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
