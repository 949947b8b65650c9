// Package clilog builds the structured logger shared by ta and tl: a
// human-readable handler always on stderr, fanned out to a second JSON
// handler when verbose logging is requested.
package clilog

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// New builds a logger at Info level, or Debug with a parallel JSON
// stream on stderr when verbose is set — ta and tl log their progress
// at Debug, so -v is what surfaces it.
func New(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	text := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if !verbose {
		return slog.New(text)
	}

	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(slogmulti.Fanout(text, jsonHandler))
}
