package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
)

// ParseLevel parses debug, info, warn or error (any case).
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return lvl, nil
}

// Setup installs the default logger. Logs go to path when set, otherwise to
// stderr, in color when the terminal supports it. When quiet is set and no path is given, logs are
// discarded so they do not draw over a full screen UI. The returned func
// closes the log file.
func Setup(level slog.Level, path string, quiet bool) (func() error, error) {
	if path == "" {
		if quiet {
			slog.SetDefault(slog.New(NewHandler(io.Discard, &Options{Level: level})))
			return func() error { return nil }, nil
		}
		color := termenv.NewOutput(os.Stderr).EnvColorProfile() != termenv.Ascii
		slog.SetDefault(slog.New(NewHandler(os.Stderr, &Options{Level: level, Color: color})))
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(NewHandler(f, &Options{Level: level})))
	return f.Close, nil
}
