package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// New creates a *slog.Logger writing to stderr and optionally to logFile.
// format is "json" or "text"; when empty, text is used if stderr is a
// terminal and JSON otherwise. It also sets the logger as the slog default so
// package-level slog calls work. The returned cleanup func closes the log file
// if one was opened; callers must defer it.
func New(level, format, logFile string) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	writers := []io.Writer{os.Stderr}
	cleanup := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, f)
		cleanup = func() { _ = f.Close() }
	}

	if format == "" {
		format = detectFormat(os.Stderr.Fd())
	}

	logger := slog.New(newHandler(io.MultiWriter(writers...), format, opts))
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func detectFormat(fd uintptr) string {
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return "text"
	}
	return "json"
}

func parseLevel(s string) slog.Level {
	switch s {
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
