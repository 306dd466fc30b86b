package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Loggers struct {
	InfoLogger  *slog.Logger
	ErrorLogger *slog.Logger
}

// SetupLogger builds JSON loggers writing info to stdout and errors to stderr.
func SetupLogger(level string) (*Loggers, error) {
	return NewLoggers(level, os.Stdout, os.Stderr)
}

func NewLoggers(level string, infoOut, errorOut io.Writer) (*Loggers, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	return &Loggers{
		InfoLogger:  slog.New(slog.NewJSONHandler(infoOut, opts)),
		ErrorLogger: slog.New(slog.NewJSONHandler(errorOut, opts)),
	}, nil
}

// Discard returns loggers that drop everything. Used by tests.
func Discard() *Loggers {
	l := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return &Loggers{InfoLogger: l, ErrorLogger: l}
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
