// Package logging builds the slog.Logger shared by the API server and the
// terminal client.
package logging

import (
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level   string // debug, info, warn, error
	Format  string // json, text, pretty
	File    string // optional path; JSON lines with rotation
	Service string // added to every record when set
}

// Rotation limits for the log file.
const (
	fileMaxSizeMB  = 100
	fileMaxBackups = 3
	fileMaxAgeDays = 28
)

// New creates a logger writing cfg.Format to w. When cfg.File is set every
// record is also written as JSON to a rotating file. The returned closer
// releases the file and is safe to call when no file was opened.
// Secrets are redacted in every output.
func New(cfg Config, w io.Writer) (*slog.Logger, io.Closer) {
	level := ParseLevel(cfg.Level)
	handler := consoleHandler(cfg.Format, level, w)

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
			Compress:   true,
		}
		closer = file
		handler = NewMultiHandler(handler, slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: NewReplaceAttr(),
		}))
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With(slog.String("service", cfg.Service))
	}
	return logger, closer
}

func consoleHandler(format string, level slog.Level, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: NewReplaceAttr()}
	switch strings.ToLower(format) {
	case "text":
		return slog.NewTextHandler(w, opts)
	case "pretty":
		pretty := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		})
		return newRedactHandler(pretty)
	default:
		return slog.NewJSONHandler(w, opts)
	}
}

// ParseLevel converts a string log level to slog.Level. Unknown values
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
