package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerConfig selects the level, output format and optional rotated log file of the application logger.
type LoggerConfig struct {
	// Level is one of debug, info, warn or error. Unknown levels fall back to debug.
	Level string
	// Format is text or json.
	Format string
	// FilePath enables writing a rotated copy of the log to disk when not empty.
	FilePath string
}

const (
	maxLogFileMegabytes = 50
	maxLogFileBackups   = 10
)

// NewLogger creates a logger writing to out, and additionally to a rotated log file when cfg.FilePath is set.
// The returned closer releases the log file and must be called on shutdown.
func NewLogger(cfg LoggerConfig, out io.Writer) (*slog.Logger, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	if cfg.FilePath != "" {
		fileLogger := &lumberjack.Logger{ //nolint:exhaustruct // defaults are fine.
			Filename:   cfg.FilePath,
			MaxSize:    maxLogFileMegabytes,
			MaxBackups: maxLogFileBackups,
			LocalTime:  false,
			Compress:   true,
		}
		out = io.MultiWriter(out, fileLogger)
		closer = fileLogger
	}

	opts := &slog.HandlerOptions{
		AddSource:   false,
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: nil,
	}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format) //nolint:err113 // configuration error.
	}
	return slog.New(NewContextHandler(handler)), closer, nil
}

// ParseLevel maps a level name to [slog.Level].
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
