// Package logging builds the application logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"searchlens/internal/config"
)

// NewLogger creates the application logger. Output goes to stdout and to a
// size-rotated file under the configured logs directory. Production uses JSON
// records, other environments use the text handler.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.GetLogLevel())

	writer := io.Writer(os.Stdout)
	if !cfg.IsTest() {
		rotated := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogsDirectory, cfg.AppName+".log"),
			MaxSize:    cfg.LogsMaxSizeInMb,
			MaxBackups: cfg.LogsMaxBackups,
			MaxAge:     cfg.LogsMaxAgeInDays,
			Compress:   true,
		}
		writer = io.MultiWriter(os.Stdout, rotated)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch s {
	case string(config.LogLevelDebug):
		return slog.LevelDebug
	case string(config.LogLevelInfo):
		return slog.LevelInfo
	case string(config.LogLevelWarn):
		return slog.LevelWarn
	case string(config.LogLevelError):
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
