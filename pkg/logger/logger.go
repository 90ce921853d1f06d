package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. It falls back to slog's default until Init runs.
var Log = slog.Default()

// Init logs JSON to stdout and, when logFilePath is set, to a rotated file.
func Init(logFilePath string, level slog.Level) {
	InitTo(os.Stdout, logFilePath, level)
}

// InitTo is Init with a console writer other than stdout.
func InitTo(console io.Writer, logFilePath string, level slog.Level) {
	writer := console
	if logFilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    10, // MB
			MaxBackups: 0,  // only one file
			MaxAge:     0,  // ignore age
			Compress:   false,
		}
		writer = io.MultiWriter(console, rotator)
	}
	Log = slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(Log)
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
