package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// SlogLogger implements ports.Logger on top of log/slog.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a slog-backed logger. format is "json" or "text".
func NewSlogLogger(w io.Writer, format string, level LogLevel) *SlogLogger {
	opts := &slog.HandlerOptions{Level: level.slogLevel()}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &SlogLogger{logger: slog.New(h)}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func attrs(err error, fields []map[string]interface{}) []any {
	var args []any
	if err != nil {
		args = append(args, "error", err)
	}
	if len(fields) > 0 {
		for k, v := range fields[0] {
			args = append(args, k, v)
		}
	}
	return args
}

func (l *SlogLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.logger.DebugContext(ctx, msg, attrs(nil, fields)...)
}

func (l *SlogLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.logger.InfoContext(ctx, msg, attrs(nil, fields)...)
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.logger.WarnContext(ctx, msg, attrs(nil, fields)...)
}

func (l *SlogLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.logger.ErrorContext(ctx, msg, attrs(err, fields)...)
}
