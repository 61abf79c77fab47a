// Package logging wraps log/slog with file rotation for the route API.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*slog.Logger
	LogFile string
	Start   time.Time
}

// New returns a JSON logger writing to a rotated file under dir, or a text
// logger on stderr when dir is empty.
func New(level string, dir string) *Logger {
	lvl := ParseLevel(level)
	if dir == "" {
		return newLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}), "")
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "routeapi.slog"),
		MaxSize:    64, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	if level == "debug" {
		w.MaxSize = 256
	}
	return newLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}), w.Filename)
}

// NewWriter logs JSON to w; used by tests and embedders.
func NewWriter(level string, w io.Writer) *Logger {
	return newLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}), "")
}

func newLogger(h slog.Handler, file string) *Logger {
	return &Logger{Logger: slog.New(h), LogFile: file, Start: time.Now()}
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Debug and Info accept a nil *Logger and drop the message; warnings and
// errors fall through to the default slog logger.
func (l *Logger) Debug(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.Logger.Debug(msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Info(msg, args...)
	}
}

func (l *Logger) Infof(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		slog.Warn(msg, args...)
	} else {
		l.Logger.Warn(msg, args...)
	}
}

func (l *Logger) Warnf(msg string, args ...any) {
	l.Warn(fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		slog.Error(msg, args...)
	} else {
		l.Logger.Error(msg, args...)
	}
}

func (l *Logger) Errorf(msg string, args ...any) {
	l.Error(fmt.Sprintf(msg, args...))
}

func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		Logger:  l.Logger.With(args...),
		LogFile: l.LogFile,
		Start:   l.Start,
	}
}
