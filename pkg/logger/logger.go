// Package logger wraps log/slog behind a small structured logging interface
// shared by the service and the offline CLI.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// callerDepth skips runtime.Caller, caller, log and the Logger method.
const callerDepth = 3

// Logger defines the logging interface.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	// Fatal logs at error level and exits the process.
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// Field constructors.
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Any(key string, val any) Field                { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Named(name string) Logger {
	return &slogLogger{l: s.l.WithGroup(name)}
}

func (s *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelInfo, msg, fields)
}

func (s *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
}

func (s *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelDebug, msg, fields)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelWarn, msg, fields)
}

func (s *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, append(fields, Bool("fatal", true)))
	os.Exit(1)
}

func (s *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if !s.l.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+1)
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	attrs = append(attrs, slog.String("source", caller()))
	s.l.LogAttrs(ctx, level, msg, attrs...)
}

var (
	mu       sync.RWMutex
	global   Logger
	output   io.Writer = os.Stdout
	levelVar slog.LevelVar
)

// Init resets the global logger to text on stdout at info level.
func Init() error {
	levelVar.Set(slog.LevelInfo)
	return InitWith(os.Stdout, "text")
}

// InitWith points the global logger at w using format ("text" or "json").
// The current level is kept.
func InitWith(w io.Writer, format string) error {
	h, err := newHandler(w, format)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	global = &slogLogger{l: slog.New(h)}
	output = w
	return nil
}

// SetFormat switches the global logger between text and json, keeping its
// writer. Loggers already obtained from Named keep their old format.
func SetFormat(format string) error {
	mu.RLock()
	w := output
	mu.RUnlock()
	return InitWith(w, format)
}

func newHandler(w io.Writer, format string) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: &levelVar}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
}

var workDir = sync.OnceValue(func() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
})

// caller reports the logging call site as path:line, relative to the working
// directory when possible so editors can jump to it.
func caller() string {
	_, file, line, ok := runtime.Caller(callerDepth)
	if !ok {
		return "unknown:0"
	}
	path := filepath.Base(file)
	if wd := workDir(); wd != "" {
		if rel, err := filepath.Rel(wd, file); err == nil {
			path = rel
		}
	}
	return path + ":" + strconv.Itoa(line)
}

// Get returns the global logger. It panics before Init or InitWith.
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		panic("logger not initialized: call logger.Init first")
	}
	return global
}

// Named returns the global logger scoped under name.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync is a no-op kept for callers that flush on exit; slog does not buffer.
func Sync() error { return nil }

// SetLevel changes the level of every logger created by this package.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses debug, info, warn (or warning) and error,
// ignoring case.
func SetLevelString(level string) error {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l = slog.LevelDebug
	case "", "info":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	SetLevel(l)
	return nil
}
