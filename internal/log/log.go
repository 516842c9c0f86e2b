// Package log is padup's structured logger. Log lines go to stderr so that
// command output on stdout can be piped; API requests add their X-Request-ID
// through the context so a failing call can be matched with the server logs.
package log

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/padup/padup/internal/errors"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" (or "console") and "json". Anything else is text,
// the format a person reading a terminal expects.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// ParseLevel maps debug, info, warn(ing) and error to slog levels. Unknown
// names log at warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Config describes a logger.
type Config struct {
	Level   slog.Level
	Format  Format
	Output  io.Writer // stderr when nil
	Service string
	Version string
}

// Logger wraps slog with padup's error and request-id conventions.
type Logger struct {
	*slog.Logger
}

// New builds a logger from cfg.
func New(cfg Config) *Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(h)
	if cfg.Service != "" {
		l = l.With("service", cfg.Service)
	}
	if cfg.Version != "" {
		l = l.With("version", cfg.Version)
	}
	return &Logger{Logger: l}
}

// Discard drops every record.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithContext attaches the request ID carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}

// LogError logs err at error level. A PadupError is broken into its code,
// message, suggestions and cause.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}
	var pe *errors.PadupError
	if !stderrors.As(err, &pe) {
		l.Error("operation failed", "error", err.Error())
		return
	}

	args := []any{"error_code", string(pe.Code)}
	if len(pe.Suggestions) > 0 {
		args = append(args, "suggestions", pe.Suggestions)
	}
	if pe.Cause != nil {
		args = append(args, "cause", pe.Cause.Error())
	}
	l.Error(pe.Message, args...)
}

type requestIDKey struct{}

// ContextWithRequestID stores the outgoing request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

var (
	mu  sync.RWMutex
	std *Logger
)

// SetDefaultLogger installs the logger the root command built from the
// configuration and flags.
func SetDefaultLogger(l *Logger) {
	mu.Lock()
	std = l
	mu.Unlock()
}

// DefaultLogger returns the installed logger, or a warn-level text logger on
// stderr before one is installed.
func DefaultLogger() *Logger {
	mu.RLock()
	l := std
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if std == nil {
		std = New(Config{Level: slog.LevelWarn})
	}
	return std
}
