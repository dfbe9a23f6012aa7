package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	JSONLoggingFormat    = "json"
	ConsoleLoggingFormat = "console"

	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelFatal   = "fatal"
	LogLevelPanic   = "panic"

	ContextKeyRequestID     contextKey = "requestID"
	ContextKeyCorrelationID contextKey = "correlationID"
)

type Logger struct {
	zerolog.Logger
}

func New(level, format string) Logger {
	return NewWithWriter(level, format, os.Stdout)
}

func NewWithWriter(level, format string, w io.Writer) Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	if strings.ToLower(format) == JSONLoggingFormat {
		out = w
	}

	logger := zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()

	return Logger{Logger: logger}
}

// ParseLevel maps a textual level to zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn, LogLevelWarning:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		return zerolog.FatalLevel
	case LogLevelPanic:
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a child logger tagged with the given component name.
func (l Logger) Component(name string) Logger {
	return Logger{Logger: l.With().Str("component", name).Logger()}
}

func (l Logger) WithContext(ctx context.Context) zerolog.Logger {
	logger := l.Logger

	if correlationID, ok := ctx.Value(ContextKeyCorrelationID).(string); ok && correlationID != "" {
		logger = logger.With().Str("correlation_id", correlationID).Logger()
	}

	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok && requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		logger = logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}

// ContextWithRequestID stores the request ID where WithContext can find it.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}

	return ""
}
