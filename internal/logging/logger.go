// Package logging provides structured JSON logging with trace ID
// propagation. It wraps Go's built-in log/slog with a per-request trace ID
// injected via middleware and extracted from context, plus the
// provider/model pair a pipeline call resolves (spec.md §4.1 step 1) so every
// log line downstream of resolution carries it without each call site
// repeating "provider", model.Provider, "model", model.ID by hand.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
)

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	modelKey   contextKey = "model"
)

// modelInfo is the provider/model pair stamped into context by WithModel.
type modelInfo struct {
	Provider string
	ID       string
}

// Logger is the package-level structured logger. Callers should prefer
// FromContext(ctx) to automatically attach the request trace ID.
var Logger *slog.Logger

func init() {
	Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Setup (re-)initialises the package logger. level is one of debug/info/warn/error
// (default info). format is "json" (default) or "text".
func Setup(level, format string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// NewTraceID generates a random 16-byte hex trace ID.
func NewTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithTraceID stores a trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext retrieves the trace ID stored in the context.
func TraceIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

// WithModel stamps the resolved provider/model pair into ctx so that every
// FromContext logger derived from it downstream carries "provider"/"model"
// fields automatically, instead of every call site threading model.Provider
// and model.ID through its log call by hand.
func WithModel(ctx context.Context, provider, modelID string) context.Context {
	return context.WithValue(ctx, modelKey, modelInfo{Provider: provider, ID: modelID})
}

// FromContext returns a *slog.Logger pre-annotated with the trace_id and, if
// WithModel stamped one, the provider/model pair carried by ctx.
func FromContext(ctx context.Context) *slog.Logger {
	log := Logger
	if id := TraceIDFromContext(ctx); id != "" {
		log = log.With("trace_id", id)
	}
	if m, ok := ctx.Value(modelKey).(modelInfo); ok {
		log = log.With("provider", m.Provider, "model", m.ID)
	}
	return log
}

// Middleware injects a trace ID into every request context and echoes it in
// the X-Request-ID response header. Uses the incoming X-Request-ID header if
// present, otherwise generates a new one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Request-ID")
		if traceID == "" {
			traceID = NewTraceID()
		}
		ctx := WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Request-ID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
