package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Header names shared with the client.
const (
	TokenHeader     = "X-Auth-Token"
	RequestIDHeader = "X-Request-ID"
)

type requestIDKey struct{}

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the request id stored by RequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Logging logs every request with logger once it completes.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return chimw.RequestLogger(&requestLogger{logger: logger})
}

type requestLogger struct {
	logger *slog.Logger
}

func (l *requestLogger) NewLogEntry(r *http.Request) chimw.LogEntry {
	return &logEntry{logger: l.logger, request: r}
}

type logEntry struct {
	logger  *slog.Logger
	request *http.Request
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	e.logger.Info("http request",
		"method", e.request.Method,
		"path", e.request.URL.Path,
		"status", status,
		"bytes", bytes,
		"elapsed_ms", elapsed.Milliseconds(),
		"request_id", RequestIDFrom(e.request.Context()),
	)
}

func (e *logEntry) Panic(v any, stack []byte) {
	e.logger.Error("http request panic",
		"panic", v,
		"stack", string(stack),
		"method", e.request.Method,
		"path", e.request.URL.Path,
		"request_id", RequestIDFrom(e.request.Context()),
	)
}
