package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

// bodies above this size are not echoed into debug logs
const maxLoggedBody = 4 << 10

// LoggingMiddleware logs every request and its response tagged with the trace id.
// JSON bodies are included at debug level.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := requestLogger(r.Context(), base)
			debug := lg.Enabled(r.Context(), slog.LevelDebug)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			}
			if debug && isJSON(r.Header.Get("Content-Type")) && r.Body != nil {
				body, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
				attrs = append(attrs, "body", truncate(body))
			}
			lg.Info("incoming request", attrs...)

			ww := &responseWriter{ResponseWriter: w, capture: debug}
			next.ServeHTTP(ww, r)

			status := ww.statusCode
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs = []any{
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", ww.size,
			}
			if debug && isJSON(ww.Header().Get("Content-Type")) {
				attrs = append(attrs, "body", truncate(ww.body.Bytes()))
			}
			lg.Log(r.Context(), level, "response", attrs...)
		})
	}
}

// responseWriter records the status and size, and the body when capture is set.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	capture    bool
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.capture && rw.body.Len() <= maxLoggedBody {
		rw.body.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func requestLogger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		return logger.From(ctx)
	}
	if traceID := internal.TraceIDFromContext(ctx); traceID != "" {
		return base.With("trace_id", traceID)
	}
	return base
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "application/json")
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "...(truncated)"
	}
	return string(body)
}
