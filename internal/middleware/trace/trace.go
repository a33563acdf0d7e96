package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "petcare/internal/log"
	"petcare/internal/observability"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// RequestIDHeader is echoed back so clients can correlate logs.
	RequestIDHeader = "X-Request-ID"
)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *applog.StructuredLogger
	requests  atomic.Int64
}

// NewMiddleware creates a new trace middleware. A nil logger falls back to
// the default slog logger under the http component.
func NewMiddleware(extractIP func(*http.Request) string, logger *applog.Logger) *Middleware {
	if logger == nil {
		logger = applog.FromContext(context.Background()).WithComponent(applog.ComponentHTTP)
	}
	return &Middleware{
		extractIP: extractIP,
		logger:    applog.NewStructuredLogger(logger),
	}
}

// Middleware returns HTTP middleware for request tracing
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = GenerateRequestID()
		}
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)
		w.Header().Set(RequestIDHeader, requestID)

		m.logger.LogHTTPStart(ctx, r, clientIP)
		m.requests.Add(1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		observability.RecordHTTPRequest(r.Method, rw.statusCode, duration)
		m.logger.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// TotalRequests is the number of requests seen since start.
func (m *Middleware) TotalRequests() int64 {
	return m.requests.Load()
}

// LoggerMiddleware stores a request-scoped logger in the context, carrying
// the request ID set by Middleware.
func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := applog.FromContext(ctx).With(
			applog.FieldRequestID, GetRequestID(ctx),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
		)
		ctx = applog.WithLogger(ctx, logger)
		slog.DebugContext(ctx, "Request logger attached", applog.FieldRequestID, GetRequestID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
