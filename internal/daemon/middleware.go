package daemon

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ContextKey is the type for context keys used in this package
type ContextKey string

const (
	// CorrelationIDKey is the context key for the correlation ID
	CorrelationIDKey ContextKey = "correlation_id"
	// CorrelationIDHeader is the HTTP header name for correlation ID
	CorrelationIDHeader = "X-Request-ID"

	// LearnerIDKey is the context key for the learner id
	LearnerIDKey ContextKey = "learner_id"
	// LearnerIDHeader selects the learner a request acts for
	LearnerIDHeader = "X-Learner-ID"
)

// maxLearnerIDLen bounds learner ids, which double as storage keys.
const maxLearnerIDLen = 64

// GetCorrelationID extracts the correlation ID from a context
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// GetLearnerID extracts the learner id from a context
func GetLearnerID(ctx context.Context) string {
	if id, ok := ctx.Value(LearnerIDKey).(string); ok {
		return id
	}
	return ""
}

// correlationIDMiddleware adds or propagates a correlation ID for request tracing
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check for existing correlation ID in header
		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		w.Header().Set(CorrelationIDHeader, correlationID)

		ctx := context.WithValue(r.Context(), CorrelationIDKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// learnerMiddleware resolves the learner from the X-Learner-ID header,
// falling back to the configured default learner.
func (s *Server) learnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		learnerID := r.Header.Get(LearnerIDHeader)
		if learnerID == "" {
			learnerID = s.cfg.Learning.LearnerID
		}
		if !validLearnerID(learnerID) {
			s.jsonError(w, http.StatusBadRequest, "invalid learner id", nil)
			return
		}

		ctx := context.WithValue(r.Context(), LearnerIDKey, learnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) learnerID(r *http.Request) string {
	if id := GetLearnerID(r.Context()); id != "" {
		return id
	}
	return s.cfg.Learning.LearnerID
}

// validLearnerID accepts ASCII letters, digits, '-', '_' and '.', without
// a leading dot.
func validLearnerID(id string) bool {
	if id == "" || len(id) > maxLearnerIDLen || id[0] == '.' {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// rateLimitMiddleware limits mutating requests per client address
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || !isMutation(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		key := clientKey(r)
		if !s.limiter.Allow(r.Context(), key) {
			slog.Warn("rate limit exceeded",
				"correlation_id", GetCorrelationID(r.Context()),
				"client", key,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", "1")
			s.jsonError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests with timing and status
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"correlation_id", GetCorrelationID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case wrapped.statusCode >= 500:
			slog.Error("request", attrs...)
		case wrapped.statusCode >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Debug("request", attrs...)
		}
	})
}

// recoveryMiddleware catches panics and logs them
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"correlation_id", GetCorrelationID(r.Context()),
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
