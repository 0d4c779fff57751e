// Package api - Middleware for authentication and request processing
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/xld/xld-go/internal/auth"
	"github.com/xld/xld-go/pkg/xld"
)

type ctxKey struct{}

// claimsFrom returns the token claims stored by AuthMiddleware
func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*auth.Claims)
	return c, ok
}

// AuthMiddleware validates the raw token in the Authorization header and adds
// its claims to the context
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("Authorization"))
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := h.auth.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrSessionExpired) {
				respondError(w, http.StatusUnauthorized, "The incoming token has expired")
				return
			}
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EnvironmentMiddleware rejects requests without a valid environment header
func EnvironmentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := r.Header.Get("environment")
		if env == "" {
			respondError(w, http.StatusBadRequest, "environment header is required.")
			return
		}
		if !xld.Environment(env).Valid() {
			respondError(w, http.StatusBadRequest, `environment header must be "development" or "production".`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs all requests
func (h *Handler) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		event := h.logger.Info()
		if rec.status >= http.StatusInternalServerError {
			event = h.logger.Error()
		} else if rec.status >= http.StatusBadRequest {
			event = h.logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("route", routeTemplate(r)).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Str("environment", r.Header.Get("environment")).
			Msg("sandbox request")
	})
}

// MetricsMiddleware counts requests by route template and status
func (h *Handler) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := routeTemplate(r)
		h.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		h.metrics.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecoveryMiddleware recovers from panics
func (h *Handler) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.logger.Error().
					Interface("panic", err).
					Str("path", r.URL.Path).
					Msg("handler panicked")
				respondError(w, http.StatusInternalServerError, "Internal server error.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
