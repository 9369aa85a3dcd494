package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/coffeelog/coffee/internal/auth"
	"github.com/coffeelog/coffee/internal/metrics"
)

// APIKeyConfig holds configuration for the API key middleware.
type APIKeyConfig struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// RequireAPIKey returns a middleware that rejects requests carrying no API key
// and stores the key in the request context for the handlers.
// It only checks presence; whether the key belongs to anyone is decided by the
// service, so a missing key never reaches the store.
func RequireAPIKey(cfg APIKeyConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractAPIKey(r)
			if key == "" {
				recorder.IncAuthFailure(metrics.ReasonMissingKey)
				logger.Warn("authentication failed",
					slog.String("reason", metrics.ReasonMissingKey),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithAPIKey(r.Context(), key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractAPIKey extracts the API key from the request.
// Supports both "Authorization: Bearer <key>" and "X-API-Key: <key>" headers.
func extractAPIKey(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if key := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); key != "" {
			return key
		}
	}

	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing API key","code":"UNAUTHENTICATED"}`))
}
