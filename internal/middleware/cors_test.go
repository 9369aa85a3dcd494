package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		method         string
		wantStatus     int
		wantHeader     string
	}{
		{"no origins configured blocks all", []string{}, "https://example.com", http.MethodGet, http.StatusOK, ""},
		{"allowed origin gets header", []string{"https://example.com"}, "https://example.com", http.MethodGet, http.StatusOK, "https://example.com"},
		{"disallowed origin blocked on preflight", []string{"https://example.com"}, "https://evil.com", http.MethodOptions, http.StatusForbidden, ""},
		{"preflight returns no content", []string{"https://example.com"}, "https://example.com", http.MethodOptions, http.StatusNoContent, "https://example.com"},
		{"case insensitive origin match", []string{"HTTPS://EXAMPLE.COM"}, "https://example.com", http.MethodGet, http.StatusOK, "https://example.com"},
		{"wildcard subdomain", []string{"*.example.com"}, "https://app.example.com", http.MethodGet, http.StatusOK, "https://app.example.com"},
		{"wildcard rejects lookalike", []string{"*.example.com"}, "https://badexample.com", http.MethodGet, http.StatusOK, ""},
		{"no origin header skips CORS", []string{"https://example.com"}, "", http.MethodGet, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowedOrigins

			handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://example.com"}

	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("Access-Control-Allow-Headers not set on preflight")
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age = %q, want 86400", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("credentials must not be allowed, got %q", got)
	}
}
