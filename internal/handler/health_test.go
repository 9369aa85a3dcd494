package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockHealthChecker is a mock implementation of HealthChecker for testing.
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Ping(ctx context.Context) error {
	return m.err
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestHealthHandler_Healthz(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if response := decodeHealth(t, rec); response.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", response.Status)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name         string
		db           HealthChecker
		cache        HealthChecker
		wantStatus   int
		wantPostgres string
		wantRedis    string
	}{
		{"all healthy", &mockHealthChecker{}, &mockHealthChecker{}, http.StatusOK, "ok", "ok"},
		{"cache disabled", &mockHealthChecker{}, nil, http.StatusOK, "ok", "not configured"},
		{"database down", &mockHealthChecker{err: down}, &mockHealthChecker{}, http.StatusServiceUnavailable, "unavailable", "ok"},
		{"redis down", &mockHealthChecker{}, &mockHealthChecker{err: down}, http.StatusServiceUnavailable, "ok", "unavailable"},
		{"no database", nil, nil, http.StatusServiceUnavailable, "not configured", "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.cache)

			rec := httptest.NewRecorder()
			h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			response := decodeHealth(t, rec)
			if response.Checks["postgres"] != tt.wantPostgres {
				t.Errorf("postgres check = %q, want %q", response.Checks["postgres"], tt.wantPostgres)
			}
			if response.Checks["redis"] != tt.wantRedis {
				t.Errorf("redis check = %q, want %q", response.Checks["redis"], tt.wantRedis)
			}
			if tt.wantStatus != http.StatusOK && response.Status != "unhealthy" {
				t.Errorf("expected status 'unhealthy', got %s", response.Status)
			}
		})
	}
}
