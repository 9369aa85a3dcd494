// Package contract validates API responses against the OpenAPI document.
package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/stretchr/testify/require"

	"github.com/coffeelog/coffee/internal/auth"
	"github.com/coffeelog/coffee/internal/handler"
	"github.com/coffeelog/coffee/internal/service"
	"github.com/coffeelog/coffee/internal/testutil"
)

// specPath returns the OpenAPI document path, overridable via OPENAPI_SPEC_PATH.
func specPath() string {
	if p := os.Getenv("OPENAPI_SPEC_PATH"); p != "" {
		return p
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, "..", "..", "docs", "api", "openapi.yaml")
}

// loadSpec loads and validates the OpenAPI document.
func loadSpec(t *testing.T) (*openapi3.T, routers.Router) {
	t.Helper()

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromFile(specPath())
	if err != nil {
		t.Fatalf("Failed to load OpenAPI spec: %v", err)
	}

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	// Match on paths only; the test server listens on a random port.
	spec.Servers = nil

	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		t.Fatalf("Failed to create router from spec: %v", err)
	}

	return spec, router
}

type pingOK struct{}

func (pingOK) Ping(context.Context) error { return nil }

type contractEnv struct {
	server *httptest.Server
	router routers.Router
	client *http.Client
}

func newContractEnv(t *testing.T) *contractEnv {
	t.Helper()

	_, router := loadSpec(t)

	keys, err := auth.NewKeyGenerator(auth.AlgBlake2b)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := testutil.NewMemStore(keys)
	svc := service.NewCoffeeService(store, store, nil, nil, logger)

	srv := httptest.NewServer(handler.NewRouter(handler.RouterConfig{
		Service:       svc,
		Logger:        logger,
		DB:            pingOK{},
		IsDevelopment: true,
	}))
	t.Cleanup(srv.Close)

	return &contractEnv{
		server: srv,
		router: router,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// exchange performs one request and validates the response against the
// document. The request itself is validated only when checkRequest is set,
// so deliberately invalid requests can still exercise error responses.
func (e *contractEnv) exchange(t *testing.T, method, path, apiKey string, body any, checkRequest bool) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, e.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	route, pathParams, err := e.router.FindRoute(req)
	if err != nil {
		t.Fatalf("Could not find route %s %s in spec: %v", method, path, err)
	}

	reqInput := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if checkRequest {
		if err := openapi3filter.ValidateRequest(context.Background(), reqInput); err != nil {
			t.Fatalf("Request validation failed: %v", err)
		}
		// ValidateRequest consumes the body.
		req.Body = io.NopCloser(bytes.NewReader(payload))
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	respInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: reqInput,
		Status:                 resp.StatusCode,
		Header:                 resp.Header,
		Body:                   io.NopCloser(bytes.NewReader(data)),
	}
	if err := openapi3filter.ValidateResponse(context.Background(), respInput); err != nil {
		t.Errorf("Response validation failed for %s %s (%d): %v\nBody: %s", method, path, resp.StatusCode, err, data)
	}

	return resp.StatusCode, data
}

// TestOpenAPISpecValid ensures the OpenAPI document is valid.
func TestOpenAPISpecValid(t *testing.T) {
	spec, _ := loadSpec(t)

	expectedPaths := []string{
		"/api/v1/register",
		"/api/v1/coffee",
		"/healthz",
		"/readyz",
	}
	for _, path := range expectedPaths {
		if spec.Paths.Find(path) == nil {
			t.Errorf("Expected path %s not found in spec", path)
		}
	}
}

func TestHealthResponses(t *testing.T) {
	env := newContractEnv(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			status, _ := env.exchange(t, http.MethodGet, path, "", nil, true)
			if status != http.StatusOK {
				t.Errorf("status = %d, want 200", status)
			}
		})
	}
}

func TestCoffeeFlowResponses(t *testing.T) {
	env := newContractEnv(t)

	status, body := env.exchange(t, http.MethodPost, "/api/v1/register", "",
		map[string]any{"email": "contract@example.com"}, true)
	require.Equal(t, http.StatusOK, status)

	var reg struct {
		APIKey string `json:"api_key"`
	}
	require.NoError(t, json.Unmarshal(body, &reg))
	require.NotEmpty(t, reg.APIKey)

	status, _ = env.exchange(t, http.MethodGet, "/api/v1/coffee", reg.APIKey, nil, true)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.exchange(t, http.MethodPost, "/api/v1/coffee", reg.APIKey,
		map[string]any{"utc_time": 1700000000, "shots": 2}, true)
	require.Equal(t, http.StatusCreated, status)

	status, body = env.exchange(t, http.MethodGet, "/api/v1/coffee", reg.APIKey, nil, true)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"coffees":[{"utc_time":1700000000,"shots":2}]}`, string(body))
}

// TestErrorResponses validates that error responses match the documented schemas.
func TestErrorResponses(t *testing.T) {
	env := newContractEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		apiKey string
		body   any
		want   int
	}{
		{"register_empty_email", http.MethodPost, "/api/v1/register", "", map[string]any{"email": ""}, http.StatusBadRequest},
		{"list_without_key", http.MethodGet, "/api/v1/coffee", "", nil, http.StatusUnauthorized},
		{"list_unknown_key", http.MethodGet, "/api/v1/coffee", "deadbeef", nil, http.StatusUnauthorized},
		{"add_unknown_key", http.MethodPost, "/api/v1/coffee", "deadbeef", map[string]any{"utc_time": 1, "shots": 1}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.exchange(t, tt.method, tt.path, tt.apiKey, tt.body, false)
			if status != tt.want {
				t.Errorf("status = %d, want %d; body: %s", status, tt.want, body)
			}
			if !strings.Contains(string(body), `"code"`) {
				t.Errorf("error response missing code: %s", body)
			}
		})
	}

	t.Run("add_zero_shots", func(t *testing.T) {
		_, body := env.exchange(t, http.MethodPost, "/api/v1/register", "",
			map[string]any{"email": "zero@example.com"}, true)
		var reg struct {
			APIKey string `json:"api_key"`
		}
		require.NoError(t, json.Unmarshal(body, &reg))

		status, _ := env.exchange(t, http.MethodPost, "/api/v1/coffee", reg.APIKey,
			map[string]any{"utc_time": 1, "shots": 0}, false)
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})
}
