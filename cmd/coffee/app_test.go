package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeelog/coffee/internal/auth"
	"github.com/coffeelog/coffee/internal/clientconfig"
	"github.com/coffeelog/coffee/internal/handler"
	"github.com/coffeelog/coffee/internal/service"
	"github.com/coffeelog/coffee/internal/testutil"
)

type cliEnv struct {
	server *httptest.Server
	config string
	now    time.Time
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	keys, err := auth.NewKeyGenerator(auth.AlgBlake2b)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := testutil.NewMemStore(keys)
	svc := service.NewCoffeeService(store, store, nil, nil, logger)

	srv := httptest.NewServer(handler.NewRouter(handler.RouterConfig{
		Service:       svc,
		Logger:        logger,
		IsDevelopment: true,
	}))
	t.Cleanup(srv.Close)

	t.Setenv("COFFEE_SERVER", "")

	return &cliEnv{
		server: srv,
		config: filepath.Join(t.TempDir(), "coffee.json"),
		now:    time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	a := &app{
		stdout: &stdout,
		stderr: &stderr,
		now:    func() time.Time { return e.now },
		loc:    time.UTC,
	}
	full := append([]string{"-s", e.server.URL, "--config", e.config}, args...)
	code := a.run(context.Background(), full)
	return code, stdout.String(), stderr.String()
}

func TestCLI_RegisterAddList(t *testing.T) {
	env := newCLIEnv(t)

	code, out, _ := env.run(t, "register", "a@example.com")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Config updated.")

	file, err := clientconfig.Load(env.config)
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Len(t, file.APIKey, 64)

	code, out, _ = env.run(t, "add", "2")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Done!")

	env.now = env.now.Add(time.Hour)
	code, _, _ = env.run(t, "add", "1")
	require.Equal(t, exitOK, code)

	code, out, _ = env.run(t, "list")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "09:00:00")
	assert.Contains(t, out, "Daily Total:              3")

	code, out, _ = env.run(t, "list", "2024-02-29")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "Nothing found :(\n", out)
}

func TestCLI_RegisterIdempotent(t *testing.T) {
	env := newCLIEnv(t)

	require.Equal(t, exitOK, first(env.run(t, "register", "a@example.com")))
	before, err := os.ReadFile(env.config)
	require.NoError(t, err)

	require.Equal(t, exitOK, first(env.run(t, "register", "a@example.com")))
	after, err := os.ReadFile(env.config)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestCLI_NoKey(t *testing.T) {
	env := newCLIEnv(t)

	code, _, stderr := env.run(t, "list")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "no API key")
}

func TestCLI_ExplicitKey(t *testing.T) {
	env := newCLIEnv(t)

	code, _, stderr := env.run(t, "add", "-k", "deadbeef", "1")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "rejected the API key")
}

func TestCLI_BadArguments(t *testing.T) {
	env := newCLIEnv(t)
	require.Equal(t, exitOK, first(env.run(t, "register", "a@example.com")))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no_command", nil, exitUsage},
		{"unknown_command", []string{"brew"}, exitUsage},
		{"register_no_email", []string{"register"}, exitUsage},
		{"add_not_a_number", []string{"add", "two"}, exitUsage},
		{"add_overflow", []string{"add", "3000000000"}, exitUsage},
		{"add_zero", []string{"add", "0"}, exitError},
		{"list_bad_date", []string{"list", "yesterday"}, exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := env.run(t, tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestCLI_ServerFromEnv(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("COFFEE_SERVER", env.server.URL)

	var stdout, stderr bytes.Buffer
	a := &app{stdout: &stdout, stderr: &stderr, now: time.Now, loc: time.UTC}
	code := a.run(context.Background(), []string{"-c", env.config, "register", "b@example.com"})

	require.Equal(t, exitOK, code, stderr.String())
	assert.True(t, strings.Contains(stdout.String(), "Config updated."))
}

func first(code int, _, _ string) int {
	return code
}
