package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/voice2ticket/internal/auth"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
	"github.com/lorrc/voice2ticket/internal/core/services"
)

type fakeLookup struct {
	consoles map[string]ports.Console
	err      error
	calls    []string
}

func (f *fakeLookup) Acquire(_ context.Context, id string) (ports.Console, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.consoles[id], nil
}

func newLookup(ids ...string) *fakeLookup {
	f := &fakeLookup{consoles: map[string]ports.Console{}}
	for _, id := range ids {
		f.consoles[id] = services.NewConsole(id, services.ConsoleDeps{
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		}, services.ConsoleConfig{PageSize: 10})
	}
	return f
}

func boundConsoleID(w http.ResponseWriter, r *http.Request) {
	console, ok := GetConsole(r.Context())
	if !ok {
		http.Error(w, "no console", http.StatusInternalServerError)
		return
	}
	claims, _ := GetClaims(r.Context())
	_, _ = w.Write([]byte(console.ID() + "|" + claims.ConsoleID))
}

func TestConsoleAuth(t *testing.T) {
	tm := auth.NewTokenManager("middleware-secret", time.Hour)
	token, _, err := tm.GenerateToken("console-1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		lookup     *fakeLookup
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer header", lookup: newLookup("console-1"), header: "Bearer " + token, wantStatus: http.StatusOK, wantBody: "console-1|console-1"},
		{name: "query token", lookup: newLookup("console-1"), query: "?token=" + token, wantStatus: http.StatusOK, wantBody: "console-1|console-1"},
		{name: "missing token", lookup: newLookup(), wantStatus: http.StatusUnauthorized},
		{name: "malformed header", lookup: newLookup(), header: "Token " + token, wantStatus: http.StatusUnauthorized},
		{name: "bad signature", lookup: newLookup(), header: "Bearer " + token + "x", wantStatus: http.StatusUnauthorized},
		{name: "console limit", lookup: &fakeLookup{err: apperrors.ErrRateLimited}, header: "Bearer " + token, wantStatus: http.StatusTooManyRequests},
		{name: "console unavailable", lookup: &fakeLookup{err: errors.New("boom")}, header: "Bearer " + token, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ConsoleAuth(tm, tt.lookup)(http.HandlerFunc(boundConsoleID))
			req := httptest.NewRequest(http.MethodGet, "/view"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestConsoleAuth_RateLimitedSetsRetryAfter(t *testing.T) {
	tm := auth.NewTokenManager("middleware-secret", time.Hour)
	token, _, err := tm.GenerateToken("console-1")
	require.NoError(t, err)

	handler := ConsoleAuth(tm, &fakeLookup{err: apperrors.ErrRateLimited})(http.HandlerFunc(boundConsoleID))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMITED", body["code"])
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", seen)
	assert.Equal(t, "given-id", rec.Header().Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		TTL:               time.Minute,
	})
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	status := func(remote, xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, status("10.0.0.1:1234", ""))
	assert.Equal(t, http.StatusNoContent, status("10.0.0.1:1235", ""))
	assert.Equal(t, http.StatusTooManyRequests, status("10.0.0.1:1236", ""))

	// Separate client
	assert.Equal(t, http.StatusNoContent, status("10.0.0.2:1234", ""))

	// Forwarded clients are keyed by the first address
	assert.Equal(t, http.StatusNoContent, status("10.0.0.9:1", "203.0.113.7, 10.0.0.9"))
	assert.Equal(t, http.StatusNoContent, status("10.0.0.9:1", "203.0.113.7, 10.0.0.8"))
	assert.Equal(t, http.StatusTooManyRequests, status("10.0.0.9:1", "203.0.113.7"))
}

func TestRedactedQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=secret&x=1", nil)
	got := redactedQuery(req)
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "x=1")

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.Empty(t, redactedQuery(req))
}

func TestRecoveryLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RecoveryLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, buf.String(), "kaboom")
}

func TestRequestLogger_LevelsByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing?token=abc", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.NotContains(t, buf.String(), "abc")
}
