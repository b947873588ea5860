package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"raincheck/internal/config"
	"raincheck/internal/types"
)

func TestMountRoutes_HealthIsMounted(t *testing.T) {
	srv := newTestServer(t)
	srv.MountRoutes()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header on response")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on response")
	}
}

func TestMountRoutes_V1Registrars(t *testing.T) {
	srv := newTestServer(t)
	var gotRequestID string
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			gotRequestID = types.GetRequestID(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})
	})
	srv.MountRoutes()

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotRequestID != "req-123" {
		t.Errorf("expected incoming request ID to be reused, got %q", gotRequestID)
	}
}

func TestMountRoutes_UnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	srv.MountRoutes()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nowhere", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var ctxID string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = types.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if ctxID == "" {
		t.Fatal("expected a generated request ID in context")
	}
	if rec.Header().Get("X-Request-Id") != ctxID {
		t.Errorf("response header %q does not match context ID %q", rec.Header().Get("X-Request-Id"), ctxID)
	}
	if len(ctxID) != 36 {
		t.Errorf("expected UUID-formatted ID, got %q", ctxID)
	}
}

func TestContextTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := ContextTimeoutMiddleware(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	start := time.Now()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !ok {
		t.Fatal("expected a deadline on the request context")
	}
	if deadline.Sub(start) > time.Second {
		t.Errorf("deadline too far in the future: %v", deadline.Sub(start))
	}
}

func TestContextTimeoutMiddleware_Cancels(t *testing.T) {
	var err error
	h := ContextTimeoutMiddleware(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		err = r.Context().Err()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestServer_RequestTimeout(t *testing.T) {
	srv := newTestServer(t)
	if got := srv.requestTimeout(); got != defaultRequestTimeout {
		t.Errorf("expected default timeout, got %v", got)
	}

	srv.Config = &config.Config{Server: config.ServerConfig{RequestTimeout: 3 * time.Second}}
	if got := srv.requestTimeout(); got != 3*time.Second {
		t.Errorf("expected configured timeout, got %v", got)
	}
}

func TestServer_CorsAllowedOrigins(t *testing.T) {
	srv := newTestServer(t)
	if got := srv.corsAllowedOrigins(); len(got) != 1 || got[0] != "*" {
		t.Errorf("expected wildcard default, got %v", got)
	}

	srv.Config = &config.Config{Server: config.ServerConfig{CorsAllowedOrigins: []string{"https://maps.example.com"}}}
	if got := srv.corsAllowedOrigins(); len(got) != 1 || got[0] != "https://maps.example.com" {
		t.Errorf("expected configured origins, got %v", got)
	}
}
