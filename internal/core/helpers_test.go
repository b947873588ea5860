package core

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"raincheck/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type metricsCall struct {
	method, endpoint, status string
	duration                 time.Duration
}

type mockMetricsCollector struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (m *mockMetricsCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, metricsCall{method, endpoint, status, duration})
}

func (m *mockMetricsCollector) snapshot() []metricsCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]metricsCall(nil), m.calls...)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{Environment: "local"}
	srv, err := NewServer(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}
