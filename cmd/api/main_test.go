package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raincheck/internal/config"
)

func stubConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("USE_STUB_PROVIDERS", "true")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := config.LoadConfig("testdata/does-not-exist.env")
	require.NoError(t, err)
	return cfg
}

func buildTestApp(t *testing.T) *app {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := buildApp(ctx, stubConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return a
}

func TestBuildApp_Health(t *testing.T) {
	a := buildTestApp(t)

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestBuildApp_PlanWithStubProviders(t *testing.T) {
	a := buildTestApp(t)

	body := `{"origin":{"lat":48.8566,"lng":2.3522},"destination":{"lat":49.4431,"lng":1.0993}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			BestRouteID string `json:"best_route_id"`
			Routes      []struct {
				Route struct {
					ID string `json:"id"`
				} `json:"route"`
				Segments []json.RawMessage `json:"segments"`
				Best     bool              `json:"best"`
			} `json:"routes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data.Routes, 3)
	assert.NotEmpty(t, env.Data.BestRouteID)

	bestCount := 0
	for _, r := range env.Data.Routes {
		assert.NotEmpty(t, r.Segments)
		if r.Best {
			bestCount++
			assert.Equal(t, env.Data.BestRouteID, r.Route.ID)
		}
	}
	assert.Equal(t, 1, bestCount)
	assert.Positive(t, a.forecasts.Len(), "lookups should populate the forecast cache")
}

func TestBuildApp_GeocodeAndForecast(t *testing.T) {
	a := buildTestApp(t)

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/geocode?q=Rouen", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/forecast?lat=49.44&lng=1.1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rain_chance"`)
}

func TestNewLogger_Levels(t *testing.T) {
	ctx := context.Background()
	assert.True(t, newLogger("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("info").Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("warn").Enabled(ctx, slog.LevelInfo))
	assert.False(t, newLogger("error").Enabled(ctx, slog.LevelWarn))
	assert.True(t, newLogger("bogus").Enabled(ctx, slog.LevelInfo))
}
