package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"raincheck/internal/core"
	"raincheck/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var testNow = time.Date(2026, 5, 2, 7, 30, 0, 0, time.UTC)

type registrar interface {
	RegisterRoutes(r chi.Router)
}

// serve runs one request through a /v1 router with the request ID
// middleware so error bodies carry an ID.
func serve(t *testing.T, h registrar, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(core.RequestIDMiddleware)
	r.Route("/v1", h.RegisterRoutes)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorDetail {
	t.Helper()
	var body core.APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

// straightRoute runs north from (10, lng) in n steps of about 1.1 km.
func straightRoute(id string, lng float64, n int) types.Route {
	path := make([]types.Point, n)
	for i := range path {
		path[i] = types.Point{Lat: 10 + float64(i)*0.01, Lng: lng}
	}
	return types.Route{
		ID:          id,
		Label:       "Route " + id,
		DistanceKm:  float64(n-1) * 1.11,
		DurationMin: float64(n - 1),
		Path:        path,
	}
}

type fakeRoutes struct {
	routes []types.Route
	err    error
}

func (f *fakeRoutes) GetRoutes(context.Context, types.Point, types.Point) ([]types.Route, error) {
	return f.routes, f.err
}

// byLongitude returns a different rain chance east and west of lng 0.
type byLongitude struct {
	west, east int
}

func (b byLongitude) RainProbability(_ context.Context, _, lng float64) (int, error) {
	if lng < 0 {
		return b.west, nil
	}
	return b.east, nil
}
