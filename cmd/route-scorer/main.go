// Package main is the route-scorer Lambda. It takes an origin and a
// destination, scores every candidate route for rain and returns a compact
// summary without geometry.
//
// With APP_ENV=local the event is read from stdin instead of the Lambda
// runtime:
//
//	echo '{"origin":{"lat":48.85,"lng":2.35},"destination":{"lat":49.44,"lng":1.1}}' | go run ./cmd/route-scorer
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"raincheck/internal/analysis"
	"raincheck/internal/config"
	"raincheck/internal/external"
	"raincheck/internal/forecasts"
	"raincheck/internal/types"
)

// ScoreRequest is the Lambda event.
type ScoreRequest struct {
	Origin      types.Point `json:"origin"`
	Destination types.Point `json:"destination"`
}

// RouteSummary is the scored view of one route.
type RouteSummary struct {
	RouteID           string  `json:"route_id"`
	Label             string  `json:"label"`
	DistanceKm        float64 `json:"distance_km"`
	DurationMin       float64 `json:"duration_min"`
	AverageRainChance int     `json:"average_rain_chance"`
	MaxRainChance     int     `json:"max_rain_chance"`
	Score             float64 `json:"score"`
	Recommendation    string  `json:"recommendation"`
}

// ScoreResponse is the Lambda result.
type ScoreResponse struct {
	PlanID      string         `json:"plan_id"`
	BestRouteID string         `json:"best_route_id,omitempty"`
	Routes      []RouteSummary `json:"routes"`
}

// planner is the part of analysis.Planner the handler needs.
type planner interface {
	Plan(ctx context.Context, origin, destination types.Point) (*analysis.Plan, error)
}

// Scorer handles route scoring events.
type Scorer struct {
	Planner planner
	Log     *slog.Logger
}

// Handle plans the trip and summarizes it. Invalid coordinates and routing
// failures are returned as errors so the invocation is marked failed.
func (s *Scorer) Handle(ctx context.Context, req ScoreRequest) (ScoreResponse, error) {
	plan, err := s.Planner.Plan(ctx, req.Origin, req.Destination)
	if err != nil {
		s.Log.ErrorContext(ctx, "scoring failed",
			"origin", req.Origin,
			"destination", req.Destination,
			"error", err,
		)
		return ScoreResponse{}, err
	}

	resp := ScoreResponse{
		PlanID:      plan.ID,
		BestRouteID: plan.BestRouteID,
		Routes:      make([]RouteSummary, 0, len(plan.Routes)),
	}
	for _, r := range plan.Routes {
		w, _ := plan.WeatherFor(r.ID)
		resp.Routes = append(resp.Routes, RouteSummary{
			RouteID:           r.ID,
			Label:             r.Label,
			DistanceKm:        r.DistanceKm,
			DurationMin:       r.DurationMin,
			AverageRainChance: w.AverageRainChance,
			MaxRainChance:     w.MaxRainChance,
			Score:             w.Score,
			Recommendation:    w.Recommendation,
		})
	}

	s.Log.InfoContext(ctx, "routes scored",
		"plan_id", plan.ID,
		"routes", len(resp.Routes),
		"best_route_id", plan.BestRouteID,
	)
	return resp, nil
}

func newScorer(cfg *config.Config, logger *slog.Logger) (*Scorer, error) {
	clock := types.RealClock{}
	registry, err := external.NewClientRegistry(cfg, logger, external.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("creating provider clients: %w", err)
	}

	// A Lambda instance is short-lived; the cache only dedupes lookups
	// within and across warm invocations.
	fc := forecasts.NewService(registry.Weather, logger, clock, forecasts.WithTTL(cfg.Analysis.ForecastTTL))
	analyzer := analysis.NewAnalyzer(fc, logger, clock, analysis.WithLookupLimit(cfg.Analysis.LookupConcurrency))

	return &Scorer{
		Planner: analysis.NewPlanner(registry.Routing, registry.Geocoder, analyzer, logger, clock),
		Log:     logger,
	}, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger.Info("route-scorer Lambda initializing (cold start)")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	scorer, err := newScorer(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize scorer", "error", err)
		os.Exit(1)
	}

	if cfg.IsLocal() {
		if err := runLocal(scorer, os.Stdin, os.Stdout); err != nil {
			logger.Error("local invocation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(scorer.Handle)
}

// runLocal reads one event from in and writes the indented result to out.
func runLocal(s *Scorer, in io.Reader, out io.Writer) error {
	payload, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading event: %w", err)
	}
	if len(payload) == 0 {
		return fmt.Errorf("no event received on stdin")
	}

	var req ScoreRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}

	resp, err := s.Handle(context.Background(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
