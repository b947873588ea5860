// Package main is the entry point for the RainCheck API server.
//
// It loads configuration, builds the provider clients (real or stub), wires
// the forecast cache, analyzer and planner behind the HTTP chassis, and
// serves until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"raincheck/internal/analysis"
	"raincheck/internal/api/handlers"
	"raincheck/internal/config"
	"raincheck/internal/core"
	"raincheck/internal/external"
	"raincheck/internal/forecasts"
	"raincheck/internal/telemetry"
	"raincheck/internal/types"
)

// metricsFlushInterval is how often buffered CloudWatch datums are sent.
const metricsFlushInterval = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("raincheck API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"stub_providers", cfg.Providers.UseStubs,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	return runHTTPServer(ctx, app.server, cfg, logger)
}

// app is the wired object graph. Background loops are started by buildApp
// and stop with its context.
type app struct {
	server    *core.Server
	planner   *analysis.Planner
	forecasts *forecasts.Service
	metrics   *telemetry.CloudWatchMetrics
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	clock := types.RealClock{}

	registry, err := external.NewClientRegistry(cfg, logger, external.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("creating provider clients: %w", err)
	}

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	var forecastOpts []forecasts.Option
	forecastOpts = append(forecastOpts, forecasts.WithTTL(cfg.Analysis.ForecastTTL))

	a := &app{server: srv}
	if cfg.Observability.MetricsEnabled {
		metrics, err := newCloudWatchMetrics(ctx, cfg, logger, clock)
		if err != nil {
			return nil, err
		}
		a.metrics = metrics
		srv.Metrics = metrics
		forecastOpts = append(forecastOpts, forecasts.WithRecorder(metrics))
		go metrics.Run(ctx, metricsFlushInterval)
	}

	a.forecasts = forecasts.NewService(registry.Weather, logger.With("component", "forecasts"), clock, forecastOpts...)
	go a.forecasts.RunJanitor(ctx, cfg.Analysis.JanitorInterval)

	analyzer := analysis.NewAnalyzer(a.forecasts, logger.With("component", "analyzer"), clock,
		analysis.WithLookupLimit(cfg.Analysis.LookupConcurrency))
	a.planner = analysis.NewPlanner(registry.Routing, registry.Geocoder, analyzer, logger.With("component", "planner"), clock)

	for _, b := range registry.Breakers {
		srv.HealthProbes = append(srv.HealthProbes, core.NewBreakerProbe(b))
	}

	var recorder handlers.RoutesRecorder
	if a.metrics != nil {
		recorder = a.metrics
	}
	planHandler := handlers.NewPlanHandler(a.planner, srv.Validator, recorder, logger)
	forecastHandler := handlers.NewForecastHandler(a.forecasts, logger)
	geocodeHandler := handlers.NewGeocodeHandler(a.planner, srv.Validator, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		planHandler.RegisterRoutes,
		forecastHandler.RegisterRoutes,
		geocodeHandler.RegisterRoutes,
	)
	srv.MountRoutes()

	return a, nil
}

// newCloudWatchMetrics loads the default AWS credential chain. A custom
// endpoint (LocalStack) replaces the regional one when configured.
func newCloudWatchMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger, clock types.Clock) (*telemetry.CloudWatchMetrics, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return telemetry.NewCloudWatchMetrics(client, logger.With("component", "metrics"), clock,
		telemetry.WithNamespace(cfg.Observability.MetricNamespace)), nil
}

func runHTTPServer(ctx context.Context, srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	// WriteTimeout leaves headroom over the request context deadline so
	// handlers can still write their timeout error.
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
