// Package forecasts serves per-point rain probabilities to the route analyzer.
// Lookups are cached by rounded coordinate for a short TTL and concurrent
// misses for the same coordinate share one upstream request.
package forecasts

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"raincheck/internal/geo"
	"raincheck/internal/types"
)

const (
	// DefaultTTL is how long a cached probability is served.
	DefaultTTL = 5 * time.Minute

	// KeyPrecision is the number of decimals coordinates are rounded to
	// before caching (about 1.1 km of latitude).
	KeyPrecision = 2
)

// Lookup results reported to the LookupRecorder.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultFailure = "failure"
)

var errNoCurrentHour = errors.New("forecast has no value for the current hour")

// Upstream is the weather provider behind the cache.
type Upstream interface {
	HourlyPrecipitation(ctx context.Context, lat, lng float64) (types.PrecipitationSeries, error)
}

// LookupRecorder receives one event per lookup.
type LookupRecorder interface {
	RecordForecastLookup(ctx context.Context, result string)
}

type entry struct {
	value     int
	expiresAt time.Time
}

// Service is a TTL cache in front of an Upstream.
type Service struct {
	upstream Upstream
	ttl      time.Duration
	logger   *slog.Logger
	clock    types.Clock
	recorder LookupRecorder

	mu      sync.Mutex
	entries map[types.Point]entry
	group   singleflight.Group
}

// Option is a functional option for configuring a Service.
type Option func(*Service)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRecorder reports every lookup result to r.
func WithRecorder(r LookupRecorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a Service over upstream.
func NewService(upstream Upstream, logger *slog.Logger, clock types.Clock, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	s := &Service{
		upstream: upstream,
		ttl:      DefaultTTL,
		logger:   logger,
		clock:    clock,
		entries:  make(map[types.Point]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RainProbability returns the current-hour precipitation probability (0-100)
// near lat/lng. It never returns an error: when the upstream fails the
// failure is logged and 0 is returned without being cached.
func (s *Service) RainProbability(ctx context.Context, lat, lng float64) (int, error) {
	key := geo.RoundPoint(types.Point{Lat: lat, Lng: lng}, KeyPrecision)

	if v, ok := s.cached(key); ok {
		s.record(ctx, ResultHit)
		return v, nil
	}

	// The shared fetch outlives a single caller's cancellation.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(cacheKey(key), func() (any, error) {
		return s.fetch(fetchCtx, key)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "forecast lookup failed, assuming dry",
			"lat", key.Lat,
			"lng", key.Lng,
			"error", err,
		)
		s.record(ctx, ResultFailure)
		return 0, nil
	}

	s.record(ctx, ResultMiss)
	return v.(int), nil
}

func (s *Service) fetch(ctx context.Context, key types.Point) (int, error) {
	// A concurrent flight may have filled the entry since the cache check.
	if v, ok := s.cached(key); ok {
		return v, nil
	}

	series, err := s.upstream.HourlyPrecipitation(ctx, key.Lat, key.Lng)
	if err != nil {
		return 0, err
	}
	v, ok := series.At(s.clock.Now())
	if !ok {
		return 0, errNoCurrentHour
	}
	v = min(max(v, 0), 100)

	s.mu.Lock()
	s.entries[key] = entry{value: v, expiresAt: s.clock.Now().Add(s.ttl)}
	s.mu.Unlock()
	return v, nil
}

func (s *Service) cached(key types.Point) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !s.clock.Now().Before(e.expiresAt) {
		return 0, false
	}
	return e.value, true
}

// Purge drops expired entries and returns how many were removed.
func (s *Service) Purge() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries, expired ones included.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunJanitor purges expired entries every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Purge(); n > 0 {
				s.logger.DebugContext(ctx, "forecast cache purged", "removed", n)
			}
		}
	}
}

func (s *Service) record(ctx context.Context, result string) {
	if s.recorder != nil {
		s.recorder.RecordForecastLookup(ctx, result)
	}
}

func cacheKey(p types.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', KeyPrecision, 64) + "," +
		strconv.FormatFloat(p.Lng, 'f', KeyPrecision, 64)
}
