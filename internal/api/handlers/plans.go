// Package handlers contains the HTTP handlers of the RainCheck API.
//
// Each handler declares the narrow service interface it depends on and
// mounts its routes through RegisterRoutes.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"raincheck/internal/analysis"
	"raincheck/internal/core"
	"raincheck/internal/types"
)

// PlanService computes weather-scored route plans.
type PlanService interface {
	Plan(ctx context.Context, origin, destination types.Point) (*analysis.Plan, error)
}

// RoutesRecorder receives the number of routes scored per plan. Optional.
type RoutesRecorder interface {
	RecordRoutesAnalyzed(ctx context.Context, n int)
}

// Coordinate is a request-side point. Pointers distinguish a missing field
// from the valid value 0.
type Coordinate struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

func (c Coordinate) point() types.Point {
	return types.Point{Lat: *c.Lat, Lng: *c.Lng}
}

// PlanRequest is the body of POST /v1/plans.
type PlanRequest struct {
	Origin      Coordinate `json:"origin"`
	Destination Coordinate `json:"destination"`
}

// Warnings implements core.Warner.
func (r PlanRequest) Warnings() []string {
	if r.Origin.point() == r.Destination.point() {
		return []string{"origin and destination are the same point"}
	}
	return nil
}

// RouteResult is one route of a plan together with its weather and
// map rendering.
type RouteResult struct {
	Route    types.Route            `json:"route"`
	Weather  *types.RouteWeather    `json:"weather,omitempty"`
	Segments []types.ColoredSegment `json:"segments"`
	Best     bool                   `json:"best"`
}

// PlanResponse is the body returned by POST /v1/plans.
type PlanResponse struct {
	ID          string        `json:"id"`
	Origin      types.Point   `json:"origin"`
	Destination types.Point   `json:"destination"`
	BestRouteID string        `json:"best_route_id,omitempty"`
	Routes      []RouteResult `json:"routes"`
	CreatedAt   time.Time     `json:"created_at"`
}

// PlanHandler serves route planning requests.
type PlanHandler struct {
	service   PlanService
	validator *core.Validator
	recorder  RoutesRecorder
	logger    *slog.Logger
}

// NewPlanHandler creates a PlanHandler. recorder may be nil.
func NewPlanHandler(svc PlanService, val *core.Validator, recorder RoutesRecorder, logger *slog.Logger) *PlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanHandler{
		service:   svc,
		validator: val,
		recorder:  recorder,
		logger:    logger,
	}
}

// RegisterRoutes mounts the plan endpoints.
func (h *PlanHandler) RegisterRoutes(r chi.Router) {
	r.Route("/plans", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Post("/geojson", h.HandleCreateGeoJSON)
	})
}

// HandleCreate handles POST /v1/plans.
func (h *PlanHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	plan, meta, ok := h.plan(w, r)
	if !ok {
		return
	}

	resp, err := buildPlanResponse(plan)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp, Meta: meta})
}

// HandleCreateGeoJSON handles POST /v1/plans/geojson. The body is a bare
// FeatureCollection so it can be handed directly to map libraries.
func (h *PlanHandler) HandleCreateGeoJSON(w http.ResponseWriter, r *http.Request) {
	plan, _, ok := h.plan(w, r)
	if !ok {
		return
	}

	fc := plan.GeoJSON()
	body, err := fc.MarshalJSON()
	if err != nil {
		core.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *PlanHandler) plan(w http.ResponseWriter, r *http.Request) (*analysis.Plan, *core.ResponseMeta, bool) {
	var req PlanRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return nil, nil, false
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return nil, nil, false
	}

	var meta *core.ResponseMeta
	if warnings := req.Warnings(); len(warnings) > 0 {
		meta = &core.ResponseMeta{Warnings: warnings}
	}

	plan, err := h.service.Plan(r.Context(), req.Origin.point(), req.Destination.point())
	if err != nil {
		core.Error(w, r, err)
		return nil, nil, false
	}
	if h.recorder != nil {
		h.recorder.RecordRoutesAnalyzed(r.Context(), len(plan.Routes))
	}
	return plan, meta, true
}

func buildPlanResponse(plan *analysis.Plan) (PlanResponse, error) {
	resp := PlanResponse{
		ID:          plan.ID,
		Origin:      plan.Origin,
		Destination: plan.Destination,
		BestRouteID: plan.BestRouteID,
		Routes:      make([]RouteResult, 0, len(plan.Routes)),
		CreatedAt:   plan.CreatedAt,
	}
	for _, route := range plan.Routes {
		segs, err := plan.Segments(route.ID)
		if err != nil {
			return PlanResponse{}, err
		}
		result := RouteResult{
			Route:    route,
			Segments: segs,
			Best:     route.ID == plan.BestRouteID,
		}
		if weather, ok := plan.WeatherFor(route.ID); ok {
			result.Weather = &weather
		}
		resp.Routes = append(resp.Routes, result)
	}
	return resp, nil
}
