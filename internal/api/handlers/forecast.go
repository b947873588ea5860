package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"raincheck/internal/analysis"
	"raincheck/internal/core"
	"raincheck/internal/types"
)

// ForecastService returns the current rain probability at a location.
type ForecastService interface {
	RainProbability(ctx context.Context, lat, lng float64) (int, error)
}

// ForecastResponse is the body returned by GET /v1/forecast.
type ForecastResponse struct {
	Point      types.Point     `json:"point"`
	RainChance int             `json:"rain_chance"`
	Condition  types.Condition `json:"condition"`
	Band       types.RiskBand  `json:"band"`
	Color      string          `json:"color"`
}

// ForecastHandler exposes single-point rain lookups.
type ForecastHandler struct {
	service ForecastService
	logger  *slog.Logger
}

// NewForecastHandler creates a ForecastHandler.
func NewForecastHandler(svc ForecastService, logger *slog.Logger) *ForecastHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastHandler{service: svc, logger: logger}
}

// RegisterRoutes mounts the forecast endpoint.
func (h *ForecastHandler) RegisterRoutes(r chi.Router) {
	r.Get("/forecast", h.HandleGetPoint)
}

// HandleGetPoint handles GET /v1/forecast?lat=&lng=.
func (h *ForecastHandler) HandleGetPoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := parseCoordinate(q.Get("lat"), "lat", types.ErrCodeValidationInvalidLat)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	lng, err := parseCoordinate(q.Get("lng"), "lng", types.ErrCodeValidationInvalidLng)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	p := types.Point{Lat: lat, Lng: lng}
	if err := types.ValidatePoint(p); err != nil {
		core.Error(w, r, err)
		return
	}

	chance, err := h.service.RainProbability(r.Context(), lat, lng)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	band := analysis.BandFor(float64(chance))
	w.Header().Set("Cache-Control", "private, max-age=300")
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: ForecastResponse{
		Point:      p,
		RainChance: chance,
		Condition:  analysis.ConditionFor(chance),
		Band:       band,
		Color:      analysis.DefaultPalette.Color(band),
	}})
}

func parseCoordinate(raw, name string, code types.ErrorCode) (float64, error) {
	if raw == "" {
		return 0, types.NewAppError(types.ErrCodeValidationMissingField,
			name+" query parameter is required", nil)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, types.NewAppError(code, name+" must be a valid number", nil)
	}
	return v, nil
}
