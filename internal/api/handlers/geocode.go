package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"raincheck/internal/core"
	"raincheck/internal/types"
)

// GeocodeService resolves free-text addresses. It never fails; provider
// errors surface as an empty list.
type GeocodeService interface {
	Geocode(ctx context.Context, query string) []types.GeocodeResult
}

type geocodeQuery struct {
	Q string `json:"q" validate:"address_query"`
}

// GeocodeHandler exposes address search.
type GeocodeHandler struct {
	service   GeocodeService
	validator *core.Validator
	logger    *slog.Logger
}

// NewGeocodeHandler creates a GeocodeHandler.
func NewGeocodeHandler(svc GeocodeService, val *core.Validator, logger *slog.Logger) *GeocodeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeocodeHandler{service: svc, validator: val, logger: logger}
}

// RegisterRoutes mounts the geocoding endpoint.
func (h *GeocodeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/geocode", h.HandleSearch)
}

// HandleSearch handles GET /v1/geocode?q=.
func (h *GeocodeHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := geocodeQuery{Q: r.URL.Query().Get("q")}
	if err := h.validator.ValidateStruct(query); err != nil {
		core.Error(w, r, err)
		return
	}

	results := h.service.Geocode(r.Context(), query.Q)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: results})
}
