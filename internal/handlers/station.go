package handlers

import (
	"net/http"
	"strconv"

	"station-tracker-backend/internal/models"
	"station-tracker-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// StationHandler serves the public, read-only station catalog
type StationHandler struct {
	stationService *services.StationService
}

// NewStationHandler creates a new station handler
func NewStationHandler(stationService *services.StationService) *StationHandler {
	return &StationHandler{stationService: stationService}
}

// ListStations handles GET /stations. lat and lng query parameters are
// parsed but currently have no effect on the result set.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	var lat, lng *float64
	if latStr := r.URL.Query().Get("lat"); latStr != "" {
		if parsed, err := strconv.ParseFloat(latStr, 64); err == nil {
			lat = &parsed
		}
	}
	if lngStr := r.URL.Query().Get("lng"); lngStr != "" {
		if parsed, err := strconv.ParseFloat(lngStr, 64); err == nil {
			lng = &parsed
		}
	}

	stations, err := h.stationService.List(r.Context(), lat, lng)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stations")
		respondServiceError(w, err)
		return
	}
	if stations == nil {
		stations = []*models.Station{}
	}

	respondJSON(w, http.StatusOK, stations)
}

// GetStation handles GET /stations/{id}
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	station, err := h.stationService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, station)
}
