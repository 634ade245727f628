package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"station-tracker-backend/internal/middleware"
	"station-tracker-backend/internal/models"
	"station-tracker-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// VisitHandler handles the per-user visit ledger requests. The owning
// user always comes from the authenticated context, never the body.
type VisitHandler struct {
	visitService *services.VisitService
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(visitService *services.VisitService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

// VisitCreateRequest is the POST /visits body. user and
// duration_minutes are never accepted from the client. Latitude and
// longitude are pointers so an equatorial 0 still counts as present.
type VisitCreateRequest struct {
	Station    string     `json:"station" validate:"required"`
	ArrivedAt  *time.Time `json:"arrived_at" validate:"required"`
	DepartedAt *time.Time `json:"departed_at"`
	Weather    string     `json:"weather"`
	Notes      string     `json:"notes"`
	Latitude   *float64   `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude  *float64   `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// NullableTime distinguishes a field that was absent from one sent as
// an explicit null. PATCH bodies use it to clear the departure.
type NullableTime struct {
	Set  bool
	Time *time.Time
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Time = nil
		return nil
	}
	return json.Unmarshal(data, &n.Time)
}

// VisitUpdateRequest is the PUT/PATCH /visits/{id} body; absent fields
// are left unchanged. A null departed_at clears the departure and the
// derived duration.
type VisitUpdateRequest struct {
	Station    *string      `json:"station"`
	ArrivedAt  *time.Time   `json:"arrived_at"`
	DepartedAt NullableTime `json:"departed_at"`
	Weather    *string      `json:"weather"`
	Notes      *string      `json:"notes"`
	Latitude   *float64     `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64     `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// CreateVisit handles POST /visits
func (h *VisitHandler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req VisitCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if fieldErrs := checkRequest(req); fieldErrs != nil {
		respondJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	visit, err := h.visitService.Create(r.Context(), userID, services.VisitInput{
		StationID:  req.Station,
		ArrivedAt:  *req.ArrivedAt,
		DepartedAt: req.DepartedAt,
		Weather:    req.Weather,
		Notes:      req.Notes,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
	})
	if err != nil {
		if !errors.Is(err, models.ErrInvalidInput) {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to create visit")
		}
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("visit_id", visit.ID).
		Str("station_id", visit.StationID).
		Msg("Visit recorded")

	respondJSON(w, http.StatusCreated, visit)
}

// ListVisits handles GET /visits
func (h *VisitHandler) ListVisits(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	visits, err := h.visitService.List(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list visits")
		respondServiceError(w, err)
		return
	}
	if visits == nil {
		visits = []*models.StationVisit{}
	}

	respondJSON(w, http.StatusOK, visits)
}

// GetVisit handles GET /visits/{id}
func (h *VisitHandler) GetVisit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	visitID := chi.URLParam(r, "id")

	visit, err := h.visitService.Get(r.Context(), userID, visitID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, visit)
}

// UpdateVisit handles PUT/PATCH /visits/{id}
func (h *VisitHandler) UpdateVisit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	visitID := chi.URLParam(r, "id")

	var req VisitUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if fieldErrs := checkRequest(req); fieldErrs != nil {
		respondJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	update := services.VisitUpdate{
		StationID: req.Station,
		ArrivedAt: req.ArrivedAt,
		Weather:   req.Weather,
		Notes:     req.Notes,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if req.DepartedAt.Set {
		if req.DepartedAt.Time == nil {
			update.ClearDeparted = true
		} else {
			update.DepartedAt = req.DepartedAt.Time
		}
	}

	visit, err := h.visitService.Update(r.Context(), userID, visitID, update)
	if err != nil {
		if !errors.Is(err, models.ErrInvalidInput) && !errors.Is(err, models.ErrNotFound) {
			log.Error().Err(err).Str("user_id", userID).Str("visit_id", visitID).Msg("Failed to update visit")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, visit)
}

// DeleteVisit handles DELETE /visits/{id}
func (h *VisitHandler) DeleteVisit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	visitID := chi.URLParam(r, "id")

	if err := h.visitService.Delete(r.Context(), userID, visitID); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("visit_id", visitID).Msg("Visit deleted")

	w.WriteHeader(http.StatusNoContent)
}

// VisitStats handles GET /visits/stats
func (h *VisitHandler) VisitStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stats, err := h.visitService.Stats(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to compute visit stats")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
