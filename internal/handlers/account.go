package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"station-tracker-backend/internal/middleware"
	"station-tracker-backend/internal/models"
	"station-tracker-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AccountHandler handles registration, login and profile requests
type AccountHandler struct {
	userService *services.UserService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(userService *services.UserService) *AccountHandler {
	return &AccountHandler{userService: userService}
}

// RegisterRequest is the POST /accounts/register body
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the POST /accounts/login body
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest is the PUT/PATCH /accounts/profile body
type ProfileUpdateRequest struct {
	PushToken           *string `json:"push_token"`
	EnableNotifications *bool   `json:"enable_notifications"`
}

// Register handles POST /accounts/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if fieldErrs := checkRequest(req); fieldErrs != nil {
		respondJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, models.ErrInvalidInput) {
			log.Error().Err(err).Str("username", req.Username).Msg("Failed to register user")
		}
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	respondJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

// Login handles POST /accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if fieldErrs := checkRequest(req); fieldErrs != nil {
		respondJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	token, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, models.ErrInvalidCredentials) {
			log.Error().Err(err).Str("username", req.Username).Msg("Failed to authenticate user")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}

// GetProfile handles GET /accounts/profile and /accounts/profile/{id}.
// The id path parameter, when present, must be the caller's own; any
// other id reads as not found.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if !h.ownProfile(w, r, userID) {
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT/PATCH /accounts/profile and /accounts/profile/{id}
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if !h.ownProfile(w, r, userID) {
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), userID, services.ProfileUpdate{
		PushToken:           req.PushToken,
		EnableNotifications: req.EnableNotifications,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("Profile updated")

	respondJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) ownProfile(w http.ResponseWriter, r *http.Request, userID string) bool {
	if id := chi.URLParam(r, "id"); id != "" && id != userID {
		respondError(w, "Not found", http.StatusNotFound)
		return false
	}
	return true
}
