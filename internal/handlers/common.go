package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"station-tracker-backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator builds a validator that reports fields by their json
// names, so validation errors line up with the request body keys.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondJSON writes a JSON body with the given status
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// respondServiceError translates the service error taxonomy into HTTP
// responses: field errors as a 400 field->message map, not-found as
// 404, bad credentials as 401, anything else as 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var fieldErrs models.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		respondJSON(w, http.StatusBadRequest, fieldErrs)
	case errors.Is(err, models.ErrNotFound):
		respondError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidCredentials):
		respondError(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, models.ErrInvalidInput):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// checkRequest validates a decoded request struct and returns per-field
// messages keyed by the json tag
func checkRequest(req interface{}) models.FieldErrors {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.FieldErrors{"request": "invalid request"}
	}

	fieldErrs := models.FieldErrors{}
	for _, fe := range verrs {
		name := fe.Field()
		switch fe.Tag() {
		case "required":
			fieldErrs[name] = "this field is required"
		case "email":
			fieldErrs[name] = "enter a valid email address"
		default:
			fieldErrs[name] = "invalid value"
		}
	}
	return fieldErrs
}
