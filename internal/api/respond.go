package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetconfig/channelhub/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the typed domain errors onto HTTP statuses.
// Mutations fail loudly; the taxonomy is stable so clients can branch on
// status without parsing messages.
func respondServiceError(w http.ResponseWriter, err error) {
	var forbidden *domain.ForbiddenError
	if errors.As(err, &forbidden) {
		respondError(w, http.StatusForbidden, forbidden.Error())
		return
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		respondError(w, http.StatusNotFound, notFound.Error())
		return
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":      validation.Message,
			"dependents": validation.Dependents,
		})
		return
	}

	respondError(w, http.StatusInternalServerError, "internal error")
}
