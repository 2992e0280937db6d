// internal/handler/respond.go
package handler

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, appErrors.HTTPStatus(err), map[string]string{"detail": err.Error()})
}
