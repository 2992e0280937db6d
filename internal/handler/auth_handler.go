// internal/handler/auth_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

// AuthHandler exposes register and login.
type AuthHandler struct {
	AuthService *service.AuthService
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, appErrors.InvalidArgument("invalid request body"))
		return
	}

	token, err := h.AuthService.Register(r.Context(), body.Email, body.FullName, body.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, token)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, appErrors.InvalidArgument("invalid request body"))
		return
	}

	token, err := h.AuthService.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, token)
}
