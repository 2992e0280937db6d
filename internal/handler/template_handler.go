// internal/handler/template_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

// TemplateHandler exposes template CRUD.
type TemplateHandler struct {
	TemplateService *service.TemplateService
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, appErrors.InvalidArgument("invalid request body"))
		return
	}

	template, err := h.TemplateService.CreateTemplate(r.Context(), UserID(r), body.Name, body.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, template)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.TemplateService.ListTemplates(r.Context(), UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	template, err := h.TemplateService.GetTemplate(r.Context(), chi.URLParam(r, "id"), UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, template)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.TemplateService.DeleteTemplate(r.Context(), chi.URLParam(r, "id"), UserID(r)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Template deleted"})
}
