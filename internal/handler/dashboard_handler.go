// internal/handler/dashboard_handler.go
package handler

import (
	"net/http"

	"github.com/jkarimi/wacrm-backend/internal/service"
)

// DashboardHandler exposes the per-owner stats endpoint.
type DashboardHandler struct {
	DashboardService *service.DashboardService
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.DashboardService.GetStats(r.Context(), UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
