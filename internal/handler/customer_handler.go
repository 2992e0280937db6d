// internal/handler/customer_handler.go
package handler

import (
	"net/http"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

const maxUploadBytes = 16 << 20 // 16 MiB

// CustomerHandler exposes customer ingestion and listing.
type CustomerHandler struct {
	CustomerService *service.CustomerService
}

func (h *CustomerHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, appErrors.InvalidArgument("invalid multipart upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, appErrors.InvalidArgument("missing file field"))
		return
	}
	defer file.Close()

	result, err := h.CustomerService.UploadCSV(r.Context(), UserID(r), file)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.CustomerService.ListCustomers(r.Context(), UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"customers": customers, "total": len(customers)})
}

func (h *CustomerHandler) Clear(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.CustomerService.ClearCustomers(r.Context(), UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
